// Package grpc implements the gRPC transport for speakgenie.
//
// The tutor service is registered from a hand-written service descriptor and
// exchanges JSON messages (content subtype "json"), so devices can call it
// without generated stubs. The standard health service mirrors daemon
// readiness.
//
// Server reflection lists every service, but only the health service carries
// a file descriptor; describing the tutor service through reflection fails.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/speakgenie/internal/conversation"
	"github.com/nadzzz/speakgenie/internal/store"
	"github.com/nadzzz/speakgenie/internal/transport"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	health *health.Server
	server *grpc.Server
}

// New creates a new gRPC transport on the given port. The health service
// reports NOT_SERVING until SetServing(true).
func New(port int) *Transport {
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Transport{port: port, health: h}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// SetServing updates the health status of the server and the tutor service.
func (t *Transport) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", st)
	t.health.SetServingStatus(ServiceName, st)
}

// Listen starts the gRPC server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.serve(ctx, lis, svc)
}

func (t *Transport) serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.server = grpc.NewServer()
	t.server.RegisterService(&serviceDesc, svc)
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, conversation.ErrEmptyMessage), errors.Is(err, conversation.ErrUnknownLanguage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, conversation.ErrSpeechDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		slog.Error("grpc request failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
