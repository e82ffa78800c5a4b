package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/nadzzz/speakgenie/internal/language"
	"github.com/nadzzz/speakgenie/internal/message"
	"github.com/nadzzz/speakgenie/internal/scenario"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/transport"
	"github.com/nadzzz/speakgenie/internal/voice"
)

// ServiceName is the fully qualified name of the tutor service.
const ServiceName = "speakgenie.v1.Tutor"

// CodecName is the content subtype clients must request.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals messages with encoding/json.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// Request and response messages.
type (
	CreateSessionRequest struct {
		Scenario string `json:"scenario"`
		Language string `json:"language"`
	}

	SessionRequest struct {
		SessionID string `json:"sessionId"`
	}

	SendMessageRequest struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
		Speak     *bool  `json:"speak,omitempty"`
	}

	SpeakRequest struct {
		SessionID string `json:"sessionId"`
		transport.SpeechRequest
	}

	Empty struct{}

	SessionList struct {
		Sessions []message.Session `json:"sessions"`
	}

	MessageList struct {
		Messages []message.Message `json:"messages"`
	}

	VoiceList struct {
		Voices []voice.Voice `json:"voices"`
	}

	LanguageList struct {
		Languages []language.Language `json:"languages"`
	}

	ScenarioList struct {
		Scenarios []scenario.Scenario `json:"scenarios"`
	}
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*transport.Service)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateSession", func(ctx context.Context, svc transport.Service, r *CreateSessionRequest) (any, error) {
			return svc.CreateSession(ctx, r.Scenario, r.Language)
		}),
		unary("GetSession", func(ctx context.Context, svc transport.Service, r *SessionRequest) (any, error) {
			return svc.Session(ctx, r.SessionID)
		}),
		unary("ListSessions", func(ctx context.Context, svc transport.Service, _ *Empty) (any, error) {
			sessions, err := svc.Sessions(ctx)
			return &SessionList{Sessions: sessions}, err
		}),
		unary("ListMessages", func(ctx context.Context, svc transport.Service, r *SessionRequest) (any, error) {
			msgs, err := svc.Messages(ctx, r.SessionID)
			return &MessageList{Messages: msgs}, err
		}),
		unary("SendMessage", func(ctx context.Context, svc transport.Service, r *SendMessageRequest) (any, error) {
			return svc.SendMessage(ctx, r.SessionID, r.Message, r.Speak == nil || *r.Speak)
		}),
		unary("Speak", func(ctx context.Context, svc transport.Service, r *SpeakRequest) (any, error) {
			return svc.Speak(ctx, r.SessionID, r.Text, r.Params())
		}),
		control("Stop", transport.Service.Stop),
		control("Pause", transport.Service.Pause),
		control("Resume", transport.Service.Resume),
		control("SpeechStatus", transport.Service.SpeechStatus),
		unary("ListVoices", func(_ context.Context, svc transport.Service, _ *Empty) (any, error) {
			return &VoiceList{Voices: svc.Voices()}, nil
		}),
		unary("ListLanguages", func(_ context.Context, svc transport.Service, _ *Empty) (any, error) {
			return &LanguageList{Languages: svc.Languages()}, nil
		}),
		unary("ListScenarios", func(_ context.Context, svc transport.Service, _ *Empty) (any, error) {
			return &ScenarioList{Scenarios: svc.Scenarios()}, nil
		}),
	},
	Metadata: "speakgenie/v1/tutor",
}

// unary builds a method that decodes a Req and calls fn through the
// server's interceptor chain.
func unary[Req any](name string, fn func(context.Context, transport.Service, *Req) (any, error)) grpc.MethodDesc {
	call := func(ctx context.Context, svc transport.Service, req *Req) (any, error) {
		resp, err := fn(ctx, svc, req)
		if err != nil {
			return nil, toStatus(err)
		}
		return resp, nil
	}
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			svc := srv.(transport.Service)
			if interceptor == nil {
				return call(ctx, svc, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
				return call(ctx, svc, req.(*Req))
			})
		},
	}
}

func control(name string, fn func(transport.Service, context.Context, string) (speech.Status, error)) grpc.MethodDesc {
	return unary(name, func(ctx context.Context, svc transport.Service, r *SessionRequest) (any, error) {
		return fn(svc, ctx, r.SessionID)
	})
}
