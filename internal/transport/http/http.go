// Package http implements the HTTP transport for speakgenie.
//
// This transport exposes the REST API used by the web and phone clients:
// chat sessions, tutor replies with their speech outcome, playback control,
// and the voice, language and scenario catalogs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/speakgenie/internal/conversation"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/store"
	"github.com/nadzzz/speakgenie/internal/transport"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the API routes served from svc.
func Handler(svc transport.Service) http.Handler {
	h := &handlers{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat/sessions", h.createSession)
	mux.HandleFunc("GET /api/chat/sessions", h.listSessions)
	mux.HandleFunc("GET /api/chat/sessions/{id}", h.getSession)
	mux.HandleFunc("GET /api/chat/sessions/{id}/messages", h.listMessages)
	mux.HandleFunc("POST /api/chat/sessions/{id}/messages", h.sendMessage)

	mux.HandleFunc("POST /api/chat/sessions/{id}/speech", h.speak)
	mux.HandleFunc("GET /api/chat/sessions/{id}/speech", h.speechStatus)
	mux.HandleFunc("POST /api/chat/sessions/{id}/speech/{action}", h.speechControl)

	mux.HandleFunc("GET /api/voices", h.voices)
	mux.HandleFunc("GET /api/languages", h.languages)
	mux.HandleFunc("GET /api/scenarios", h.scenarios)

	// Swagger UI, served from the registered OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

type handlers struct {
	svc transport.Service
}

// CreateSessionRequest opens a practice conversation.
type CreateSessionRequest struct {
	Scenario string `json:"scenario" example:"restaurant"`
	Language string `json:"language" example:"hi-IN"`
}

// SendMessageRequest carries one learner message. Speak defaults to true.
type SendMessageRequest struct {
	Message string `json:"message" example:"I would like some water"`
	Speak   *bool  `json:"speak,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// createSession handles POST /api/chat/sessions.
//
// @Summary     Start a practice session
// @Description Opens a session in the given scenario and language and stores the tutor's welcome line.
// @Description An unknown scenario becomes free chat; an empty language is English.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       session  body      CreateSessionRequest  true  "Scenario and language"
// @Success     201  {object}  message.Session
// @Failure     400  {object}  ErrorResponse  "Invalid body or unknown language"
// @Router      /api/chat/sessions [post]
func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.CreateSession(r.Context(), req.Scenario, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// listSessions handles GET /api/chat/sessions.
//
// @Summary  List sessions
// @Tags     sessions
// @Produce  json
// @Success  200  {array}  message.Session  "Newest first"
// @Router   /api/chat/sessions [get]
func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.Sessions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// getSession handles GET /api/chat/sessions/{id}.
//
// @Summary  Get a session
// @Tags     sessions
// @Produce  json
// @Param    id   path      string  true  "Session ID"
// @Success  200  {object}  message.Session
// @Failure  404  {object}  ErrorResponse
// @Router   /api/chat/sessions/{id} [get]
func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// listMessages handles GET /api/chat/sessions/{id}/messages.
//
// @Summary  Get a session transcript
// @Tags     messages
// @Produce  json
// @Param    id   path     string  true  "Session ID"
// @Success  200  {array}  message.Message  "Oldest first"
// @Failure  404  {object}  ErrorResponse
// @Router   /api/chat/sessions/{id}/messages [get]
func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Messages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// sendMessage handles POST /api/chat/sessions/{id}/messages.
//
// @Summary     Send a learner message
// @Description Stores the message, asks the tutor for a reply and, unless speak is false, voices the reply.
// @Description A speech failure never fails the request; it is reported in speech.error.
// @Tags        messages
// @Accept      json
// @Produce     json
// @Param       id       path      string              true  "Session ID"
// @Param       message  body      SendMessageRequest  true  "Learner message"
// @Success     200  {object}  message.SendResult
// @Failure     400  {object}  ErrorResponse  "Empty message"
// @Failure     404  {object}  ErrorResponse  "Unknown session"
// @Router      /api/chat/sessions/{id}/messages [post]
func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	speak := req.Speak == nil || *req.Speak
	res, err := h.svc.SendMessage(r.Context(), r.PathValue("id"), req.Message, speak)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// speak handles POST /api/chat/sessions/{id}/speech.
//
// @Summary     Speak text
// @Description Speaks text in the session's language, walking the voice fallback chain, and waits for the outcome.
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       id      path      string                   true  "Session ID"
// @Param       speech  body      transport.SpeechRequest  true  "Text and optional prosody"
// @Success     200  {object}  message.SpeechResult
// @Failure     400  {object}  ErrorResponse  "Empty text"
// @Failure     404  {object}  ErrorResponse  "Unknown session"
// @Failure     503  {object}  ErrorResponse  "Speech is disabled"
// @Router      /api/chat/sessions/{id}/speech [post]
func (h *handlers) speak(w http.ResponseWriter, r *http.Request) {
	var req transport.SpeechRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Speak(r.Context(), r.PathValue("id"), req.Text, req.Params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// speechStatus handles GET /api/chat/sessions/{id}/speech.
//
// @Summary  Get playback state
// @Tags     speech
// @Produce  json
// @Param    id   path      string  true  "Session ID"
// @Success  200  {object}  speech.Status
// @Failure  404  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse
// @Router   /api/chat/sessions/{id}/speech [get]
func (h *handlers) speechStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.SpeechStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// speechControl handles POST /api/chat/sessions/{id}/speech/{action}.
//
// @Summary  Stop, pause or resume playback
// @Tags     speech
// @Produce  json
// @Param    id      path      string  true  "Session ID"
// @Param    action  path      string  true  "Control action"  Enums(stop, pause, resume)
// @Success  200  {object}  speech.Status
// @Failure  404  {object}  ErrorResponse  "Unknown session or action"
// @Failure  503  {object}  ErrorResponse
// @Router   /api/chat/sessions/{id}/speech/{action} [post]
func (h *handlers) speechControl(w http.ResponseWriter, r *http.Request) {
	var fn func(context.Context, string) (speech.Status, error)
	switch r.PathValue("action") {
	case "stop":
		fn = h.svc.Stop
	case "pause":
		fn = h.svc.Pause
	case "resume":
		fn = h.svc.Resume
	default:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown speech action"})
		return
	}
	st, err := fn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// voices handles GET /api/voices.
//
// @Summary  List available voices
// @Tags     catalog
// @Produce  json
// @Success  200  {array}  voice.Voice
// @Router   /api/voices [get]
func (h *handlers) voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Voices())
}

// languages handles GET /api/languages.
//
// @Summary  List practice languages
// @Tags     catalog
// @Produce  json
// @Success  200  {array}  language.Language
// @Router   /api/languages [get]
func (h *handlers) languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Languages())
}

// scenarios handles GET /api/scenarios.
//
// @Summary  List conversation scenarios
// @Tags     catalog
// @Produce  json
// @Success  200  {array}  scenario.Scenario
// @Router   /api/scenarios [get]
func (h *handlers) scenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Scenarios())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, conversation.ErrEmptyMessage), errors.Is(err, conversation.ErrUnknownLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, conversation.ErrSpeechDisabled):
		status = http.StatusServiceUnavailable
	default:
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
