package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/domain"
	domchat "github.com/elguarir/gitex-assistant/internal/domain/chat"
	chatuc "github.com/elguarir/gitex-assistant/internal/usecase/chat"
	healthuc "github.com/elguarir/gitex-assistant/internal/usecase/health"
)

// maxHistoryMessages caps the client-supplied conversation history.
const maxHistoryMessages = 100

// ChatRunner runs one conversational turn, streaming text to the sink.
type ChatRunner interface {
	Run(ctx context.Context, history []domchat.Message, onDelta domchat.DeltaFunc) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API: a streaming chat endpoint plus health and
// metrics.
type Server struct {
	chat   ChatRunner
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(chat ChatRunner, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{chat: chat, health: health, logger: logger}
}

// Mount registers the API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// sseEvent is one server-sent event payload.
type sseEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Err  string `json:"error,omitempty"`
}

// handleChat runs a turn and streams the assistant's text over SSE:
// "text" events with deltas, then a terminal "done" event. Errors after
// the stream has started become an "error" event, since the status line
// is already on the wire.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	history, err := historyFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(ev sseEvent) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	runErr := s.chat.Run(r.Context(), history, func(text string) error {
		return writeEvent(sseEvent{Type: "text", Text: text})
	})
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return
		}
		s.logger.Error("Chat turn failed", zap.Error(runErr))
		_ = writeEvent(sseEvent{Type: "error", Err: safeErrorMessage(runErr)})
		return
	}

	_ = writeEvent(sseEvent{Type: "done"})
}

// handleHealth reports aggregated component health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func historyFromRequest(req chatRequest) ([]domchat.Message, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("messages must not be empty")
	}
	if len(req.Messages) > maxHistoryMessages {
		return nil, fmt.Errorf("messages must not exceed %d entries", maxHistoryMessages)
	}

	history := make([]domchat.Message, 0, len(req.Messages))
	for i, m := range req.Messages {
		switch domchat.Role(m.Role) {
		case domchat.RoleUser, domchat.RoleAssistant:
			history = append(history, domchat.Message{Role: domchat.Role(m.Role), Content: m.Content})
		default:
			return nil, fmt.Errorf("message %d: role must be user or assistant, got %q", i, m.Role)
		}
	}
	if history[len(history)-1].Role != domchat.RoleUser {
		return nil, errors.New("last message must be from the user")
	}
	return history, nil
}

// safeErrorMessage maps domain sentinels to client-facing text without
// exposing internals.
func safeErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrChatProvider):
		return "the assistant is temporarily unavailable"
	case errors.Is(err, domain.ErrEmbeddingProvider), errors.Is(err, domain.ErrRetrieval):
		return "search is temporarily unavailable"
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

var _ ChatRunner = (*chatuc.Service)(nil)
