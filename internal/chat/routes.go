package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/conversation"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// TurnHandler processes one conversation turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req conversation.TurnRequest) (*conversation.TurnResponse, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	turns TurnHandler
	log   *logrus.Entry
}

// NewHandler creates a chat Handler.
func NewHandler(turns TurnHandler, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{turns: turns, log: logger.WithField("component", "chat")}
}

// RegisterRoutes mounts POST /api/chat and the /ws/chat websocket.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/chat", h.handleTurn)
	r.Get("/ws/chat", h.handleWebSocket)
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req conversation.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.turns.HandleTurn(r.Context(), req)
	if err != nil {
		status, msg := errorStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorStatus maps a turn error to an HTTP status and client-safe message.
func errorStatus(err error) (int, string) {
	var ve *leads.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, conversation.ErrInternalFault):
		return http.StatusInternalServerError, conversation.FallbackReply
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
