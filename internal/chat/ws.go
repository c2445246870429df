package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/lead-agent/internal/conversation"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type string `json:"type"` // "turn" or "ping"
	conversation.TurnRequest
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type  string                     `json:"type"` // "turn", "pong" or "error"
	Turn  *conversation.TurnResponse `json:"turn,omitempty"`
	Error string                     `json:"error,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Warn("websocket read")
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.send(conn, wsResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		switch req.Type {
		case "turn", "":
			resp, err := h.turns.HandleTurn(r.Context(), req.TurnRequest)
			if err != nil {
				_, errMsg := errorStatus(err)
				h.send(conn, wsResponse{Type: "error", Error: errMsg})
				continue
			}
			h.send(conn, wsResponse{Type: "turn", Turn: resp})
		case "ping":
			h.send(conn, wsResponse{Type: "pong"})
		default:
			h.send(conn, wsResponse{Type: "error", Error: "unknown message type: " + req.Type})
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, resp wsResponse) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(resp); err != nil {
		h.log.WithError(err).Warn("websocket write")
	}
}
