package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dojosearch/dojosearch/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is one websocket frame on the answer stream.
type streamMessage struct {
	// Type is "token", "result", or "error".
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// handleAnswerStream upgrades to a websocket and streams answer tokens as
// they are generated, followed by the full result. Cache hits replay the
// cached answer as a single token.
func (s *Server) handleAnswerStream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, errQueryRequired, false)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := func(msg streamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(msg)
	}

	result, err := s.pipeline.Answer(r.Context(), query, pipeline.Options{
		UserID: r.URL.Query().Get("user_id"),
		OnToken: func(token string) error {
			return send(streamMessage{Type: "token", Token: token})
		},
	})
	if err != nil {
		_ = send(streamMessage{Type: "error", Error: err.Error(), Retryable: pipeline.Retryable(err)})
		return
	}

	_ = send(streamMessage{Type: "result", Result: result})
}
