// Package ws streams live game snapshots to spectators. The socket is
// one-way: commands only enter through the chat surface, so the reader loop
// exists purely to notice the client going away.
package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/session"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

const writeTimeout = 3 * time.Second

func Handler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venue := chi.URLParam(r, "venueID")
		if venue == "" {
			http.Error(w, "missing venue", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		reg.Inbox() <- registry.Get{Venue: venue, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "venue not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.Snapshot, 8)
		observerID := randID(6)

		s.Inbox() <- session.Observe{ObserverID: observerID, Outbox: out}
		defer func() { s.Inbox() <- session.Unobserve{ObserverID: observerID} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				payload, _ := json.Marshal(snap)
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
