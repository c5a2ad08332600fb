// Package httpapi is the read-only spectator surface. Games are driven from
// chat; HTTP only observes them.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/session"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

// VenueStatus serves the blind projection of a venue's game. Secret roles
// never leave the process over HTTP.
func VenueStatus(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venue := chi.URLParam(r, "venueID")

		reply := make(chan *session.Session, 1)
		reg.Inbox() <- registry.Get{Venue: venue, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "venue not found", http.StatusNotFound)
			return
		}

		snapReply := make(chan types.Snapshot, 1)
		s.Inbox() <- session.GetStatus{Blind: true, Reply: snapReply}
		snap := <-snapReply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
