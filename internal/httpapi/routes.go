package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/ws"
)

func SetupRoutes(reg *registry.Registry) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/venues/{venueID}/status", VenueStatus(reg))
	r.Get("/venues/{venueID}/ws", ws.Handler(reg))
	return r
}
