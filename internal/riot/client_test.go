package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/lol/summoner/v4/summoners/by-name/alice":
			_, _ = w.Write([]byte(`{"puuid":"puuid-alice","name":"alice"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", srv.URL)

	got, err := c.ResolveAccount(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "puuid-alice" {
		t.Fatalf("got %q", got)
	}

	if _, err := c.ResolveAccount(context.Background(), "nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}

func TestFetchActiveParticipants(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"gameId":42,"participants":[
			{"puuid":"p1","championId":266},
			{"puuid":"p2","championId":222}
		]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("key", srv.URL)

	parts, err := c.FetchActiveParticipants(context.Background(), "p1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(parts) != 2 || parts[0].AccountID != "p1" || parts[0].CharacterKey != 266 {
		t.Fatalf("unexpected participants: %+v", parts)
	}

	status = http.StatusNotFound
	if _, err := c.FetchActiveParticipants(context.Background(), "p1"); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("got %v, want ErrNoActiveMatch", err)
	}

	status = http.StatusInternalServerError
	if _, err := c.FetchActiveParticipants(context.Background(), "p1"); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("got %v, want ErrDirectoryUnavailable", err)
	}
}

func TestLookupCharacterLabel(t *testing.T) {
	c := NewClient("key", "jp1")
	if got := c.LookupCharacterLabel(266); got != "Aatrox" {
		t.Fatalf("got %q", got)
	}
	if got := c.LookupCharacterLabel(999999); got != "Champion 999999" {
		t.Fatalf("fallback: got %q", got)
	}
}
