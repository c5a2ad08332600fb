// Package riot is the match-directory collaborator: summoner account
// resolution and active-match observation against the Riot API.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
)

var ErrAccountNotFound = errors.New("summoner not found")
var ErrNoActiveMatch = errors.New("no active match for account")
var ErrDirectoryUnavailable = errors.New("match directory unavailable")

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(apiKey, region string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: fmt.Sprintf("https://%s.api.riotgames.com", region),
		apiKey:  apiKey,
	}
}

// NewClientWithBaseURL exists for tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type summoner struct {
	PUUID string `json:"puuid"`
	Name  string `json:"name"`
}

type activeGame struct {
	GameID       int64 `json:"gameId"`
	Participants []struct {
		PUUID      string `json:"puuid"`
		ChampionID int    `json:"championId"`
	} `json:"participants"`
}

// ResolveAccount maps a summoner name onto its stable account identifier.
func (c *Client) ResolveAccount(ctx context.Context, name string) (string, error) {
	var s summoner
	err := c.get(ctx, "/lol/summoner/v4/summoners/by-name/"+url.PathEscape(name), &s)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return s.PUUID, nil
}

// FetchActiveParticipants returns the participant set of the live match the
// given account is currently in.
func (c *Client) FetchActiveParticipants(ctx context.Context, accountID string) ([]engine.Participant, error) {
	var g activeGame
	err := c.get(ctx, "/lol/spectator/v5/active-games/by-summoner/"+url.PathEscape(accountID), &g)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrNoActiveMatch
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	parts := make([]engine.Participant, len(g.Participants))
	for i, p := range g.Participants {
		parts[i] = engine.Participant{AccountID: p.PUUID, CharacterKey: p.ChampionID}
	}
	return parts, nil
}

var errNotFound = errors.New("not found")

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
