package engine

import (
	"math/rand"
	"time"
)

// TeamSize is the fixed capacity of each side.
const TeamSize = 5

type Team string

const (
	TeamBlue Team = "blue"
	TeamRed  Team = "red"
)

var teamOrder = []Team{TeamBlue, TeamRed}

// ParseTeam maps a user-supplied team tag onto a Team.
func ParseTeam(tag string) (Team, bool) {
	switch tag {
	case "blue":
		return TeamBlue, true
	case "red":
		return TeamRed, true
	default:
		return "", false
	}
}

// PlayerID is the opaque chat-platform identity of a participant. Equality of
// players is equality of PlayerIDs.
type PlayerID string

type Player struct {
	ID            PlayerID
	Label         string
	Team          Team
	SecretRole    bool
	HasVoted      bool
	VoteTarget    int // 1-based position, 0 = none
	VotesReceived int
	Votable       bool
	AccountID     string // external match-directory binding, "" until bound
	ResolvedLabel string // in-match character label, "" until verified
}

// DisplayLabel is what the player is currently shown as.
func (p *Player) DisplayLabel() string {
	if p.ResolvedLabel != "" {
		return p.ResolvedLabel
	}
	return p.Label
}

// State is the full mutable state of one venue's session. It is a plain data
// structure with no locking: the owning session actor serializes access.
// Teams hold ordered player identifiers; the players map owns the records.
type State struct {
	phase     Phase
	epoch     int
	host      PlayerID
	hostLabel string
	players   map[PlayerID]*Player
	teams     map[Team][]PlayerID
	rng       *rand.Rand
}

func NewState() *State {
	return NewStateWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewStateWithRand exists so tests can pin the secret-role draw.
func NewStateWithRand(rng *rand.Rand) *State {
	return &State{
		phase:   PhasePreGame,
		players: make(map[PlayerID]*Player),
		teams:   map[Team][]PlayerID{TeamBlue: {}, TeamRed: {}},
		rng:     rng,
	}
}

func (s *State) Phase() Phase { return s.phase }

// Epoch increases on every phase transition, including reset. Timed waits
// capture it before suspending and abandon their continuation if it moved.
func (s *State) Epoch() int { return s.epoch }

func (s *State) IsHost(id PlayerID) bool { return s.host != "" && s.host == id }

func (s *State) IsPlayer(id PlayerID) bool {
	_, ok := s.players[id]
	return ok
}

func (s *State) IsMember(id PlayerID) bool { return s.IsHost(id) || s.IsPlayer(id) }

// PlayerByID returns a copy of the player's record.
func (s *State) PlayerByID(id PlayerID) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Reset clears the roster and forces the phase back to pre-game from any
// state. This is the one transition allowed to bypass the phase graph.
func (s *State) Reset() {
	s.phase = PhasePreGame
	s.epoch++
	s.host = ""
	s.hostLabel = ""
	s.players = make(map[PlayerID]*Player)
	s.teams = map[Team][]PlayerID{TeamBlue: {}, TeamRed: {}}
}

// JoinHost registers the host. A host may additionally join a team as a
// player; the two roles are tracked independently.
func (s *State) JoinHost(id PlayerID, label string) error {
	if s.phase != PhasePreGame {
		return ErrWrongPhase
	}
	if s.host != "" {
		return ErrHostAlreadyAssigned
	}
	s.host = id
	s.hostLabel = label
	return nil
}

// JoinPlayer adds the player to the given team and asks the messaging layer
// (via the emitted event) to request their match-directory account binding.
func (s *State) JoinPlayer(id PlayerID, label string, team Team) ([]Event, error) {
	if s.phase != PhasePreGame {
		return nil, ErrWrongPhase
	}
	if team != TeamBlue && team != TeamRed {
		return nil, ErrInvalidTeam
	}
	if _, ok := s.players[id]; ok {
		return nil, ErrAlreadyJoined
	}
	if len(s.teams[team]) >= TeamSize {
		return nil, ErrTeamFull
	}
	s.players[id] = &Player{ID: id, Label: label, Team: team, Votable: true}
	s.teams[team] = append(s.teams[team], id)
	return []Event{{Type: EvtBindingRequested, Player: id}}, nil
}

// LeaveHost clears the host seat.
func (s *State) LeaveHost(id PlayerID) error {
	if s.phase != PhasePreGame {
		return ErrWrongPhase
	}
	if !s.IsHost(id) {
		return ErrNotHost
	}
	s.host = ""
	return nil
}

// LeavePlayer removes the player from their team.
func (s *State) LeavePlayer(id PlayerID) error {
	if s.phase != PhasePreGame {
		return ErrWrongPhase
	}
	p, ok := s.players[id]
	if !ok {
		return ErrNotPlayer
	}
	ids := s.teams[p.Team]
	for i, pid := range ids {
		if pid == id {
			s.teams[p.Team] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(s.players, id)
	return nil
}

// BindAccount records the player's resolved match-directory account.
func (s *State) BindAccount(id PlayerID, accountID string) error {
	p, ok := s.players[id]
	if !ok {
		return ErrNotPlayer
	}
	p.AccountID = accountID
	return nil
}

// RepresentativeAccount picks any bound account, used as the lookup key for
// the active-match poll.
func (s *State) RepresentativeAccount() (string, bool) {
	for _, team := range teamOrder {
		for _, id := range s.teams[team] {
			if acct := s.players[id].AccountID; acct != "" {
				return acct, true
			}
		}
	}
	return "", false
}

func (s *State) teamPlayers(team Team) []*Player {
	ids := s.teams[team]
	out := make([]*Player, len(ids))
	for i, id := range ids {
		out[i] = s.players[id]
	}
	return out
}

func (s *State) eachPlayer(fn func(*Player)) {
	for _, team := range teamOrder {
		for _, id := range s.teams[team] {
			fn(s.players[id])
		}
	}
}
