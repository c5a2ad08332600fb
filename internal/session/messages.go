package session

import (
	"time"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

// Msg is a message into the session actor. Every command carries a buffered
// Reply channel; the loop answers exactly once.
type Msg interface{ isSessionMsg() }

type JoinHost struct {
	ID    engine.PlayerID
	Label string
	Reply chan error
}

type JoinTeam struct {
	ID    engine.PlayerID
	Label string
	Team  engine.Team
	Reply chan error
}

// Leave removes the issuer from whichever seat they hold, player first.
type Leave struct {
	ID    engine.PlayerID
	Reply chan error
}

type BindAccount struct {
	ID        engine.PlayerID
	AccountID string
	Reply     chan error
}

// StartGame begins the game: role draw, ban-pick window, then the match.
type StartGame struct {
	Issuer  engine.PlayerID
	BanPick time.Duration // 0 = configured default
	Reply   chan error
}

// FinishMatch signals the real match ended and opens thinking time.
type FinishMatch struct {
	Issuer   engine.PlayerID
	Thinking time.Duration // 0 = configured default
	Reply    chan error
}

type CastVote struct {
	Voter  engine.PlayerID
	Target int
	Reply  chan error
}

type Aggregate struct {
	Issuer engine.PlayerID
	Reply  chan error
}

type Reset struct {
	Issuer engine.PlayerID
	Reply  chan error
}

type GetStatus struct {
	Blind   bool
	Mention bool
	Reply   chan types.Snapshot
}

// Observe registers a spectator outbox; it receives the current snapshot
// immediately and every version change after that. Slow observers are
// dropped.
type Observe struct {
	ObserverID string
	Outbox     chan types.Snapshot
}

type Unobserve struct{ ObserverID string }

type Shutdown struct{}

func (JoinHost) isSessionMsg()    {}
func (JoinTeam) isSessionMsg()    {}
func (Leave) isSessionMsg()       {}
func (BindAccount) isSessionMsg() {}
func (StartGame) isSessionMsg()   {}
func (FinishMatch) isSessionMsg() {}
func (CastVote) isSessionMsg()    {}
func (Aggregate) isSessionMsg()   {}
func (Reset) isSessionMsg()       {}
func (GetStatus) isSessionMsg()   {}
func (Observe) isSessionMsg()     {}
func (Unobserve) isSessionMsg()   {}
func (Shutdown) isSessionMsg()    {}

// Internal continuation messages. Suspended work never touches state
// directly; it re-enters the loop, stamped with the epoch it expects.

type timerStage int

const (
	stageBanPick timerStage = iota
	stageThinking
)

type timerFired struct {
	epoch   int
	stage   timerStage
	warning bool
}

type phaseQuery struct{ reply chan phaseView }

type phaseView struct {
	phase engine.Phase
	epoch int
}

type pollDelivered struct {
	epoch int
	parts []engine.Participant
}

func (timerFired) isSessionMsg()    {}
func (phaseQuery) isSessionMsg()    {}
func (pollDelivered) isSessionMsg() {}
