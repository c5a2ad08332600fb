package engine

type Phase string

const (
	PhasePreGame  Phase = "pre-game"
	PhaseBanPick  Phase = "ban-pick"
	PhaseInGame   Phase = "in-game"
	PhaseThinking Phase = "thinking-time"
	PhaseVoting   Phase = "voting"
	PhaseEnd      Phase = "end"
)

type Trigger string

const (
	TriggerBegin     Trigger = "begin"
	TriggerStart     Trigger = "start"
	TriggerFinish    Trigger = "finish"
	TriggerVote      Trigger = "vote"
	TriggerAggregate Trigger = "aggregate"
)

// transitions is the full phase graph. Reset is not an edge: it jumps to
// pre-game from anywhere and is handled by State.Reset.
var transitions = map[Trigger]struct{ from, to Phase }{
	TriggerBegin:     {PhasePreGame, PhaseBanPick},
	TriggerStart:     {PhaseBanPick, PhaseInGame},
	TriggerFinish:    {PhaseInGame, PhaseThinking},
	TriggerVote:      {PhaseThinking, PhaseVoting},
	TriggerAggregate: {PhaseVoting, PhaseEnd},
}

// Fire moves the session along a declared edge. A trigger whose source does
// not match the current phase fails with ErrInvalidTransition and leaves the
// state untouched. Every successful transition bumps the epoch so suspended
// continuations can detect staleness.
func (s *State) Fire(tr Trigger) error {
	edge, ok := transitions[tr]
	if !ok || edge.from != s.phase {
		return ErrInvalidTransition
	}
	s.phase = edge.to
	s.epoch++
	return nil
}

func (s *State) canFire(tr Trigger) bool {
	edge, ok := transitions[tr]
	return ok && edge.from == s.phase
}
