package text

import (
	"errors"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
)

// ForError maps an expected game-rule failure onto its user-facing line.
func ForError(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidTransition):
		return "The game is not in the right phase for that."
	case errors.Is(err, engine.ErrWrongPhase):
		return "That command is not available right now."
	case errors.Is(err, engine.ErrNotHost):
		return "Only the host can do that."
	case errors.Is(err, engine.ErrNotPlayer):
		return "Only players can do that."
	case errors.Is(err, engine.ErrNotMember):
		return "You have not joined this game yet."
	case errors.Is(err, engine.ErrTeamFull):
		return "That team is already full."
	case errors.Is(err, engine.ErrAlreadyJoined):
		return "You already joined this game."
	case errors.Is(err, engine.ErrInvalidTeam):
		return `Invalid team. Pick "red" or "blue".`
	case errors.Is(err, engine.ErrHostAlreadyAssigned):
		return "A host is already registered."
	case errors.Is(err, engine.ErrRosterIncomplete):
		return "Both teams need five players with linked accounts before starting."
	case errors.Is(err, engine.ErrInvalidVoteTarget):
		return "That is not a valid vote target."
	case errors.Is(err, engine.ErrAlreadyVoted):
		return "You already cast your vote this round."
	case errors.Is(err, engine.ErrIncompleteVoting):
		return "Votes are still missing. Did someone forget?"
	default:
		return "Something went wrong."
	}
}
