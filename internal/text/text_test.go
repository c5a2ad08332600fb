package text

import (
	"strings"
	"testing"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

func sampleSnapshot(blind, mention bool) types.Snapshot {
	return types.Snapshot{
		Venue:        "v1",
		Phase:        "voting",
		Blind:        blind,
		MentionStyle: mention,
		Host:         &types.Member{ID: "h1", Label: "hosty"},
		Blue: []types.Member{
			{Position: 1, ID: "u1", Label: "alice", Votes: 2, Votable: true, Imposter: !blind},
			{Position: 2, ID: "u2", Label: "bob", Votes: 0, Votable: false},
		},
		Red: []types.Member{
			{Position: 1, ID: "u3", Label: "carol", Votes: 1, Votable: true},
		},
	}
}

func TestRenderSnapshotPlain(t *testing.T) {
	out := RenderSnapshot(sampleSnapshot(true, false))

	for _, want := range []string{"hosty", "1. alice: 2 vote(s)", "2. bob: 0 vote(s) (out of the running)", "carol", "Phase: voting"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered status missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "imposter") {
		t.Errorf("blind render leaked role information:\n%s", out)
	}
}

func TestRenderSnapshotMentions(t *testing.T) {
	out := RenderSnapshot(sampleSnapshot(true, true))

	if !strings.Contains(out, "<@u1>") {
		t.Errorf("mention render should reference ids, got:\n%s", out)
	}
	if strings.Contains(out, "alice") {
		t.Errorf("mention render should not use labels, got:\n%s", out)
	}
}

func TestRenderSnapshotRevealsImposter(t *testing.T) {
	out := RenderSnapshot(sampleSnapshot(false, false))

	if !strings.Contains(out, "alice: 2 vote(s) [imposter]") {
		t.Errorf("unblinded render should mark the imposter:\n%s", out)
	}
}

func TestForErrorCoversGameErrors(t *testing.T) {
	errs := []error{
		engine.ErrInvalidTransition, engine.ErrWrongPhase, engine.ErrNotHost,
		engine.ErrNotPlayer, engine.ErrNotMember, engine.ErrTeamFull,
		engine.ErrAlreadyJoined, engine.ErrInvalidTeam, engine.ErrHostAlreadyAssigned,
		engine.ErrRosterIncomplete, engine.ErrInvalidVoteTarget,
		engine.ErrAlreadyVoted, engine.ErrIncompleteVoting,
	}
	seen := make(map[string]bool)
	fallback := ForError(engine.ErrParticipantMismatch)
	for _, err := range errs {
		line := ForError(err)
		if line == fallback {
			t.Errorf("no dedicated line for %v", err)
		}
		if seen[line] {
			t.Errorf("duplicate line %q", line)
		}
		seen[line] = true
	}
}
