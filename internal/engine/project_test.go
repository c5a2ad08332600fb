package engine

import (
	"reflect"
	"testing"
)

func TestProject_BlindHidesRoles(t *testing.T) {
	s := testState(3)
	fullRoster(t, s)
	_ = s.JoinHost("h1", "the host")
	if _, err := s.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}

	blind := s.Project("venue-1", true, false)
	for _, m := range append(blind.Blue, blind.Red...) {
		if m.Imposter {
			t.Fatalf("blind snapshot leaked a role: %+v", m)
		}
	}

	full := s.Project("venue-1", false, false)
	imposters := 0
	for _, m := range append(full.Blue, full.Red...) {
		if m.Imposter {
			imposters++
		}
	}
	if imposters != 2 {
		t.Fatalf("non-blind snapshot: %d imposters, want 2", imposters)
	}
	if full.Host == nil || full.Host.Label != "the host" {
		t.Fatalf("host missing from snapshot: %+v", full.Host)
	}
}

func TestProject_PureAndRepeatable(t *testing.T) {
	s := testState(3)
	fullRoster(t, s)
	advance(t, s, PhaseVoting)
	vote(t, s, TeamBlue, []int{2, 2, 2, 2, 2})

	first := s.Project("venue-1", true, true)
	second := s.Project("venue-1", true, true)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection must be repeatable:\n%+v\n%+v", first, second)
	}
	if first.Blue[1].Votes != 5 {
		t.Fatalf("tally missing from snapshot: %+v", first.Blue[1])
	}
	if !first.MentionStyle {
		t.Fatalf("mention style must be carried through")
	}

	// Projecting twice must not have changed anything observable.
	if err := s.CastVote("r1", 1); err != nil {
		t.Fatalf("state mutated by projection? %v", err)
	}
}
