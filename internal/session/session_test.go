package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

// fakeMessenger records collaborator requests; safe for use from the
// verifier goroutine.
type fakeMessenger struct {
	mu        sync.Mutex
	venue     []string
	direct    map[engine.PlayerID][]string
	nicknames map[engine.PlayerID]string
	bindings  []engine.PlayerID
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		direct:    make(map[engine.PlayerID][]string),
		nicknames: make(map[engine.PlayerID]string),
	}
}

func (f *fakeMessenger) SendToVenue(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.venue = append(f.venue, text)
}

func (f *fakeMessenger) SendDirect(player engine.PlayerID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct[player] = append(f.direct[player], text)
}

func (f *fakeMessenger) SetDisplayedIdentity(player engine.PlayerID, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nicknames[player] = label
}

func (f *fakeMessenger) RequestAccountBinding(player engine.PlayerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, player)
}

func (f *fakeMessenger) nickname(player engine.PlayerID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nicknames[player]
}

func (f *fakeMessenger) venueContains(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.venue {
		if line == text {
			return true
		}
	}
	return false
}

type fakeDirectory struct {
	fetch func(accountID string) ([]engine.Participant, error)
}

func (f *fakeDirectory) FetchActiveParticipants(_ context.Context, accountID string) ([]engine.Participant, error) {
	return f.fetch(accountID)
}

func (f *fakeDirectory) LookupCharacterLabel(key int) string {
	return fmt.Sprintf("champ-%d", key)
}

func newTestSession(t *testing.T, dir *fakeDirectory) (*Session, *fakeMessenger) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	msn := newFakeMessenger()
	if dir == nil {
		dir = &fakeDirectory{fetch: func(string) ([]engine.Participant, error) {
			return nil, fmt.Errorf("no active match")
		}}
	}
	cfg := Config{
		BanPickDuration:  40 * time.Millisecond,
		ThinkingDuration: 40 * time.Millisecond,
		TimerWarning:     time.Hour, // never warn in tests
		PollInterval:     10 * time.Millisecond,
		PollMaxAttempts:  3,
	}
	return New(ctx, "venue-1", msn, dir, cfg, zap.NewNop()), msn
}

func ask(t *testing.T, s *Session, build func(chan error) Msg) error {
	t.Helper()
	reply := make(chan error, 1)
	s.Inbox() <- build(reply)
	select {
	case err := <-reply:
		return err
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for session reply")
		return nil
	}
}

func status(t *testing.T, s *Session) types.Snapshot {
	t.Helper()
	reply := make(chan types.Snapshot, 1)
	s.Inbox() <- GetStatus{Blind: true, Reply: reply}
	select {
	case snap := <-reply:
		return snap
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for status")
		return types.Snapshot{}
	}
}

func awaitPhase(t *testing.T, s *Session, want engine.Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if status(t, s).Phase == string(want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached phase %v (at %v)", want, status(t, s).Phase)
}

// seatEveryone fills both teams with bound players and seats b1 as host.
func seatEveryone(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, ask(t, s, func(r chan error) Msg { return JoinHost{ID: "b1", Label: "b1", Reply: r} }))
	for i := 1; i <= engine.TeamSize; i++ {
		for _, team := range []engine.Team{engine.TeamBlue, engine.TeamRed} {
			id := engine.PlayerID(fmt.Sprintf("%c%d", team[0], i))
			require.NoError(t, ask(t, s, func(r chan error) Msg {
				return JoinTeam{ID: id, Label: string(id), Team: team, Reply: r}
			}))
			require.NoError(t, ask(t, s, func(r chan error) Msg {
				return BindAccount{ID: id, AccountID: "acct-" + string(id), Reply: r}
			}))
		}
	}
}

func matchingRoster(s *types.Snapshot) []engine.Participant {
	var parts []engine.Participant
	key := 200
	for _, m := range append(s.Blue, s.Red...) {
		parts = append(parts, engine.Participant{AccountID: "acct-" + m.ID, CharacterKey: key})
		key++
	}
	return parts
}

func TestJoin_RequestsBindingAndNotifiesVenue(t *testing.T) {
	s, msn := newTestSession(t, nil)

	require.NoError(t, ask(t, s, func(r chan error) Msg {
		return JoinTeam{ID: "u1", Label: "alice", Team: engine.TeamBlue, Reply: r}
	}))

	snap := status(t, s)
	require.Len(t, snap.Blue, 1)
	require.Equal(t, "alice", snap.Blue[0].Label)
	require.False(t, snap.Blue[0].Bound)

	msn.mu.Lock()
	defer msn.mu.Unlock()
	require.Equal(t, []engine.PlayerID{"u1"}, msn.bindings)
}

func TestObserver_ReceivesVersionedSnapshots(t *testing.T) {
	s, _ := newTestSession(t, nil)

	out := make(chan types.Snapshot, 4)
	s.Inbox() <- Observe{ObserverID: "ws1", Outbox: out}

	first := <-out
	require.Equal(t, 0, first.Version)
	require.True(t, first.Blind)

	require.NoError(t, ask(t, s, func(r chan error) Msg {
		return JoinTeam{ID: "u1", Label: "alice", Team: engine.TeamRed, Reply: r}
	}))

	select {
	case next := <-out:
		require.Equal(t, 1, next.Version)
		require.Len(t, next.Red, 1)
	case <-time.After(time.Second):
		t.Fatalf("observer never saw the join")
	}
}

func TestStart_GatesAndRuns(t *testing.T) {
	s, msn := newTestSession(t, nil)
	seatEveryone(t, s)

	// Player but not host.
	require.ErrorIs(t, ask(t, s, func(r chan error) Msg {
		return StartGame{Issuer: "r1", Reply: r}
	}), engine.ErrNotHost)

	require.NoError(t, ask(t, s, func(r chan error) Msg {
		return StartGame{Issuer: "b1", Reply: r}
	}))
	require.Equal(t, string(engine.PhaseBanPick), status(t, s).Phase)

	// A second start is an undeclared edge.
	require.ErrorIs(t, ask(t, s, func(r chan error) Msg {
		return StartGame{Issuer: "b1", Reply: r}
	}), engine.ErrInvalidTransition)

	// Everyone got a role DM.
	msn.mu.Lock()
	dms := len(msn.direct)
	msn.mu.Unlock()
	require.Equal(t, 2*engine.TeamSize, dms)

	// Ban-pick window elapses into the match.
	awaitPhase(t, s, engine.PhaseInGame)
}

func TestStart_RefusedOnIncompleteRoster(t *testing.T) {
	s, _ := newTestSession(t, nil)
	require.NoError(t, ask(t, s, func(r chan error) Msg { return JoinHost{ID: "h", Label: "h", Reply: r} }))
	require.NoError(t, ask(t, s, func(r chan error) Msg {
		return JoinTeam{ID: "u1", Label: "u1", Team: engine.TeamBlue, Reply: r}
	}))

	require.ErrorIs(t, ask(t, s, func(r chan error) Msg {
		return StartGame{Issuer: "h", Reply: r}
	}), engine.ErrRosterIncomplete)
	require.Equal(t, string(engine.PhasePreGame), status(t, s).Phase)
}

func TestReset_AbandonsPendingTimer(t *testing.T) {
	s, _ := newTestSession(t, nil)
	seatEveryone(t, s)

	require.NoError(t, ask(t, s, func(r chan error) Msg { return StartGame{Issuer: "b1", Reply: r} }))
	require.NoError(t, ask(t, s, func(r chan error) Msg { return Reset{Issuer: "b1", Reply: r} }))

	snap := status(t, s)
	require.Equal(t, string(engine.PhasePreGame), snap.Phase)
	require.Empty(t, snap.Blue)
	require.Empty(t, snap.Red)
	require.Nil(t, snap.Host)

	// The ban-pick continuation fires into a bumped epoch and must be dropped.
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, string(engine.PhasePreGame), status(t, s).Phase)
}

func TestReset_HostOnly(t *testing.T) {
	s, _ := newTestSession(t, nil)
	seatEveryone(t, s)
	require.ErrorIs(t, ask(t, s, func(r chan error) Msg {
		return Reset{Issuer: "r3", Reply: r}
	}), engine.ErrNotHost)
}

func TestVerifier_MatchRelabelsIdentities(t *testing.T) {
	var (
		mu    sync.Mutex
		parts []engine.Participant
	)
	dir := &fakeDirectory{fetch: func(string) ([]engine.Participant, error) {
		mu.Lock()
		defer mu.Unlock()
		if parts == nil {
			return nil, fmt.Errorf("not yet")
		}
		return parts, nil
	}}
	s, msn := newTestSession(t, dir)
	seatEveryone(t, s)

	snap := status(t, s)
	mu.Lock()
	parts = matchingRoster(&snap)
	mu.Unlock()

	require.NoError(t, ask(t, s, func(r chan error) Msg { return StartGame{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseInGame)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msn.nickname("b1") != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, "champ-200", msn.nickname(engine.PlayerID(status(t, s).Blue[0].ID)))
	require.Equal(t, string(engine.PhaseInGame), status(t, s).Phase)

	// Resolved labels surface in projections.
	require.Equal(t, "champ-200", status(t, s).Blue[0].Label)
}

func TestVerifier_MismatchIsTerminalButNotFatal(t *testing.T) {
	dir := &fakeDirectory{fetch: func(string) ([]engine.Participant, error) {
		return []engine.Participant{{AccountID: "some-stranger", CharacterKey: 1}}, nil
	}}
	s, msn := newTestSession(t, dir)
	seatEveryone(t, s)

	require.NoError(t, ask(t, s, func(r chan error) Msg { return StartGame{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseInGame)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msn.venueContains("The live match roster does not match the lobby. Identity relabeling is off for this game.") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, msn.venueContains("The live match roster does not match the lobby. Identity relabeling is off for this game."))
	// The phase transition is not undone.
	require.Equal(t, string(engine.PhaseInGame), status(t, s).Phase)
	require.Empty(t, msn.nickname("b1"))
}

func TestFullRound_VoteRevoteAggregate(t *testing.T) {
	s, msn := newTestSession(t, nil)
	seatEveryone(t, s)

	require.NoError(t, ask(t, s, func(r chan error) Msg { return StartGame{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseInGame)
	require.NoError(t, ask(t, s, func(r chan error) Msg { return FinishMatch{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseVoting)

	castAll := func(team engine.Team, targets []int) {
		for i, target := range targets {
			id := engine.PlayerID(fmt.Sprintf("%c%d", team[0], i+1))
			require.NoError(t, ask(t, s, func(r chan error) Msg {
				return CastVote{Voter: id, Target: target, Reply: r}
			}))
		}
	}

	// blue ties at the top {0,0,1,2,2}; red settles.
	castAll(engine.TeamBlue, []int{3, 4, 4, 5, 5})
	castAll(engine.TeamRed, []int{1, 1, 1, 1, 2})

	require.NoError(t, ask(t, s, func(r chan error) Msg { return Aggregate{Issuer: "b1", Reply: r} }))
	require.Equal(t, string(engine.PhaseVoting), status(t, s).Phase)
	require.True(t, msn.venueContains("The blue team's vote is tied. A re-vote is required."))

	castAll(engine.TeamBlue, []int{4, 4, 4, 5, 5})
	require.NoError(t, ask(t, s, func(r chan error) Msg { return Aggregate{Issuer: "b1", Reply: r} }))
	require.Equal(t, string(engine.PhaseEnd), status(t, s).Phase)
}

func TestAggregate_IncompleteIsRefused(t *testing.T) {
	s, _ := newTestSession(t, nil)
	seatEveryone(t, s)
	require.NoError(t, ask(t, s, func(r chan error) Msg { return StartGame{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseInGame)
	require.NoError(t, ask(t, s, func(r chan error) Msg { return FinishMatch{Issuer: "b1", Reply: r} }))
	awaitPhase(t, s, engine.PhaseVoting)

	require.ErrorIs(t, ask(t, s, func(r chan error) Msg {
		return Aggregate{Issuer: "b1", Reply: r}
	}), engine.ErrIncompleteVoting)
}
