// Package session runs one venue's game as a single-goroutine actor. All
// mutating operations are serialized through the inbox, which is the only
// concurrency discipline the engine needs.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/internal/text"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

// Messenger is the messaging collaborator. All methods are best-effort:
// implementations swallow and log failures, never surfacing them to game
// logic.
type Messenger interface {
	SendToVenue(text string)
	SendDirect(player engine.PlayerID, text string)
	SetDisplayedIdentity(player engine.PlayerID, label string)
	RequestAccountBinding(player engine.PlayerID)
}

// Directory is the match-directory collaborator used by the verification
// task.
type Directory interface {
	FetchActiveParticipants(ctx context.Context, accountID string) ([]engine.Participant, error)
	LookupCharacterLabel(characterKey int) string
}

type Config struct {
	BanPickDuration  time.Duration
	ThinkingDuration time.Duration
	TimerWarning     time.Duration // heads-up before a timed window closes
	PollInterval     time.Duration
	PollMaxAttempts  int
}

func (c Config) withDefaults() Config {
	if c.BanPickDuration <= 0 {
		c.BanPickDuration = 3 * time.Minute
	}
	if c.ThinkingDuration <= 0 {
		c.ThinkingDuration = 5 * time.Minute
	}
	if c.TimerWarning <= 0 {
		c.TimerWarning = time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.PollMaxAttempts <= 0 {
		c.PollMaxAttempts = 30
	}
	return c
}

type Session struct {
	venue     string
	cfg       Config
	inbox     chan Msg
	state     *engine.State
	version   int
	observers map[string]chan types.Snapshot
	messenger Messenger
	directory Directory
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(parent context.Context, venue string, messenger Messenger, directory Directory, cfg Config, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		venue:     venue,
		cfg:       cfg.withDefaults(),
		inbox:     make(chan Msg, 64),
		state:     engine.NewState(),
		observers: make(map[string]chan types.Snapshot),
		messenger: messenger,
		directory: directory,
		log:       log.With(zap.String("venue", venue)),
		ctx:       ctx,
		cancel:    cancel,
	}
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case JoinHost:
				err := s.state.JoinHost(msg.ID, msg.Label)
				msg.Reply <- err
				if err == nil {
					s.messenger.SendToVenue(text.HostJoined(msg.Label))
					s.bump()
				}

			case JoinTeam:
				events, err := s.state.JoinPlayer(msg.ID, msg.Label, msg.Team)
				msg.Reply <- err
				if err == nil {
					s.messenger.SendToVenue(text.Joined(msg.Label, string(msg.Team)))
					s.dispatch(events)
					s.bump()
				}

			case Leave:
				msg.Reply <- s.handleLeave(msg.ID)

			case BindAccount:
				err := s.state.BindAccount(msg.ID, msg.AccountID)
				msg.Reply <- err
				if err == nil {
					s.bump()
				}

			case StartGame:
				msg.Reply <- s.handleStart(msg)

			case FinishMatch:
				msg.Reply <- s.handleFinish(msg)

			case CastVote:
				err := s.state.CastVote(msg.Voter, msg.Target)
				msg.Reply <- err
				if err == nil {
					s.bump()
				}

			case Aggregate:
				msg.Reply <- s.handleAggregate(msg.Issuer)

			case Reset:
				if !s.state.IsHost(msg.Issuer) {
					msg.Reply <- engine.ErrNotHost
					break
				}
				s.state.Reset()
				msg.Reply <- nil
				s.messenger.SendToVenue(text.ResetDone)
				s.bump()

			case GetStatus:
				msg.Reply <- s.state.Project(s.venue, msg.Blind, msg.Mention)

			case Observe:
				s.observers[msg.ObserverID] = msg.Outbox
				msg.Outbox <- s.snapshot()

			case Unobserve:
				if ch, ok := s.observers[msg.ObserverID]; ok {
					close(ch)
					delete(s.observers, msg.ObserverID)
				}

			case timerFired:
				s.handleTimer(msg)

			case phaseQuery:
				msg.reply <- phaseView{phase: s.state.Phase(), epoch: s.state.Epoch()}

			case pollDelivered:
				s.handlePoll(msg)

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleLeave(id engine.PlayerID) error {
	if s.state.IsPlayer(id) {
		p, _ := s.state.PlayerByID(id)
		if err := s.state.LeavePlayer(id); err != nil {
			return err
		}
		s.messenger.SendToVenue(text.Left(p.Label))
		s.bump()
		return nil
	}
	if s.state.IsHost(id) {
		if err := s.state.LeaveHost(id); err != nil {
			return err
		}
		s.bump()
		return nil
	}
	return engine.ErrNotMember
}

func (s *Session) handleStart(msg StartGame) error {
	if !s.state.IsHost(msg.Issuer) {
		return engine.ErrNotHost
	}
	events, err := s.state.Begin()
	if err != nil {
		return err
	}
	s.messenger.SendToVenue(text.GameStarting)
	s.dispatch(events)
	s.messenger.SendToVenue(text.RolesDealt)
	s.messenger.SendToVenue(text.DMHint)
	s.messenger.SendToVenue(text.BanPickOpen)

	d := msg.BanPick
	if d <= 0 {
		d = s.cfg.BanPickDuration
	}
	s.scheduleWait(d, stageBanPick)
	s.bump()
	return nil
}

func (s *Session) handleFinish(msg FinishMatch) error {
	if !s.state.IsHost(msg.Issuer) {
		return engine.ErrNotHost
	}
	if err := s.state.Fire(engine.TriggerFinish); err != nil {
		return err
	}
	s.messenger.SendToVenue(text.MatchDone)
	s.messenger.SendToVenue(text.ThinkingOpen)

	d := msg.Thinking
	if d <= 0 {
		d = s.cfg.ThinkingDuration
	}
	s.scheduleWait(d, stageThinking)
	s.bump()
	return nil
}

func (s *Session) handleAggregate(issuer engine.PlayerID) error {
	if !s.state.IsHost(issuer) {
		return engine.ErrNotHost
	}
	events, err := s.state.Aggregate()
	if err != nil {
		return err
	}
	if engine.ContainsEvent(events, engine.EvtRevoteRequired) {
		s.dispatch(events)
		s.bump()
		return nil
	}
	s.dispatch(events)
	s.messenger.SendToVenue(text.Results)
	s.messenger.SendToVenue(text.RenderSnapshot(s.state.Project(s.venue, false, true)))
	s.bump()
	return nil
}

// dispatch maps engine events onto collaborator requests.
func (s *Session) dispatch(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtBindingRequested:
			s.messenger.RequestAccountBinding(ev.Player)

		case engine.EvtRoleDealt:
			if ev.Imposter {
				s.messenger.SendDirect(ev.Player, text.RoleImposter)
			} else {
				s.messenger.SendDirect(ev.Player, text.RoleVillager)
			}

		case engine.EvtRevoteRequired:
			s.messenger.SendToVenue(text.RevoteRequired(string(ev.Team)))
			ballot := text.RevoteBallot(s.candidateLabels(ev.Team, ev.Candidates))
			for _, voter := range ev.Voters {
				s.messenger.SendDirect(voter, ballot)
			}

		case engine.EvtIdentityResolved, engine.EvtIdentityReverted:
			s.messenger.SetDisplayedIdentity(ev.Player, ev.Label)
		}
	}
}

func (s *Session) candidateLabels(team engine.Team, positions []int) []string {
	snap := s.state.Project(s.venue, true, false)
	members := snap.Blue
	if team == engine.TeamRed {
		members = snap.Red
	}
	labels := make([]string, 0, len(positions))
	for _, pos := range positions {
		for _, m := range members {
			if m.Position == pos {
				labels = append(labels, m.Label)
			}
		}
	}
	return labels
}

// scheduleWait suspends for the given window off-loop, with a heads-up
// before it closes, then re-enters the loop. The fired message carries the
// epoch captured here; a reset or forced transition in the meantime makes it
// stale and it is dropped.
func (s *Session) scheduleWait(d time.Duration, stage timerStage) {
	epoch := s.state.Epoch()
	warn := s.cfg.TimerWarning
	go func() {
		if warn < d {
			if !s.sleep(d - warn) {
				return
			}
			s.send(timerFired{epoch: epoch, stage: stage, warning: true})
			d = warn
		}
		if !s.sleep(d) {
			return
		}
		s.send(timerFired{epoch: epoch, stage: stage})
	}()
}

func (s *Session) handleTimer(msg timerFired) {
	if msg.epoch != s.state.Epoch() {
		s.log.Debug("dropping stale timer", zap.Int("epoch", msg.epoch))
		return
	}
	if msg.warning {
		s.messenger.SendToVenue(text.OneMinuteLeft)
		return
	}

	switch msg.stage {
	case stageBanPick:
		if err := s.state.Fire(engine.TriggerStart); err != nil {
			s.log.Warn("ban-pick timer could not start the match", zap.Error(err))
			return
		}
		s.messenger.SendToVenue(text.MatchStart)
		s.bump()
		if account, ok := s.state.RepresentativeAccount(); ok {
			go s.runVerifier(s.state.Epoch(), account)
		}

	case stageThinking:
		if err := s.state.Fire(engine.TriggerVote); err != nil {
			s.log.Warn("thinking timer could not open voting", zap.Error(err))
			return
		}
		s.messenger.SendToVenue(text.VotingOpen)
		s.bump()
	}
}

func (s *Session) snapshot() types.Snapshot {
	snap := s.state.Project(s.venue, true, false)
	snap.Version = s.version
	return snap
}

// bump records a state change and broadcasts to observers, dropping any that
// cannot keep up.
func (s *Session) bump() {
	s.version++
	snap := s.snapshot()
	for id, ch := range s.observers {
		select {
		case ch <- snap:
		default:
			close(ch)
			delete(s.observers, id)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.observers {
		close(ch)
		delete(s.observers, id)
	}
	s.cancel()
}

// sleep waits for d unless the session is shutting down.
func (s *Session) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) send(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// IsExpected reports whether err is one of the locally handled game-rule
// failures, as opposed to a programming error.
func IsExpected(err error) bool {
	for _, e := range []error{
		engine.ErrInvalidTransition, engine.ErrWrongPhase, engine.ErrNotHost,
		engine.ErrNotPlayer, engine.ErrNotMember, engine.ErrTeamFull,
		engine.ErrAlreadyJoined, engine.ErrInvalidTeam, engine.ErrHostAlreadyAssigned,
		engine.ErrRosterIncomplete, engine.ErrInvalidVoteTarget,
		engine.ErrAlreadyVoted, engine.ErrIncompleteVoting,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
