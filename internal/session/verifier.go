package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/internal/text"
)

const pollRequestTimeout = 10 * time.Second

// runVerifier is the background match-verification task, started when the
// ban-pick window closes. It polls the match directory, bounded by the
// attempt budget, and delivers at most one successful observation back into
// the loop. Cancellation is cooperative: before every poll it re-checks that
// the session is still in the game it was started for.
func (s *Session) runVerifier(epoch int, accountID string) {
	log := s.log.With(zap.Int("epoch", epoch))
	log.Info("match verification started", zap.Int("max_attempts", s.cfg.PollMaxAttempts))

	for attempt := 1; attempt <= s.cfg.PollMaxAttempts; attempt++ {
		if !s.stillCurrent(epoch) {
			log.Info("match verification abandoned, session moved on")
			return
		}

		ctx, cancel := context.WithTimeout(s.ctx, pollRequestTimeout)
		parts, err := s.directory.FetchActiveParticipants(ctx, accountID)
		cancel()
		if err == nil {
			s.send(pollDelivered{epoch: epoch, parts: parts})
			return
		}
		log.Debug("match not observable yet", zap.Int("attempt", attempt), zap.Error(err))

		if !s.sleep(s.cfg.PollInterval) {
			return
		}
	}

	log.Info("match verification attempts exhausted")
	s.messenger.SendToVenue(text.VerifyExhausted)
}

// stillCurrent asks the loop whether the phase pinned at task start is still
// live.
func (s *Session) stillCurrent(epoch int) bool {
	reply := make(chan phaseView, 1)
	select {
	case s.inbox <- phaseQuery{reply: reply}:
	case <-s.ctx.Done():
		return false
	}
	select {
	case v := <-reply:
		return v.phase == engine.PhaseInGame && v.epoch == epoch
	case <-s.ctx.Done():
		return false
	}
}

// handlePoll applies a delivered observation inside the loop, re-validating
// the phase one last time before acting.
func (s *Session) handlePoll(msg pollDelivered) {
	if msg.epoch != s.state.Epoch() || s.state.Phase() != engine.PhaseInGame {
		s.log.Debug("dropping stale poll result")
		return
	}
	events, err := s.state.VerifyParticipants(msg.parts, s.directory.LookupCharacterLabel)
	if err != nil {
		// Terminal for this verification task only; the session plays on.
		s.log.Warn("participant verification failed", zap.Error(err))
		s.messenger.SendToVenue(text.VerifyMismatch)
		return
	}
	s.dispatch(events)
	s.messenger.SendToVenue(text.VerifyResolved)
	s.bump()
}
