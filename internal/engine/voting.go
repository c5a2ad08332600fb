package engine

import "slices"

// Begin fires the pre-game → ban-pick transition and performs the one-shot
// secret-role draw. It is refused outright unless both teams are full and
// every member has a bound match-directory account.
func (s *State) Begin() ([]Event, error) {
	if !s.canFire(TriggerBegin) {
		return nil, ErrInvalidTransition
	}
	for _, team := range teamOrder {
		if len(s.teams[team]) != TeamSize {
			return nil, ErrRosterIncomplete
		}
		for _, p := range s.teamPlayers(team) {
			if p.AccountID == "" {
				return nil, ErrRosterIncomplete
			}
		}
	}

	// One member per team, uniformly at random.
	for _, team := range teamOrder {
		ids := s.teams[team]
		s.players[ids[s.rng.Intn(len(ids))]].SecretRole = true
	}

	if err := s.Fire(TriggerBegin); err != nil {
		return nil, err
	}

	var events []Event
	s.eachPlayer(func(p *Player) {
		events = append(events, Event{Type: EvtRoleDealt, Player: p.ID, Team: p.Team, Imposter: p.SecretRole})
	})
	return events, nil
}

// CastVote records one vote during the voting phase. The target position
// indexes the voter's own team; cross-team votes are impossible by
// construction.
func (s *State) CastVote(voter PlayerID, target int) error {
	if s.phase != PhaseVoting {
		return ErrWrongPhase
	}
	p, ok := s.players[voter]
	if !ok {
		return ErrNotPlayer
	}
	ids := s.teams[p.Team]
	if target < 1 || target > len(ids) {
		return ErrInvalidVoteTarget
	}
	if p.HasVoted {
		return ErrAlreadyVoted
	}
	candidate := s.players[ids[target-1]]
	if !candidate.Votable {
		return ErrInvalidVoteTarget
	}
	p.HasVoted = true
	p.VoteTarget = target
	candidate.VotesReceived++
	return nil
}

// Aggregate inspects both teams' tallies once every member has voted.
//
// Per team: a unique top vote-getter finalizes that team. A tie at the top
// forces a re-vote round instead. If the tie spans the whole team (the
// uniform distribution, nobody learned anything) the round is reset wholesale
// and everyone stays votable. Otherwise the candidate list narrows to the
// tied players and everybody else is out of the running for good.
//
// Only when neither team needs a re-vote does the phase advance to end, at
// which point every displayed identity is reverted.
func (s *State) Aggregate() ([]Event, error) {
	if s.phase != PhaseVoting {
		return nil, ErrWrongPhase
	}
	for _, team := range teamOrder {
		for _, p := range s.teamPlayers(team) {
			if !p.HasVoted {
				return nil, ErrIncompleteVoting
			}
		}
	}

	var events []Event
	for _, team := range teamOrder {
		if ev, revote := s.checkTeamTally(team); revote {
			events = append(events, ev)
		}
	}
	if len(events) > 0 {
		// Re-vote round: the phase does not advance and settled teams keep
		// their tallies untouched.
		return events, nil
	}

	if err := s.Fire(TriggerAggregate); err != nil {
		return nil, err
	}
	s.eachPlayer(func(p *Player) {
		p.ResolvedLabel = ""
		events = append(events, Event{Type: EvtIdentityReverted, Player: p.ID, Label: p.Label})
	})
	events = append(events, Event{Type: EvtVotesFinalized})
	return events, nil
}

// checkTeamTally applies the tie-break law for one team and reports whether
// that team must re-vote.
func (s *State) checkTeamTally(team Team) (Event, bool) {
	players := s.teamPlayers(team)

	top := 0
	for _, p := range players {
		if p.VotesReceived > top {
			top = p.VotesReceived
		}
	}
	var tied []int // 1-based positions holding the top tally
	for i, p := range players {
		if p.VotesReceived == top {
			tied = append(tied, i+1)
		}
	}
	if len(tied) < 2 {
		return Event{}, false
	}

	uniform := len(tied) == len(players)
	for i, p := range players {
		p.HasVoted = false
		p.VoteTarget = 0
		p.VotesReceived = 0
		if uniform {
			continue
		}
		if !slices.Contains(tied, i+1) {
			p.Votable = false
		}
	}

	candidates := tied
	if uniform {
		// Nothing was learned; every position is back on the ballot.
		candidates = make([]int, len(players))
		for i := range players {
			candidates[i] = i + 1
		}
	}
	voters := make([]PlayerID, len(players))
	for i, p := range players {
		voters[i] = p.ID
	}
	return Event{Type: EvtRevoteRequired, Team: team, Candidates: candidates, Voters: voters}, true
}
