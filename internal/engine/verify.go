package engine

// Participant is one externally observed in-match entrant: a bound account
// plus the numeric key of the character they locked in.
type Participant struct {
	AccountID    string
	CharacterKey int
}

// VerifyParticipants compares an observed participant set against the bound
// accounts of both teams combined. A mismatch is terminal for the verifying
// task and leaves the session untouched. On a match every player's displayed
// identity is rewritten to the character label supplied by the catalog
// lookup.
func (s *State) VerifyParticipants(observed []Participant, label func(int) string) ([]Event, error) {
	if s.phase != PhaseInGame {
		return nil, ErrWrongPhase
	}

	byAccount := make(map[string]int, len(observed))
	for _, part := range observed {
		byAccount[part.AccountID] = part.CharacterKey
	}

	bound := 0
	s.eachPlayer(func(p *Player) { bound++ })
	if len(byAccount) != bound {
		return nil, ErrParticipantMismatch
	}
	var mismatch bool
	s.eachPlayer(func(p *Player) {
		if _, ok := byAccount[p.AccountID]; !ok {
			mismatch = true
		}
	})
	if mismatch {
		return nil, ErrParticipantMismatch
	}

	var events []Event
	s.eachPlayer(func(p *Player) {
		p.ResolvedLabel = label(byAccount[p.AccountID])
		events = append(events, Event{Type: EvtIdentityResolved, Player: p.ID, Label: p.ResolvedLabel})
	})
	return events, nil
}
