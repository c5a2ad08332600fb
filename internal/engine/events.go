package engine

// The engine never talks to collaborators directly. Operations that need a
// side effect from the messaging layer emit events; the session actor maps
// them onto the Messenger.
type EventType string

const (
	// EvtBindingRequested asks the messaging layer to collect the player's
	// match-directory account name.
	EvtBindingRequested EventType = "BindingRequested"
	// EvtRoleDealt tells one player their secret role, privately.
	EvtRoleDealt EventType = "RoleDealt"
	// EvtRevoteRequired reopens voting for one team with a narrowed (or
	// fully reset) candidate list.
	EvtRevoteRequired EventType = "RevoteRequired"
	// EvtIdentityResolved asks for the player's displayed identity to be
	// overwritten with their in-match character label.
	EvtIdentityResolved EventType = "IdentityResolved"
	// EvtIdentityReverted asks for the player's displayed identity to be
	// restored to their original label.
	EvtIdentityReverted EventType = "IdentityReverted"
	// EvtVotesFinalized marks a completed aggregation; the session phase has
	// advanced to end.
	EvtVotesFinalized EventType = "VotesFinalized"
)

type Event struct {
	Type       EventType
	Player     PlayerID
	Team       Team
	Imposter   bool
	Label      string
	Candidates []int // 1-based positions still votable, for EvtRevoteRequired
	Voters     []PlayerID
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
