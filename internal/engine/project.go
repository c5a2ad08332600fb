package engine

import "github.com/ytakhs/lol-jinro-bot/pkg/types"

// Project renders the session as a snapshot. blind omits secret-role
// information entirely; callers are responsible for restricting the non-blind
// view to the host. mentionStyle is carried through for renderers and has no
// effect on the data. Project never mutates the session.
func (s *State) Project(venue string, blind, mentionStyle bool) types.Snapshot {
	snap := types.Snapshot{
		Venue:        venue,
		Phase:        string(s.phase),
		Blind:        blind,
		MentionStyle: mentionStyle,
		Blue:         s.projectTeam(TeamBlue, blind),
		Red:          s.projectTeam(TeamRed, blind),
	}
	if s.host != "" {
		snap.Host = &types.Member{ID: string(s.host), Label: s.hostLabel}
	}
	return snap
}

func (s *State) projectTeam(team Team, blind bool) []types.Member {
	players := s.teamPlayers(team)
	out := make([]types.Member, len(players))
	for i, p := range players {
		out[i] = types.Member{
			Position: i + 1,
			ID:       string(p.ID),
			Label:    p.DisplayLabel(),
			Votes:    p.VotesReceived,
			HasVoted: p.HasVoted,
			Votable:  p.Votable,
			Bound:    p.AccountID != "",
		}
		if !blind {
			out[i].Imposter = p.SecretRole
		}
	}
	return out
}
