// Package text is the user-facing string table. Nothing in here carries game
// logic; the session and the chat surface both render through it.
package text

import (
	"fmt"
	"strings"

	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

const (
	GameStarting     = "*** The game is starting! ***"
	RolesDealt       = "*** Roles have been dealt! Check your DMs ***"
	DMHint           = "If a DM did not arrive, make sure you accept direct messages and ask the host to /reset and start over."
	BanPickOpen      = "*** Ban/pick discussion time starts now ***"
	OneMinuteLeft    = "*** One minute remaining ***"
	MatchStart       = "*** Discussion time is over. Start the match. GLHF!! ***"
	MatchDone        = "*** Good game, everyone! ***"
	ThinkingOpen     = "*** Thinking/discussion time starts now ***"
	VotingOpen       = "*** Thinking time is over. Cast your vote with /vote <position> ***"
	Results          = "*** Results! ***"
	ResetDone        = "Game has been reset."
	RoleImposter     = "You are the imposter."
	RoleVillager     = "You are a villager."
	BindingRequest   = "Reply here with your exact summoner name so I can link your account."
	BindingDone      = "Your account is linked."
	BindingNotFound  = "I could not find that summoner. Check the spelling and try again."
	BindingFailed    = "The summoner directory is unavailable right now. Try again in a bit."
	VoteAccepted     = "Your vote has been recorded."
	VerifyMismatch   = "The live match roster does not match the lobby. Identity relabeling is off for this game."
	VerifyExhausted  = "I never managed to observe the live match. Identity relabeling is off for this game."
	VerifyResolved   = "*** Match confirmed! Displayed names now follow the picked champions ***"
	UnknownCommand   = `Need a hand? "/help" lists every command.`
	NotInAnyGame     = "You do not seem to be in a running game."
)

func Joined(label string, team string) string {
	return fmt.Sprintf("%s joined the %s team.", label, team)
}

func HostJoined(label string) string {
	return fmt.Sprintf("%s is now the host. Some commands are host-only.", label)
}

func Left(label string) string {
	return fmt.Sprintf("%s left the game.", label)
}

func RevoteRequired(team string) string {
	return fmt.Sprintf("The %s team's vote is tied. A re-vote is required.", team)
}

func RevoteBallot(candidates []string) string {
	return "Vote again. Remaining candidates: " + strings.Join(candidates, ", ")
}

// Help is the command table shown by /help.
const Help = `/host : join the game as host
/join red|blue : join a team as a player
/quit : leave the game
/reset : wipe the game completely (host)

/start [minutes] : begin the game and the ban/pick timer (host)
/finish [minutes] : signal the match ended, start thinking time (host)
/vote <position> : vote for a teammate during voting
/aggregate : tally the votes (host)
/status : show the current game state
/help : show this message`

// Mention renders a player identity as a direct chat reference.
func Mention(id string) string { return "<@" + id + ">" }

// RenderSnapshot turns a status snapshot into chat text. Mention-style
// snapshots reference players directly; plain ones use labels.
func RenderSnapshot(snap types.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Host ===\n")
	if snap.Host != nil {
		fmt.Fprintf(&b, "%s\n", memberName(snap, *snap.Host))
	} else {
		fmt.Fprintf(&b, "none\n")
	}
	renderTeam(&b, snap, "Blue", snap.Blue)
	renderTeam(&b, snap, "Red", snap.Red)
	fmt.Fprintf(&b, "\nPhase: %s", snap.Phase)
	return b.String()
}

func renderTeam(b *strings.Builder, snap types.Snapshot, name string, members []types.Member) {
	fmt.Fprintf(b, "\n=== %s team ===\n", name)
	for _, m := range members {
		fmt.Fprintf(b, "%d. %s: %d vote(s)", m.Position, memberName(snap, m), m.Votes)
		if !m.Votable {
			fmt.Fprintf(b, " (out of the running)")
		}
		if !snap.Blind && m.Imposter {
			fmt.Fprintf(b, " [imposter]")
		}
		fmt.Fprintf(b, "\n")
	}
}

func memberName(snap types.Snapshot, m types.Member) string {
	if snap.MentionStyle {
		return Mention(m.ID)
	}
	return m.Label
}
