package types

// Snapshot is a read-only projection of one venue's session, safe to hand to
// renderers and spectator clients. Blind snapshots carry no imposter
// information at all.
type Snapshot struct {
	Venue        string   `json:"venue"`
	Phase        string   `json:"phase"`
	Version      int      `json:"version,omitempty"`
	Blind        bool     `json:"blind"`
	MentionStyle bool     `json:"-"`
	Host         *Member  `json:"host,omitempty"`
	Blue         []Member `json:"blue"`
	Red          []Member `json:"red"`
}

type Member struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Votes    int    `json:"votes"`
	HasVoted bool   `json:"has_voted"`
	Votable  bool   `json:"votable"`
	Bound    bool   `json:"bound"`
	Imposter bool   `json:"imposter,omitempty"` // only populated when not blind
}
