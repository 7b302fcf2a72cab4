package domain

// Phase names the half of the wizard a position is in.
type Phase string

const (
	PhaseIntro   Phase = "intro"
	PhaseContent Phase = "content"
)

// Position is the navigation cursor of a session.
// Exactly one index is authoritative at a time, selected by Started.
type Position struct {
	IntroIndex   int  `json:"intro_index"`
	ContentIndex int  `json:"content_index"`
	Started      bool `json:"started"`
}

// Phase returns the phase selected by Started.
func (p Position) Phase() Phase {
	if p.Started {
		return PhaseContent
	}
	return PhaseIntro
}
