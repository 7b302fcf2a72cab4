package domain

import "time"

// ExecutionStatus describes where a session is in its lifecycle.
type ExecutionStatus string

const (
	StatusActive     ExecutionStatus = "active"     // Walking the steps
	StatusGenerating ExecutionStatus = "generating" // Waiting for the generator
	StatusCompleted  ExecutionStatus = "completed"  // Result available
)

// State is the persisted snapshot of one wizard session.
type State struct {
	SessionID string          `json:"session_id"`
	Status    ExecutionStatus `json:"status"`

	// Position is the navigation cursor.
	Position Position `json:"position"`

	Answers       Answers       `json:"answers,omitempty"`
	CustomAnswers CustomAnswers `json:"custom_answers,omitempty"`
	Controls      Controls      `json:"controls,omitempty"`

	// Contact is the address used by the email channel.
	Contact string `json:"contact,omitempty"`

	// Result is set once the generator succeeded.
	Result *RecipeResult `json:"result,omitempty"`

	// Generating is true while a generator call is in flight.
	Generating bool `json:"generating,omitempty"`
	// GenerationID identifies the latest generator call. Only that call may
	// store its outcome.
	GenerationID string `json:"generation_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Envelope holds the sealed form of the state when the store is wrapped
	// by the encryption middleware. Every other field is empty in that case.
	Envelope string `json:"envelope,omitempty"`
}

// NewState creates a session at the first intro card.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID:     sessionID,
		Status:        StatusActive,
		Answers:       make(Answers),
		CustomAnswers: make(CustomAnswers),
		Controls:      make(Controls),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasResult reports whether the generator already produced a recipe.
func (s *State) HasResult() bool {
	return s.Result != nil
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = make(Answers, len(s.Answers))
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	next.CustomAnswers = make(CustomAnswers, len(s.CustomAnswers))
	for k, v := range s.CustomAnswers {
		next.CustomAnswers[k] = v
	}
	next.Controls = make(Controls, len(s.Controls))
	for k, v := range s.Controls {
		next.Controls[k] = v.Clone()
	}
	if s.Result != nil {
		r := *s.Result
		r.Ingredients = append([]string(nil), s.Result.Ingredients...)
		next.Result = &r
	}
	return &next
}

// EnsureMaps restores the answer maps dropped by omitempty during serialization.
func (s *State) EnsureMaps() {
	if s.Answers == nil {
		s.Answers = make(Answers)
	}
	if s.CustomAnswers == nil {
		s.CustomAnswers = make(CustomAnswers)
	}
	if s.Controls == nil {
		s.Controls = make(Controls)
	}
}
