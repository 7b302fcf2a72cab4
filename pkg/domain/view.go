package domain

// View is the derived presentation of a session, recomputed on every render.
type View struct {
	SessionID    string          `json:"session_id"`
	Status       ExecutionStatus `json:"status"`
	Phase        Phase           `json:"phase"`
	Position     Position        `json:"position"`
	Progress     float64         `json:"progress"`
	Title        string          `json:"title"`
	TitleVisible bool            `json:"title_visible"`
	CanAdvance   bool            `json:"can_advance"`
	Completed    bool            `json:"completed"`
	StepKind     string          `json:"step_kind,omitempty"`
	IntroStep    IntroStep       `json:"intro_step,omitempty"`
	ContentStep  ContentStep     `json:"content_step,omitempty"`
	Result       *RecipeResult   `json:"result,omitempty"`
}
