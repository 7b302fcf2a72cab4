package domain

// Answers maps a content step identifier to the selected option value.
type Answers map[int]string

// CustomAnswers maps a content step identifier to a free-text override.
type CustomAnswers map[int]string

// Controls maps a controls step identifier to its tuned values.
type Controls map[int]ControlValue

// ControlValue holds the recipe parameters chosen on a controls step.
type ControlValue struct {
	Temperature int      `json:"temperature"`
	Shape       string   `json:"shape,omitempty"`
	Flavor      string   `json:"flavor,omitempty"`
	Enhancer    string   `json:"enhancer,omitempty"`
	Dietary     []string `json:"dietary,omitempty"`
}

// Clone returns a copy that shares no backing storage with v.
func (v ControlValue) Clone() ControlValue {
	out := v
	if v.Dietary != nil {
		out.Dietary = append([]string(nil), v.Dietary...)
	}
	return out
}
