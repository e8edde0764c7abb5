package model

// InputKind is the closed set of demographic input widgets.
type InputKind string

const (
	InputSingleChoice  InputKind = "single_choice"
	InputFreeText      InputKind = "free_text"
	InputNumericChoice InputKind = "numeric_choice"
)

func (k InputKind) Valid() bool {
	switch k {
	case InputSingleChoice, InputFreeText, InputNumericChoice:
		return true
	}
	return false
}

// FieldOption is one selectable value with its localized label.
type FieldOption struct {
	Value string        `yaml:"value" json:"value"`
	Label LocalizedText `yaml:"label" json:"label"`
}

// DemographicField is one demographic question. Immutable, shared
// read-only across sessions.
type DemographicField struct {
	ID       string        `yaml:"id" json:"id"`
	Prompt   LocalizedText `yaml:"prompt" json:"prompt"`
	Kind     InputKind     `yaml:"kind" json:"kind"`
	Options  []FieldOption `yaml:"options" json:"options,omitempty"`
	Required bool          `yaml:"required" json:"required"`
}

// HasOption reports whether value is in the declared option set.
func (f *DemographicField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
