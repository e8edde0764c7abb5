package model

// Locale is one of the two display languages of the study.
type Locale string

const (
	LocaleDE Locale = "de"
	LocaleEN Locale = "en"
)

// SupportedLocales is the fixed set for this study. No other locale is
// accepted at runtime.
var SupportedLocales = []Locale{LocaleDE, LocaleEN}

func (l Locale) Valid() bool {
	for _, s := range SupportedLocales {
		if l == s {
			return true
		}
	}
	return false
}

// LocalizedText carries both language variants of a displayable string.
// Selection happens at render time; rendered text is never rewritten
// afterwards.
type LocalizedText struct {
	DE string `yaml:"de" json:"de"`
	EN string `yaml:"en" json:"en"`
}

func (t LocalizedText) In(locale Locale) string {
	if locale == LocaleEN {
		return t.EN
	}
	return t.DE
}
