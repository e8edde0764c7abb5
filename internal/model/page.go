package model

// PageKind is the closed set of page types the flow controller knows
// how to drive. Dispatch on it is exhaustive; there is no free-form
// "custom" kind.
type PageKind string

const (
	PageConsent      PageKind = "consent"
	PageInstructions PageKind = "instructions"
	PageDemographics PageKind = "demographics"
	PageItems        PageKind = "items"
	PageResults      PageKind = "results"
)

func (k PageKind) Valid() bool {
	switch k {
	case PageConsent, PageInstructions, PageDemographics, PageItems, PageResults:
		return true
	}
	return false
}

// ShowCondition gates a page on a previously collected demographic
// answer. A page with a nil condition is always shown.
type ShowCondition struct {
	FieldID string `yaml:"field" json:"field"`
	Equals  string `yaml:"equals" json:"equals"`
}

// Matches evaluates the condition against the session's accumulated
// demographic answers. An unanswered field never matches.
func (c *ShowCondition) Matches(demographics map[string]string) bool {
	if c == nil {
		return true
	}
	v, ok := demographics[c.FieldID]
	return ok && v == c.Equals
}

// PageDescriptor is one step of the survey. Descriptors are immutable
// and shared read-only across all sessions; they reference items and
// fields by id only.
type PageDescriptor struct {
	ID        string         `yaml:"id" json:"id"`
	Kind      PageKind       `yaml:"kind" json:"kind"`
	Title     LocalizedText  `yaml:"title" json:"title"`
	Body      LocalizedText  `yaml:"body" json:"body"`
	ItemIDs   []string       `yaml:"items" json:"items,omitempty"`
	FieldIDs  []string       `yaml:"fields" json:"fields,omitempty"`
	Condition *ShowCondition `yaml:"condition" json:"condition,omitempty"`
}

// PagePlan is the ordered page sequence of the study.
type PagePlan struct {
	Pages []PageDescriptor
}

func (p *PagePlan) First() *PageDescriptor {
	if len(p.Pages) == 0 {
		return nil
	}
	return &p.Pages[0]
}

func (p *PagePlan) Page(id string) *PageDescriptor {
	for i := range p.Pages {
		if p.Pages[i].ID == id {
			return &p.Pages[i]
		}
	}
	return nil
}

func (p *PagePlan) IndexOf(id string) int {
	for i := range p.Pages {
		if p.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Results returns the terminal results page, nil if the plan has none.
func (p *PagePlan) Results() *PageDescriptor {
	for i := range p.Pages {
		if p.Pages[i].Kind == PageResults {
			return &p.Pages[i]
		}
	}
	return nil
}
