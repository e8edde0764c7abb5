package model

import "time"

// SessionStatus is the flow state of one participant.
type SessionStatus string

const (
	StatusNotStarted      SessionStatus = "not_started"
	StatusAwaitingConsent SessionStatus = "awaiting_consent"
	StatusInProgress      SessionStatus = "in_progress"
	StatusCompleted       SessionStatus = "completed"
)

// ScoreRecord maps sub-scale key to the mean score. Computed exactly
// once when a session completes, immutable afterwards.
type ScoreRecord map[string]float64

// SurveySession is one participant's isolated progress record. It is
// owned exclusively by that participant's request context; no field is
// ever written by code not holding the session's handle, and no
// per-participant value (locale included) lives in any process-wide
// variable.
type SurveySession struct {
	ID           string            `json:"id"`
	Locale       Locale            `json:"locale"`
	CurrentPage  string            `json:"currentPage"`
	VisitedPages []string          `json:"visitedPages"`
	Responses    map[string]int    `json:"responses"`
	Demographics map[string]string `json:"demographics"`
	Scores       ScoreRecord       `json:"scores,omitempty"`
	ConsentGiven bool              `json:"consentGiven"`
	Completed    bool              `json:"completed"`
	StartedAt    time.Time         `json:"startedAt"`
	LastActivity time.Time         `json:"lastActivity"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

func NewSurveySession(id string, locale Locale, now time.Time) *SurveySession {
	return &SurveySession{
		ID:           id,
		Locale:       locale,
		Responses:    make(map[string]int),
		Demographics: make(map[string]string),
		StartedAt:    now,
		LastActivity: now,
	}
}

// Status derives the flow state; AwaitingConsent is the in-progress
// sub-state at the consent page with consent still unset.
func (s *SurveySession) Status(plan *PagePlan) SessionStatus {
	switch {
	case s.Completed:
		return StatusCompleted
	case s.CurrentPage == "":
		return StatusNotStarted
	}
	if p := plan.Page(s.CurrentPage); p != nil && p.Kind == PageConsent && !s.ConsentGiven {
		return StatusAwaitingConsent
	}
	return StatusInProgress
}

// Visited reports whether the page id is already on the visited list.
// The list grows monotonically and never shrinks.
func (s *SurveySession) Visited(pageID string) bool {
	for _, id := range s.VisitedPages {
		if id == pageID {
			return true
		}
	}
	return false
}

// MarkVisited appends the page id once; repeated calls are no-ops.
func (s *SurveySession) MarkVisited(pageID string) {
	if !s.Visited(pageID) {
		s.VisitedPages = append(s.VisitedPages, pageID)
	}
}
