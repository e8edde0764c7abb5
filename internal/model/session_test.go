package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func statusPlan() *PagePlan {
	return &PagePlan{Pages: []PageDescriptor{
		{ID: "consent", Kind: PageConsent},
		{ID: "items", Kind: PageItems, ItemIDs: []string{"A"}},
		{ID: "results", Kind: PageResults},
	}}
}

func TestSessionStatusDerivation(t *testing.T) {
	plan := statusPlan()
	sess := NewSurveySession("s1", LocaleDE, time.Now())

	assert.Equal(t, StatusNotStarted, sess.Status(plan))

	sess.CurrentPage = "consent"
	assert.Equal(t, StatusAwaitingConsent, sess.Status(plan))

	sess.ConsentGiven = true
	assert.Equal(t, StatusInProgress, sess.Status(plan))

	sess.CurrentPage = "items"
	assert.Equal(t, StatusInProgress, sess.Status(plan))

	sess.Completed = true
	assert.Equal(t, StatusCompleted, sess.Status(plan))
}

func TestMarkVisitedIdempotent(t *testing.T) {
	sess := NewSurveySession("s1", LocaleDE, time.Now())

	sess.MarkVisited("consent")
	sess.MarkVisited("items")
	sess.MarkVisited("consent")

	assert.Equal(t, []string{"consent", "items"}, sess.VisitedPages)
	assert.True(t, sess.Visited("items"))
	assert.False(t, sess.Visited("results"))
}

func TestLocalizedTextSelection(t *testing.T) {
	text := LocalizedText{DE: "Hallo", EN: "Hello"}
	assert.Equal(t, "Hallo", text.In(LocaleDE))
	assert.Equal(t, "Hello", text.In(LocaleEN))
}

func TestLocaleValid(t *testing.T) {
	assert.True(t, LocaleDE.Valid())
	assert.True(t, LocaleEN.Valid())
	assert.False(t, Locale("fr").Valid())
	assert.False(t, Locale("").Valid())
}

func TestShowConditionMatches(t *testing.T) {
	cond := &ShowCondition{FieldID: "program", Equals: "master"}

	assert.True(t, cond.Matches(map[string]string{"program": "master"}))
	assert.False(t, cond.Matches(map[string]string{"program": "bachelor"}))
	assert.False(t, cond.Matches(map[string]string{}))
	assert.False(t, cond.Matches(nil))

	// A page without a condition is always shown.
	var none *ShowCondition
	assert.True(t, none.Matches(nil))
}
