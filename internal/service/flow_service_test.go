package service

import (
	"testing"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterIdempotent(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")

	first, err := flow.Enter(sess)
	require.NoError(t, err)
	second, err := flow.Enter(sess)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"consent"}, sess.VisitedPages)
}

func TestConsentGateBlocksAdvancement(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	_, err := flow.Enter(sess)
	require.NoError(t, err)

	// Nothing checked at all.
	_, err = flow.Submit(sess, "consent", nil, map[string]string{})
	assert.Error(t, err)
	assert.Equal(t, "consent", sess.CurrentPage)

	// Explicitly declined.
	_, err = flow.Submit(sess, "consent", nil, map[string]string{"consent_participation": "no"})
	assert.ErrorIs(t, err, util.ErrConsentRequired)
	assert.Equal(t, "consent", sess.CurrentPage)
	assert.False(t, sess.ConsentGiven)

	// Answers on later pages do not help either.
	_, err = flow.Submit(sess, "demo", nil, map[string]string{"program": "bachelor"})
	assert.ErrorIs(t, err, util.ErrStaleSubmission)
}

func TestBachelorSkipsConditionalPage(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	require.NoError(t, driveToItems(flow, sess, "bachelor"))

	assert.Equal(t, "items", sess.CurrentPage)
	assert.Equal(t, []string{"consent", "demo", "items"}, sess.VisitedPages)
	assert.False(t, sess.Visited("extra"))

	view, err := flow.Submit(sess, "items", map[string]int{"A": 5, "B": 1, "C": 3, "D": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PageResults, view.Kind)
	assert.True(t, sess.Completed)
	assert.Equal(t, []string{"consent", "demo", "items", "results"}, sess.VisitedPages)
}

func TestMasterVisitsConditionalPage(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	require.NoError(t, driveToItems(flow, sess, "master"))

	assert.Equal(t, "items", sess.CurrentPage)
	assert.Equal(t, []string{"consent", "demo", "extra", "items"}, sess.VisitedPages)
	assert.Equal(t, "research", sess.Demographics["master_focus"])
}

func TestStaleSubmissionRejected(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	require.NoError(t, driveToItems(flow, sess, "bachelor"))

	// Resubmitting an already-passed page.
	_, err := flow.Submit(sess, "demo", nil, map[string]string{"program": "master"})
	assert.ErrorIs(t, err, util.ErrStaleSubmission)
	// The earlier answer is untouched.
	assert.Equal(t, "bachelor", sess.Demographics["program"])
}

func TestValidationFailuresKeepAnswers(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	require.NoError(t, driveToItems(flow, sess, "bachelor"))

	// One answer out of range, one missing.
	_, err := flow.Submit(sess, "items", map[string]int{"A": 9, "B": 1, "C": 3}, nil)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "A")
	assert.Contains(t, verr.Fields, "D")
	assert.NotContains(t, verr.Fields, "B")

	// Nothing merged, page unchanged.
	assert.Empty(t, sess.Responses)
	assert.Equal(t, "items", sess.CurrentPage)
}

func TestCompletionScoresExactlyOnceAndFreezes(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	require.NoError(t, driveToItems(flow, sess, "bachelor"))

	_, err := flow.Submit(sess, "items", map[string]int{"A": 5, "B": 1, "C": 3, "D": 2}, nil)
	require.NoError(t, err)
	require.NotNil(t, sess.Scores)
	assert.InDelta(t, 4.25, sess.Scores["X"], 1e-9)
	assert.Equal(t, model.StatusCompleted, sess.Status(flow.Catalog().Plan))

	// Any further submission is rejected.
	_, err = flow.Submit(sess, "items", map[string]int{"A": 1, "B": 1, "C": 1, "D": 1}, nil)
	assert.ErrorIs(t, err, util.ErrSessionComplete)
	assert.InDelta(t, 4.25, sess.Scores["X"], 1e-9)

	// Locale toggling is still allowed on the results view.
	require.NoError(t, flow.SetLocale(sess, model.LocaleEN))
	view, err := flow.Results(sess)
	require.NoError(t, err)
	assert.Equal(t, model.LocaleEN, view.Locale)
}

func TestResultsNotReady(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")
	_, err := flow.Enter(sess)
	require.NoError(t, err)

	_, err = flow.Results(sess)
	assert.ErrorIs(t, err, ErrResultsNotReady)
}

func TestSetLocaleValidation(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("s1")

	assert.ErrorIs(t, flow.SetLocale(sess, "fr"), util.ErrUnsupportedLocale)
	assert.Equal(t, model.LocaleDE, sess.Locale)

	require.NoError(t, flow.SetLocale(sess, model.LocaleEN))
	assert.Equal(t, model.LocaleEN, sess.Locale)
}

func TestSessionStatusProgression(t *testing.T) {
	flow := newTestFlow()
	plan := flow.Catalog().Plan
	sess := newTestSession("s1")

	assert.Equal(t, model.StatusNotStarted, sess.Status(plan))

	_, err := flow.Enter(sess)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwaitingConsent, sess.Status(plan))

	_, err = flow.Submit(sess, "consent", nil, map[string]string{"consent_participation": "yes"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, sess.Status(plan))
}
