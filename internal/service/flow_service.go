package service

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"
)

// ErrResultsNotReady guards the results view of a session that has not
// reached the terminal page yet.
var ErrResultsNotReady = errors.New("results not available yet")

// affirmative values a consent checkbox may carry.
var consentAffirmative = map[string]bool{"yes": true, "true": true, "1": true}

// FlowService walks one session at a time through the page plan. It
// reads only the session passed in and the immutable catalog snapshot;
// it holds no per-participant state of its own, so concurrent calls for
// different sessions never interact.
type FlowService struct {
	cat     atomic.Pointer[catalog.Catalog]
	scoring *ScoringService
	render  *RenderService
	now     func() time.Time
}

func NewFlowService(cat *catalog.Catalog, scoring *ScoringService, render *RenderService) *FlowService {
	s := &FlowService{
		scoring: scoring,
		render:  render,
		now:     time.Now,
	}
	s.cat.Store(cat)
	return s
}

// Catalog returns the current immutable catalog snapshot.
func (s *FlowService) Catalog() *catalog.Catalog {
	return s.cat.Load()
}

// SwapCatalog atomically replaces the catalog snapshot. Sessions pick
// up the new snapshot on their next operation; a snapshot in use is
// never mutated.
func (s *FlowService) SwapCatalog(cat *catalog.Catalog) {
	s.cat.Store(cat)
}

// Enter resolves the session's current page, initializing it to the
// plan's first page on first contact. Repeat calls return the same page
// and do not duplicate visited entries.
func (s *FlowService) Enter(sess *model.SurveySession) (*PageView, error) {
	cat := s.Catalog()

	if sess.CurrentPage == "" {
		first := cat.Plan.First()
		if first == nil {
			return nil, fmt.Errorf("%w: empty page plan", util.ErrDanglingReference)
		}
		sess.CurrentPage = first.ID
	}

	page := cat.Plan.Page(sess.CurrentPage)
	if page == nil {
		return nil, fmt.Errorf("%w: session points at unknown page %q", util.ErrDanglingReference, sess.CurrentPage)
	}

	// The consent gate also guards direct entry: a session must never
	// sit past the consent page without consent.
	if !sess.ConsentGiven && s.pastConsent(cat, page) {
		return nil, util.ErrConsentRequired
	}

	sess.MarkVisited(page.ID)
	sess.LastActivity = s.now()
	return s.render.Render(sess, page, cat), nil
}

// Submit validates the answers for the session's current page, merges
// them, and advances to the next eligible page. Pages whose condition
// evaluates false are skipped and never marked visited. Entering the
// results page completes the session and computes its scores exactly
// once.
func (s *FlowService) Submit(sess *model.SurveySession, pageID string, answers map[string]int, values map[string]string) (*PageView, error) {
	cat := s.Catalog()

	if sess.Completed {
		return nil, util.ErrSessionComplete
	}
	if pageID == "" || pageID != sess.CurrentPage {
		return nil, util.ErrStaleSubmission
	}

	page := cat.Plan.Page(pageID)
	if page == nil {
		return nil, fmt.Errorf("%w: unknown page %q", util.ErrDanglingReference, pageID)
	}

	switch page.Kind {
	case model.PageResults:
		return nil, util.ErrSessionComplete
	case model.PageConsent:
		if err := s.validateFields(cat, page, values); err != nil {
			return nil, err
		}
		if !s.consentGiven(page, values) {
			return nil, util.ErrConsentRequired
		}
	case model.PageDemographics:
		if err := s.validateFields(cat, page, values); err != nil {
			return nil, err
		}
	case model.PageItems:
		if err := s.validateItems(cat, page, answers); err != nil {
			return nil, err
		}
	case model.PageInstructions:
		// nothing to validate
	}

	// Merge only now: a failed validation must not lose or corrupt
	// previously recorded answers.
	for _, id := range page.ItemIDs {
		if v, ok := answers[id]; ok {
			sess.Responses[id] = v
		}
	}
	for _, id := range page.FieldIDs {
		if v, ok := values[id]; ok {
			sess.Demographics[id] = v
		}
	}
	if page.Kind == model.PageConsent {
		sess.ConsentGiven = true
	}
	sess.LastActivity = s.now()

	next, err := s.advance(cat, sess, page)
	if err != nil {
		return nil, err
	}
	return s.render.Render(sess, next, cat), nil
}

// advance walks the plan in order starting just after the current page
// and selects the first page whose condition holds against the
// session's accumulated answers.
func (s *FlowService) advance(cat *catalog.Catalog, sess *model.SurveySession, current *model.PageDescriptor) (*model.PageDescriptor, error) {
	idx := cat.Plan.IndexOf(current.ID)
	for i := idx + 1; i < len(cat.Plan.Pages); i++ {
		candidate := &cat.Plan.Pages[i]
		if !candidate.Condition.Matches(sess.Demographics) {
			continue
		}

		sess.CurrentPage = candidate.ID
		sess.MarkVisited(candidate.ID)

		if candidate.Kind == model.PageResults {
			if err := s.complete(sess, cat); err != nil {
				return nil, err
			}
		}
		return candidate, nil
	}

	// Plans are validated to end in a results page, so running off the
	// end means the plan and the session disagree.
	return nil, fmt.Errorf("%w: no page after %q", util.ErrDanglingReference, current.ID)
}

// complete scores the session exactly once and freezes it. A scoring
// failure here is a controller invariant violation, not a user error:
// the flow must not reach the results page with required items missing.
func (s *FlowService) complete(sess *model.SurveySession, cat *catalog.Catalog) error {
	if sess.Scores != nil {
		return nil
	}
	scores, err := s.scoring.Score(sess.Responses, cat.Items)
	if err != nil {
		return fmt.Errorf("completing session %s: %w", sess.ID, err)
	}
	sess.Scores = scores
	sess.Completed = true
	completedAt := s.now()
	sess.CompletedAt = &completedAt
	return nil
}

// SetLocale switches the session's display language. This is the only
// mutation allowed after completion, and it touches nothing outside the
// session itself.
func (s *FlowService) SetLocale(sess *model.SurveySession, locale model.Locale) error {
	if !locale.Valid() {
		return fmt.Errorf("%w: %q", util.ErrUnsupportedLocale, locale)
	}
	sess.Locale = locale
	sess.LastActivity = s.now()
	return nil
}

// Results renders the terminal page of a completed session.
func (s *FlowService) Results(sess *model.SurveySession) (*PageView, error) {
	cat := s.Catalog()
	if !sess.Completed {
		return nil, ErrResultsNotReady
	}
	page := cat.Plan.Results()
	if page == nil {
		return nil, fmt.Errorf("%w: page plan has no results page", util.ErrDanglingReference)
	}
	return s.render.Render(sess, page, cat), nil
}

func (s *FlowService) validateItems(cat *catalog.Catalog, page *model.PageDescriptor, answers map[string]int) error {
	verr := util.NewValidationError()
	for _, id := range page.ItemIDs {
		item, ok := cat.Items.Item(id)
		if !ok {
			continue
		}
		raw, present := answers[id]
		if !present {
			verr.Add(id, "response required")
			continue
		}
		if raw < 1 || raw > item.Categories {
			verr.Add(id, fmt.Sprintf("response must be between 1 and %d", item.Categories))
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s *FlowService) validateFields(cat *catalog.Catalog, page *model.PageDescriptor, values map[string]string) error {
	verr := util.NewValidationError()
	for _, id := range page.FieldIDs {
		field, ok := cat.Field(id)
		if !ok {
			continue
		}
		value, present := values[id]
		if !present || value == "" {
			if field.Required {
				verr.Add(id, "value required")
			}
			continue
		}
		switch field.Kind {
		case model.InputSingleChoice, model.InputNumericChoice:
			if !field.HasOption(value) {
				verr.Add(id, fmt.Sprintf("value %q is not a valid option", value))
			}
		case model.InputFreeText:
			// any non-empty text is accepted
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// consentGiven reports whether at least one of the page's fields is
// affirmatively set.
func (s *FlowService) consentGiven(page *model.PageDescriptor, values map[string]string) bool {
	for _, id := range page.FieldIDs {
		if consentAffirmative[values[id]] {
			return true
		}
	}
	return false
}

// pastConsent reports whether the page sits after an unpassed consent
// page in plan order.
func (s *FlowService) pastConsent(cat *catalog.Catalog, page *model.PageDescriptor) bool {
	idx := cat.Plan.IndexOf(page.ID)
	for i := 0; i < idx; i++ {
		if cat.Plan.Pages[i].Kind == model.PageConsent {
			return true
		}
	}
	return false
}
