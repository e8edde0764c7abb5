package service

import (
	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/model"
)

// PageView is the fully localized display form of one page for one
// session. It is a value snapshot: nothing in it aliases catalog or
// session storage.
type PageView struct {
	PageID     string              `json:"pageId"`
	Kind       model.PageKind      `json:"kind"`
	Title      string              `json:"title"`
	Body       string              `json:"body,omitempty"`
	Locale     model.Locale        `json:"locale"`
	PageNumber int                 `json:"pageNumber"`
	PageCount  int                 `json:"pageCount"`
	Items      []ItemView          `json:"items,omitempty"`
	Fields     []FieldView         `json:"fields,omitempty"`
	Results    []SubScaleResult    `json:"results,omitempty"`
	Answers    map[string]int      `json:"answers,omitempty"`
	Values     map[string]string   `json:"values,omitempty"`
}

type ItemView struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Categories int    `json:"categories"`
}

type FieldView struct {
	ID       string          `json:"id"`
	Prompt   string          `json:"prompt"`
	Kind     model.InputKind `json:"kind"`
	Required bool            `json:"required"`
	Options  []OptionView    `json:"options,omitempty"`
}

type OptionView struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SubScaleResult is one score with its localized label and threshold
// band for the results feedback.
type SubScaleResult struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Band  string  `json:"band"`
}

const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// RenderService is the locale presenter. Render is a pure function of
// (session locale, page descriptor, catalogs): it has no side effects,
// writes nothing shared, and is safe to call concurrently for
// different sessions.
type RenderService struct{}

func NewRenderService() *RenderService {
	return &RenderService{}
}

func (r *RenderService) Render(sess *model.SurveySession, page *model.PageDescriptor, cat *catalog.Catalog) *PageView {
	locale := sess.Locale
	view := &PageView{
		PageID:     page.ID,
		Kind:       page.Kind,
		Title:      page.Title.In(locale),
		Body:       page.Body.In(locale),
		Locale:     locale,
		PageNumber: cat.Plan.IndexOf(page.ID) + 1,
		PageCount:  len(cat.Plan.Pages),
	}

	switch page.Kind {
	case model.PageItems:
		view.Items = r.renderItems(page, cat, locale)
		view.Answers = answeredSubset(sess.Responses, page.ItemIDs)
	case model.PageConsent, model.PageDemographics:
		view.Fields = r.renderFields(page, cat, locale)
		view.Values = valueSubset(sess.Demographics, page.FieldIDs)
	case model.PageResults:
		view.Results = r.renderResults(sess, cat, locale)
	case model.PageInstructions:
		// title and body only
	}
	return view
}

func (r *RenderService) renderItems(page *model.PageDescriptor, cat *catalog.Catalog, locale model.Locale) []ItemView {
	views := make([]ItemView, 0, len(page.ItemIDs))
	for _, id := range page.ItemIDs {
		item, ok := cat.Items.Item(id)
		if !ok {
			continue
		}
		views = append(views, ItemView{
			ID:         item.ID,
			Prompt:     item.Prompt.In(locale),
			Categories: item.Categories,
		})
	}
	return views
}

func (r *RenderService) renderFields(page *model.PageDescriptor, cat *catalog.Catalog, locale model.Locale) []FieldView {
	views := make([]FieldView, 0, len(page.FieldIDs))
	for _, id := range page.FieldIDs {
		field, ok := cat.Field(id)
		if !ok {
			continue
		}
		fv := FieldView{
			ID:       field.ID,
			Prompt:   field.Prompt.In(locale),
			Kind:     field.Kind,
			Required: field.Required,
		}
		for _, o := range field.Options {
			fv.Options = append(fv.Options, OptionView{Value: o.Value, Label: o.Label.In(locale)})
		}
		views = append(views, fv)
	}
	return views
}

func (r *RenderService) renderResults(sess *model.SurveySession, cat *catalog.Catalog, locale model.Locale) []SubScaleResult {
	results := make([]SubScaleResult, 0, len(sess.Scores))
	for _, key := range cat.Items.SubScaleKeys() {
		score, ok := sess.Scores[key]
		if !ok {
			continue
		}
		scale, _ := cat.Items.SubScale(key)
		results = append(results, SubScaleResult{
			Key:   key,
			Label: scale.Label.In(locale),
			Score: score,
			Band:  band(score, scale),
		})
	}
	return results
}

func band(score float64, scale model.SubScale) string {
	low, high := scale.LowCut, scale.HighCut
	if low == 0 && high == 0 {
		// default cuts for 5-category scales
		low, high = 2.5, 3.5
	}
	switch {
	case score < low:
		return BandLow
	case score < high:
		return BandMedium
	default:
		return BandHigh
	}
}

func answeredSubset(responses map[string]int, ids []string) map[string]int {
	out := make(map[string]int)
	for _, id := range ids {
		if v, ok := responses[id]; ok {
			out[id] = v
		}
	}
	return out
}

func valueSubset(values map[string]string, ids []string) map[string]string {
	out := make(map[string]string)
	for _, id := range ids {
		if v, ok := values[id]; ok {
			out[id] = v
		}
	}
	return out
}
