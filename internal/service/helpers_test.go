package service

import (
	"time"

	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/model"
)

// fourItemBank is the minimal scoring fixture: four 5-category items on
// one scale, two of them reverse-coded.
func fourItemBank() *model.ItemBank {
	items := []model.Item{
		{ID: "A", Prompt: model.LocalizedText{DE: "A de", EN: "A en"}, SubScale: "X", Categories: 5},
		{ID: "B", Prompt: model.LocalizedText{DE: "B de", EN: "B en"}, SubScale: "X", Reversed: true, Categories: 5},
		{ID: "C", Prompt: model.LocalizedText{DE: "C de", EN: "C en"}, SubScale: "X", Categories: 5},
		{ID: "D", Prompt: model.LocalizedText{DE: "D de", EN: "D en"}, SubScale: "X", Reversed: true, Categories: 5},
	}
	scales := []model.SubScale{
		{Key: "X", Label: model.LocalizedText{DE: "Skala X", EN: "Scale X"}},
	}
	return model.NewItemBank(items, scales)
}

// testCatalog builds the branching plan from the study design: consent,
// demographics, a Master-only page, one item block, results.
func testCatalog() *catalog.Catalog {
	bank := fourItemBank()

	fields := map[string]model.DemographicField{
		"consent_participation": {
			ID:       "consent_participation",
			Prompt:   model.LocalizedText{DE: "Einverständnis", EN: "Consent"},
			Kind:     model.InputSingleChoice,
			Required: true,
			Options: []model.FieldOption{
				{Value: "yes", Label: model.LocalizedText{DE: "Ja", EN: "Yes"}},
				{Value: "no", Label: model.LocalizedText{DE: "Nein", EN: "No"}},
			},
		},
		"program": {
			ID:       "program",
			Prompt:   model.LocalizedText{DE: "Studiengang", EN: "Degree program"},
			Kind:     model.InputSingleChoice,
			Required: true,
			Options: []model.FieldOption{
				{Value: "bachelor", Label: model.LocalizedText{DE: "Bachelor", EN: "Bachelor"}},
				{Value: "master", Label: model.LocalizedText{DE: "Master", EN: "Master"}},
			},
		},
		"master_focus": {
			ID:       "master_focus",
			Prompt:   model.LocalizedText{DE: "Schwerpunkt", EN: "Focus"},
			Kind:     model.InputSingleChoice,
			Required: true,
			Options: []model.FieldOption{
				{Value: "research", Label: model.LocalizedText{DE: "Forschung", EN: "Research"}},
				{Value: "applied", Label: model.LocalizedText{DE: "Praxis", EN: "Applied"}},
			},
		},
	}

	plan := &model.PagePlan{Pages: []model.PageDescriptor{
		{
			ID:       "consent",
			Kind:     model.PageConsent,
			Title:    model.LocalizedText{DE: "Einverständnis", EN: "Consent"},
			FieldIDs: []string{"consent_participation"},
		},
		{
			ID:       "demo",
			Kind:     model.PageDemographics,
			Title:    model.LocalizedText{DE: "Angaben zur Person", EN: "About you"},
			FieldIDs: []string{"program"},
		},
		{
			ID:        "extra",
			Kind:      model.PageDemographics,
			Title:     model.LocalizedText{DE: "Masterfragen", EN: "Master questions"},
			Condition: &model.ShowCondition{FieldID: "program", Equals: "master"},
			FieldIDs:  []string{"master_focus"},
		},
		{
			ID:      "items",
			Kind:    model.PageItems,
			Title:   model.LocalizedText{DE: "Fragen", EN: "Questions"},
			ItemIDs: []string{"A", "B", "C", "D"},
		},
		{
			ID:    "results",
			Kind:  model.PageResults,
			Title: model.LocalizedText{DE: "Ergebnisse", EN: "Results"},
		},
	}}

	return &catalog.Catalog{
		Items:      bank,
		Plan:       plan,
		Fields:     fields,
		FieldOrder: []string{"consent_participation", "program", "master_focus"},
	}
}

func newTestFlow() *FlowService {
	return NewFlowService(testCatalog(), NewScoringService(), NewRenderService())
}

func newTestSession(id string) *model.SurveySession {
	return model.NewSurveySession(id, model.LocaleDE, time.Now())
}

// driveToItems walks a session up to the item block.
func driveToItems(flow *FlowService, sess *model.SurveySession, program string) error {
	if _, err := flow.Enter(sess); err != nil {
		return err
	}
	if _, err := flow.Submit(sess, "consent", nil, map[string]string{"consent_participation": "yes"}); err != nil {
		return err
	}
	if _, err := flow.Submit(sess, "demo", nil, map[string]string{"program": program}); err != nil {
		return err
	}
	if program == "master" {
		if _, err := flow.Submit(sess, "extra", nil, map[string]string{"master_focus": "research"}); err != nil {
			return err
		}
	}
	return nil
}
