package catalog

import (
	"fmt"
	"os"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"

	"gopkg.in/yaml.v3"
)

type pagePlanFile struct {
	SubScales []model.SubScale       `yaml:"subscales"`
	Pages     []model.PageDescriptor `yaml:"pages"`
}

// LoadPagePlan reads the ordered page sequence and the sub-scale
// declarations from one yaml file.
func LoadPagePlan(path string) (*model.PagePlan, []model.SubScale, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read page plan: %w", err)
	}

	var file pagePlanFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse page plan: %w", err)
	}
	if len(file.Pages) == 0 {
		return nil, nil, fmt.Errorf("%w: page plan %s is empty", util.ErrDanglingReference, path)
	}

	seen := make(map[string]bool, len(file.SubScales))
	for _, s := range file.SubScales {
		if s.Key == "" {
			return nil, nil, fmt.Errorf("%w: sub-scale with empty key", util.ErrMalformedItemBank)
		}
		if seen[s.Key] {
			return nil, nil, fmt.Errorf("%w: duplicate sub-scale %q", util.ErrMalformedItemBank, s.Key)
		}
		seen[s.Key] = true
	}

	return &model.PagePlan{Pages: file.Pages}, file.SubScales, nil
}

type fieldsFile struct {
	Fields []model.DemographicField `yaml:"fields"`
}

// LoadFields reads the demographic field catalog, keeping declaration
// order for the export column layout.
func LoadFields(path string) (map[string]model.DemographicField, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fields: %w", err)
	}

	var file fieldsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse fields: %w", err)
	}

	fields := make(map[string]model.DemographicField, len(file.Fields))
	order := make([]string, 0, len(file.Fields))
	for _, f := range file.Fields {
		if f.ID == "" {
			return nil, nil, fmt.Errorf("%w: field with empty id", util.ErrDanglingReference)
		}
		if _, dup := fields[f.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate field id %q", util.ErrDanglingReference, f.ID)
		}
		if !f.Kind.Valid() {
			return nil, nil, fmt.Errorf("%w: field %q has unknown kind %q", util.ErrDanglingReference, f.ID, f.Kind)
		}
		fields[f.ID] = f
		order = append(order, f.ID)
	}
	return fields, order, nil
}
