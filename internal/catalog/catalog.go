// Package catalog loads and validates the immutable study catalogs:
// the Item Bank, the Page Plan and the demographic field set. A study
// never starts against catalogs that fail validation here.
package catalog

import (
	"fmt"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"
)

// Catalog bundles everything sessions read but never write. It is
// shared freely across all concurrent sessions.
type Catalog struct {
	Items      *model.ItemBank
	Plan       *model.PagePlan
	Fields     map[string]model.DemographicField
	FieldOrder []string
}

func (c *Catalog) Field(id string) (model.DemographicField, bool) {
	f, ok := c.Fields[id]
	return f, ok
}

// Load reads all three catalog sources and validates them as a unit.
// The page plan file also declares the sub-scales, which the item bank
// rows must reference.
func Load(itemBankPath, pagePlanPath, fieldsPath string) (*Catalog, error) {
	plan, scales, err := LoadPagePlan(pagePlanPath)
	if err != nil {
		return nil, err
	}
	bank, err := LoadItemBank(itemBankPath, scales)
	if err != nil {
		return nil, err
	}
	fields, order, err := LoadFields(fieldsPath)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Items:      bank,
		Plan:       plan,
		Fields:     fields,
		FieldOrder: order,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate enforces referential integrity between the page plan and
// the loaded catalogs. Every referenced id must exist; conditions may
// only point at declared demographic fields.
func (c *Catalog) Validate() error {
	if c.Plan.Results() == nil {
		return fmt.Errorf("%w: page plan has no results page", util.ErrDanglingReference)
	}

	seen := make(map[string]bool, len(c.Plan.Pages))
	for i := range c.Plan.Pages {
		p := &c.Plan.Pages[i]
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate page id %q", util.ErrDanglingReference, p.ID)
		}
		seen[p.ID] = true

		if !p.Kind.Valid() {
			return fmt.Errorf("%w: page %q has unknown kind %q", util.ErrDanglingReference, p.ID, p.Kind)
		}
		for _, itemID := range p.ItemIDs {
			if _, ok := c.Items.Item(itemID); !ok {
				return fmt.Errorf("%w: page %q references item %q", util.ErrDanglingReference, p.ID, itemID)
			}
		}
		for _, fieldID := range p.FieldIDs {
			if _, ok := c.Fields[fieldID]; !ok {
				return fmt.Errorf("%w: page %q references field %q", util.ErrDanglingReference, p.ID, fieldID)
			}
		}
		if p.Condition != nil {
			if _, ok := c.Fields[p.Condition.FieldID]; !ok {
				return fmt.Errorf("%w: page %q condition references field %q", util.ErrDanglingReference, p.ID, p.Condition.FieldID)
			}
		}
	}
	return nil
}
