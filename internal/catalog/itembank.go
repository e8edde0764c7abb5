package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"
)

// itembank.csv columns, in order.
var itemBankHeader = []string{"id", "prompt_de", "prompt_en", "subscale", "reversed", "categories"}

// LoadItemBank reads the tabular item bank. Loading fails with
// MalformedItemBank on duplicate ids, unknown sub-scales, bad category
// counts, or a declared sub-scale that ends up with zero items.
func LoadItemBank(path string, scales []model.SubScale) (*model.ItemBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open item bank: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedItemBank, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: no item rows in %s", util.ErrMalformedItemBank, path)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(scales))
	for _, s := range scales {
		declared[s.Key] = true
	}

	seen := make(map[string]bool)
	items := make([]model.Item, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if len(row) != len(itemBankHeader) {
			return nil, fmt.Errorf("%w: line %d has %d columns", util.ErrMalformedItemBank, line, len(row))
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			return nil, fmt.Errorf("%w: line %d has empty id", util.ErrMalformedItemBank, line)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate item id %q", util.ErrMalformedItemBank, id)
		}
		seen[id] = true

		subScale := strings.TrimSpace(row[3])
		if !declared[subScale] {
			return nil, fmt.Errorf("%w: item %q references undeclared sub-scale %q", util.ErrMalformedItemBank, id, subScale)
		}

		reversed, err := strconv.ParseBool(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("%w: item %q has invalid reversed flag %q", util.ErrMalformedItemBank, id, row[4])
		}
		categories, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil || categories < 2 {
			return nil, fmt.Errorf("%w: item %q has invalid category count %q", util.ErrMalformedItemBank, id, row[5])
		}

		items = append(items, model.Item{
			ID:         id,
			Prompt:     model.LocalizedText{DE: row[1], EN: row[2]},
			SubScale:   subScale,
			Reversed:   reversed,
			Categories: categories,
		})
	}

	bank := model.NewItemBank(items, scales)
	for _, key := range bank.SubScaleKeys() {
		if len(bank.ScaleItems(key)) == 0 {
			return nil, fmt.Errorf("%w: sub-scale %q has zero items", util.ErrMalformedItemBank, key)
		}
	}
	return bank, nil
}

func checkHeader(header []string) error {
	if len(header) != len(itemBankHeader) {
		return fmt.Errorf("%w: expected header %v", util.ErrMalformedItemBank, itemBankHeader)
	}
	for i, col := range itemBankHeader {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("%w: expected column %q, got %q", util.ErrMalformedItemBank, col, header[i])
		}
	}
	return nil
}
