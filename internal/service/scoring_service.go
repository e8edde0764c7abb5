package service

import (
	"fmt"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"
)

// ScoringService computes sub-scale scores from a response set. It is
// stateless and deterministic: identical inputs always yield identical
// scores, which the recommendation bands on the results page rely on.
type ScoringService struct {
	// MinItemsPerScale is the minimum number of answered items a
	// sub-scale needs before its mean is defined. At least 1.
	MinItemsPerScale int
}

func NewScoringService() *ScoringService {
	return &ScoringService{MinItemsPerScale: 1}
}

// Score computes the arithmetic mean per sub-scale. Reverse-coded items
// contribute (categories + 1) - raw; missing responses are excluded from
// the mean, never counted as zero. Fails with IncompleteResponseSet when
// a sub-scale has fewer answered items than the configured minimum.
func (s *ScoringService) Score(responses map[string]int, bank *model.ItemBank) (model.ScoreRecord, error) {
	min := s.MinItemsPerScale
	if min < 1 {
		min = 1
	}

	record := make(model.ScoreRecord, len(bank.SubScaleKeys()))
	for _, key := range bank.SubScaleKeys() {
		sum := 0.0
		answered := 0
		for _, itemID := range bank.ScaleItems(key) {
			raw, ok := responses[itemID]
			if !ok {
				continue
			}
			item, _ := bank.Item(itemID)
			value := float64(raw)
			if item.Reversed {
				value = float64(item.Categories+1) - value
			}
			sum += value
			answered++
		}
		if answered < min {
			return nil, fmt.Errorf("%w: sub-scale %q has %d of %d required responses",
				util.ErrIncompleteResponseSet, key, answered, min)
		}
		record[key] = sum / float64(answered)
	}
	return record, nil
}
