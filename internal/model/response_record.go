package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ResponseRecord is the durable archive row of one completed session.
// The primary key is the session id, never a timestamp-derived name:
// two participants finishing in the same instant must not collide.
type ResponseRecord struct {
	SessionID    string          `gorm:"primaryKey;type:varchar(36)" json:"sessionId"`
	StudyKey     string          `gorm:"size:64;index" json:"studyKey"`
	Locale       string          `gorm:"size:8" json:"locale"`
	Responses    json.RawMessage `gorm:"type:json" json:"responses"`
	Demographics json.RawMessage `gorm:"type:json" json:"demographics"`
	Scores       json.RawMessage `gorm:"type:json" json:"scores"`
	VisitedPages json.RawMessage `gorm:"type:json" json:"visitedPages"`
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  time.Time       `json:"completedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (ResponseRecord) TableName() string {
	return "response_records"
}

// RecordFromSession freezes a completed session into its archive row.
func RecordFromSession(s *SurveySession, studyKey string) (*ResponseRecord, error) {
	responses, err := json.Marshal(s.Responses)
	if err != nil {
		return nil, err
	}
	demographics, err := json.Marshal(s.Demographics)
	if err != nil {
		return nil, err
	}
	scores, err := json.Marshal(s.Scores)
	if err != nil {
		return nil, err
	}
	visited, err := json.Marshal(s.VisitedPages)
	if err != nil {
		return nil, err
	}

	completedAt := s.LastActivity
	if s.CompletedAt != nil {
		completedAt = *s.CompletedAt
	}

	return &ResponseRecord{
		SessionID:    s.ID,
		StudyKey:     studyKey,
		Locale:       string(s.Locale),
		Responses:    responses,
		Demographics: demographics,
		Scores:       scores,
		VisitedPages: visited,
		StartedAt:    s.StartedAt,
		CompletedAt:  completedAt,
	}, nil
}
