package repository

import (
	"hilfo_survey_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// Save upserts by session id so re-archiving an already archived
// session stays idempotent.
func (r *ResponseRepository) Save(record *model.ResponseRecord) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(record).Error
}

func (r *ResponseRepository) FindBySessionID(sessionID string) (*model.ResponseRecord, error) {
	var rec model.ResponseRecord
	err := r.DB.Where("session_id = ?", sessionID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ResponseRepository) ListByStudy(studyKey string) ([]model.ResponseRecord, error) {
	var records []model.ResponseRecord
	err := r.DB.Where("study_key = ?", studyKey).Order("completed_at asc").Find(&records).Error
	return records, err
}

func (r *ResponseRepository) CountByStudy(studyKey string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.ResponseRecord{}).Where("study_key = ?", studyKey).Count(&total).Error
	return total, err
}
