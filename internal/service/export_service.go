package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"hilfo_survey_backend/internal/catalog"
	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/repository"
	"hilfo_survey_backend/internal/util"
	"hilfo_survey_backend/pkg/logger"

	"go.uber.org/zap"
)

// ExportService is the persistence adapter: it freezes completed
// sessions into archive rows and renders the tabular study export. The
// column set is the union of every possible field across the page plan;
// values a session never saw are written as the NA sentinel, never as
// blank or zero.
type ExportService struct {
	repo     *repository.ResponseRepository
	storage  StorageProvider
	flow     *FlowService
	studyKey string
}

func NewExportService(repo *repository.ResponseRepository, storage StorageProvider, flow *FlowService, studyKey string) *ExportService {
	return &ExportService{
		repo:     repo,
		storage:  storage,
		flow:     flow,
		studyKey: studyKey,
	}
}

// ArchiveSession writes the durable record for one completed session
// and uploads its single-row CSV, named by session id.
func (s *ExportService) ArchiveSession(ctx context.Context, sess *model.SurveySession) error {
	record, err := model.RecordFromSession(sess, s.studyKey)
	if err != nil {
		return fmt.Errorf("freeze session %s: %w", sess.ID, err)
	}
	if err := s.repo.Save(record); err != nil {
		return fmt.Errorf("archive session %s: %w", sess.ID, err)
	}

	if s.storage != nil {
		data, err := s.renderCSV([]model.ResponseRecord{*record})
		if err != nil {
			return err
		}
		filename := fmt.Sprintf("%s_%s.csv", s.studyKey, sess.ID)
		if _, err := uploadBytes(ctx, s.storage, filename, data, "text/csv"); err != nil {
			// The database row is the durable record; the upload is
			// the cloud mirror and can be regenerated.
			logger.Log.Warn("session csv upload failed",
				zap.String("session", sess.ID), zap.Error(err))
		}
	}
	return nil
}

// ListRecords returns the archived sessions of this study.
func (s *ExportService) ListRecords() ([]model.ResponseRecord, error) {
	return s.repo.ListByStudy(s.studyKey)
}

// StudyCSV renders the whole study as one delimited table.
func (s *ExportService) StudyCSV() ([]byte, error) {
	records, err := s.repo.ListByStudy(s.studyKey)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(records)
}

// UploadStudyCSV renders and pushes the full export to storage.
func (s *ExportService) UploadStudyCSV(ctx context.Context) (string, error) {
	data, err := s.StudyCSV()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_export.csv", s.studyKey)
	return uploadBytes(ctx, s.storage, filename, data, "text/csv")
}

func (s *ExportService) renderCSV(records []model.ResponseRecord) ([]byte, error) {
	cat := s.flow.Catalog()
	header := ExportColumns(cat)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range records {
		row, err := recordRow(&records[i], header)
		if err != nil {
			return nil, err
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportColumns is the stable column layout: session metadata, then
// every demographic field in catalog order, every item in bank order,
// and every sub-scale score.
func ExportColumns(cat *catalog.Catalog) []string {
	cols := []string{"session_id", "locale", "started_at", "completed_at"}
	cols = append(cols, cat.FieldOrder...)
	cols = append(cols, cat.Items.ItemIDs()...)
	for _, key := range cat.Items.SubScaleKeys() {
		cols = append(cols, "score_"+key)
	}
	return cols
}

// FlattenRecord maps one archive row onto the flat key→value form of
// the export; absent values carry the NA sentinel.
func FlattenRecord(rec *model.ResponseRecord) (map[string]string, error) {
	var responses map[string]int
	var demographics map[string]string
	var scores map[string]float64
	if err := json.Unmarshal(rec.Responses, &responses); err != nil {
		return nil, fmt.Errorf("record %s responses: %w", rec.SessionID, err)
	}
	if err := json.Unmarshal(rec.Demographics, &demographics); err != nil {
		return nil, fmt.Errorf("record %s demographics: %w", rec.SessionID, err)
	}
	if err := json.Unmarshal(rec.Scores, &scores); err != nil {
		return nil, fmt.Errorf("record %s scores: %w", rec.SessionID, err)
	}

	flat := map[string]string{
		"session_id":   rec.SessionID,
		"locale":       rec.Locale,
		"started_at":   rec.StartedAt.Format(util.TimeFormat),
		"completed_at": rec.CompletedAt.Format(util.TimeFormat),
	}
	for k, v := range demographics {
		flat[k] = v
	}
	for k, v := range responses {
		flat[k] = strconv.Itoa(v)
	}
	for k, v := range scores {
		flat["score_"+k] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return flat, nil
}

func recordRow(rec *model.ResponseRecord, header []string) ([]string, error) {
	flat, err := FlattenRecord(rec)
	if err != nil {
		return nil, err
	}
	row := make([]string, len(header))
	for i, col := range header {
		if v, ok := flat[col]; ok && v != "" {
			row[i] = v
		} else {
			row[i] = util.NASentinel
		}
	}
	return row, nil
}
