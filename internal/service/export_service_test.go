package service

import (
	"strings"
	"testing"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedRecord(t *testing.T, program string, answers map[string]int) *model.ResponseRecord {
	t.Helper()
	flow := newTestFlow()
	sess := newTestSession("rec-1")
	require.NoError(t, driveToItems(flow, sess, program))
	_, err := flow.Submit(sess, "items", answers, nil)
	require.NoError(t, err)
	require.True(t, sess.Completed)

	record, err := model.RecordFromSession(sess, "teststudy")
	require.NoError(t, err)
	return record
}

func TestExportColumnsLayout(t *testing.T) {
	cols := ExportColumns(testCatalog())
	assert.Equal(t, []string{
		"session_id", "locale", "started_at", "completed_at",
		"consent_participation", "program", "master_focus",
		"A", "B", "C", "D",
		"score_X",
	}, cols)
}

func TestFlattenRecord(t *testing.T) {
	record := completedRecord(t, "bachelor", map[string]int{"A": 5, "B": 1, "C": 3, "D": 2})

	flat, err := FlattenRecord(record)
	require.NoError(t, err)

	assert.Equal(t, "rec-1", flat["session_id"])
	assert.Equal(t, "de", flat["locale"])
	assert.Equal(t, "yes", flat["consent_participation"])
	assert.Equal(t, "bachelor", flat["program"])
	assert.Equal(t, "5", flat["A"])
	assert.Equal(t, "1", flat["B"])
	assert.Equal(t, "4.25", flat["score_X"])
	assert.NotEmpty(t, flat["started_at"])
	assert.NotEmpty(t, flat["completed_at"])

	// A field the session never saw is simply absent from the flat map.
	_, ok := flat["master_focus"]
	assert.False(t, ok)
}

func TestRecordRowWritesNAForUnseenColumns(t *testing.T) {
	record := completedRecord(t, "bachelor", map[string]int{"A": 5, "B": 1, "C": 3, "D": 2})
	header := ExportColumns(testCatalog())

	row, err := recordRow(record, header)
	require.NoError(t, err)
	require.Len(t, row, len(header))

	byCol := make(map[string]string, len(header))
	for i, col := range header {
		byCol[col] = row[i]
	}

	// The Bachelor path skips the master page, so its field reads NA.
	assert.Equal(t, util.NASentinel, byCol["master_focus"])
	assert.Equal(t, "bachelor", byCol["program"])
	assert.Equal(t, "3", byCol["C"])
	assert.Equal(t, "4.25", byCol["score_X"])
	assert.NotContains(t, row, "")
}

func TestRecordRowMasterPath(t *testing.T) {
	flow := newTestFlow()
	sess := newTestSession("rec-2")
	require.NoError(t, driveToItems(flow, sess, "master"))
	_, err := flow.Submit(sess, "items", map[string]int{"A": 4, "B": 2, "C": 4, "D": 2}, nil)
	require.NoError(t, err)

	record, err := model.RecordFromSession(sess, "teststudy")
	require.NoError(t, err)

	header := ExportColumns(testCatalog())
	row, err := recordRow(record, header)
	require.NoError(t, err)

	byCol := make(map[string]string, len(header))
	for i, col := range header {
		byCol[col] = row[i]
	}
	assert.Equal(t, "master", byCol["program"])
	assert.Equal(t, "research", byCol["master_focus"])
}

func TestFlattenRecordRejectsCorruptPayload(t *testing.T) {
	record := completedRecord(t, "bachelor", map[string]int{"A": 5, "B": 1, "C": 3, "D": 2})
	record.Responses = []byte("{not json")

	_, err := FlattenRecord(record)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), record.SessionID))
}
