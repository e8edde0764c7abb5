package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hilfo_survey_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// SnapshotRepository keeps a live copy of every in-progress session in
// redis so a restarted instance can rehydrate a returning participant.
// Each session owns exactly one key; nothing here is shared between
// sessions.
type SnapshotRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotRepository(rdb *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{rdb: rdb, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return "hilfo:session:" + sessionID
}

func (r *SnapshotRepository) Save(ctx context.Context, sess *model.SurveySession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	return r.rdb.Set(ctx, snapshotKey(sess.ID), raw, r.ttl).Err()
}

func (r *SnapshotRepository) Load(ctx context.Context, sessionID string) (*model.SurveySession, error) {
	raw, err := r.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess model.SurveySession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &sess, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, snapshotKey(sessionID)).Err()
}
