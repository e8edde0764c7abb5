package service

import (
	"context"
	"sync"
	"time"

	"hilfo_survey_backend/internal/model"
	"hilfo_survey_backend/internal/util"
	"hilfo_survey_backend/pkg/logger"
	"hilfo_survey_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotStore persists live per-session snapshots for crash recovery.
type SnapshotStore interface {
	Save(ctx context.Context, sess *model.SurveySession) error
	Load(ctx context.Context, sessionID string) (*model.SurveySession, error)
	Delete(ctx context.Context, sessionID string) error
}

// Archiver writes a completed session to durable storage.
type Archiver interface {
	ArchiveSession(ctx context.Context, sess *model.SurveySession) error
}

// sessionHandle pairs one session with the mutex that serializes all
// access to it. The handle is the session's identity: no code path may
// touch the session without holding its lock.
type sessionHandle struct {
	mu   sync.Mutex
	sess *model.SurveySession
}

// SessionRegistry owns every live session. Sessions are created here,
// handed out only under their own lock, and discarded after archival or
// idle timeout. The registry map itself holds no participant data
// beyond the handles; all mutable state lives inside each session.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionHandle

	flow      *FlowService
	snapshots SnapshotStore
	archiver  Archiver
	idle      time.Duration
	now       func() time.Time
}

func NewSessionRegistry(flow *FlowService, snapshots SnapshotStore, archiver Archiver, idle time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions:  make(map[string]*sessionHandle),
		flow:      flow,
		snapshots: snapshots,
		archiver:  archiver,
		idle:      idle,
		now:       time.Now,
	}
}

// Create starts a new session with a fresh uuid. The id is unique per
// session and carries no wall-clock component, so two participants
// finishing in the same instant can never collide in the archive.
func (r *SessionRegistry) Create(ctx context.Context, locale model.Locale) (string, *PageView, error) {
	if !locale.Valid() {
		return "", nil, util.ErrUnsupportedLocale
	}

	sess := model.NewSurveySession(uuid.New().String(), locale, r.now())
	handle := &sessionHandle{sess: sess}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	r.mu.Lock()
	r.sessions[sess.ID] = handle
	r.mu.Unlock()

	view, err := r.flow.Enter(sess)
	if err != nil {
		return "", nil, err
	}
	r.saveSnapshot(ctx, sess)
	monitoring.SessionsStarted.Inc()
	return sess.ID, view, nil
}

// Enter resolves the session's current page. Blocks briefly if a
// submission for the same session is in flight.
func (r *SessionRegistry) Enter(ctx context.Context, sessionID string) (*PageView, error) {
	handle, err := r.handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	return r.flow.Enter(handle.sess)
}

// Submit applies one page submission. A second submission racing the
// first on the same session is rejected with StaleSubmission instead of
// being silently merged; the in-flight one is never interrupted.
func (r *SessionRegistry) Submit(ctx context.Context, sessionID, pageID string, answers map[string]int, values map[string]string) (*PageView, error) {
	handle, err := r.handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !handle.mu.TryLock() {
		return nil, util.ErrStaleSubmission
	}
	defer handle.mu.Unlock()

	wasCompleted := handle.sess.Completed
	view, err := r.flow.Submit(handle.sess, pageID, answers, values)
	if err != nil {
		monitoring.ObserveSubmission(false)
		return nil, err
	}
	monitoring.ObserveSubmission(true)

	r.saveSnapshot(ctx, handle.sess)

	if handle.sess.Completed && !wasCompleted {
		monitoring.SessionsCompleted.Inc()
		if r.archiver != nil {
			if err := r.archiver.ArchiveSession(ctx, handle.sess); err != nil {
				// The participant still gets their results;
				// the reaper retries archival before discard.
				logger.Log.Error("archive on completion failed",
					zap.String("session", handle.sess.ID), zap.Error(err))
			}
		}
	}
	return view, nil
}

// SetLocale toggles the display language of exactly the caller's own
// session. There is no shared locale anywhere to leak into another
// participant's view.
func (r *SessionRegistry) SetLocale(ctx context.Context, sessionID string, locale model.Locale) error {
	handle, err := r.handle(ctx, sessionID)
	if err != nil {
		return err
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if err := r.flow.SetLocale(handle.sess, locale); err != nil {
		return err
	}
	r.saveSnapshot(ctx, handle.sess)
	return nil
}

// Results renders the completed session's score feedback.
func (r *SessionRegistry) Results(ctx context.Context, sessionID string) (*PageView, error) {
	handle, err := r.handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	return r.flow.Results(handle.sess)
}

// ActiveCount reports the number of live handles, for metrics.
func (r *SessionRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// handle looks the session up, rehydrating from its snapshot when this
// instance has restarted since the participant last interacted.
func (r *SessionRegistry) handle(ctx context.Context, sessionID string) (*sessionHandle, error) {
	r.mu.RLock()
	h, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	if r.snapshots != nil {
		sess, err := r.snapshots.Load(ctx, sessionID)
		if err != nil {
			logger.Log.Warn("snapshot load failed", zap.String("session", sessionID), zap.Error(err))
		}
		if sess != nil {
			r.mu.Lock()
			defer r.mu.Unlock()
			if existing, ok := r.sessions[sessionID]; ok {
				return existing, nil
			}
			h = &sessionHandle{sess: sess}
			r.sessions[sessionID] = h
			return h, nil
		}
	}
	return nil, util.ErrSessionNotFound
}

func (r *SessionRegistry) saveSnapshot(ctx context.Context, sess *model.SurveySession) {
	if r.snapshots == nil {
		return
	}
	if err := r.snapshots.Save(ctx, sess); err != nil {
		logger.Log.Warn("snapshot save failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

// StartReaper discards sessions idle past the configured duration.
// Completed sessions were archived at completion; an incomplete idle
// session counts as abandoned and is dropped with its snapshot.
func (r *SessionRegistry) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.reap(ctx)
			}
		}
	}()
}

func (r *SessionRegistry) reap(ctx context.Context) {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var expired []*sessionHandle
	for id, h := range r.sessions {
		// TryLock skips sessions with an in-flight call; they are
		// not idle and must not be interrupted mid-validation.
		if !h.mu.TryLock() {
			continue
		}
		if h.sess.LastActivity.Before(cutoff) {
			expired = append(expired, h)
			delete(r.sessions, id)
		} else {
			h.mu.Unlock()
		}
	}
	r.mu.Unlock()

	for _, h := range expired {
		sess := h.sess
		if sess.Completed && r.archiver != nil {
			if err := r.archiver.ArchiveSession(ctx, sess); err != nil {
				logger.Log.Error("archive on reap failed", zap.String("session", sess.ID), zap.Error(err))
			}
		}
		if r.snapshots != nil {
			if err := r.snapshots.Delete(ctx, sess.ID); err != nil {
				logger.Log.Warn("snapshot delete failed", zap.String("session", sess.ID), zap.Error(err))
			}
		}
		logger.Log.Info("session reaped",
			zap.String("session", sess.ID),
			zap.Bool("completed", sess.Completed))
		h.mu.Unlock()
	}
	monitoring.ActiveSessions.Set(float64(r.ActiveCount()))
}
