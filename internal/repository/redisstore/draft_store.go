package redisstore

import (
	"context"
	"errors"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/redis"
)

const draftKeyPrefix = "onboarding:draft:"

// DraftStore keeps wizard sessions in Redis with a sliding TTL, or in
// memory when Redis is not connected.
type DraftStore struct {
	ttl  time.Duration
	mem  *memoryStore
	stop chan struct{}
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	s := &DraftStore{ttl: ttl, mem: newMemoryStore(), stop: make(chan struct{})}
	s.mem.startJanitor(5*time.Minute, s.stop)
	return s
}

// Close stops the in-memory janitor.
func (s *DraftStore) Close() {
	close(s.stop)
}

func (s *DraftStore) Get(ctx context.Context, userID string) (*domain.WizardSession, error) {
	var session domain.WizardSession
	found, err := redis.GetJSON(ctx, draftKeyPrefix+userID, &session)
	if errors.Is(err, redis.ErrUnavailable) {
		found, err = s.mem.get(draftKeyPrefix+userID, &session)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrDraftNotFound
	}
	return &session, nil
}

func (s *DraftStore) Save(ctx context.Context, session *domain.WizardSession) error {
	err := redis.SetJSON(ctx, draftKeyPrefix+session.UserID, session, s.ttl)
	if errors.Is(err, redis.ErrUnavailable) {
		return s.mem.set(draftKeyPrefix+session.UserID, session, s.ttl)
	}
	return err
}

func (s *DraftStore) Delete(ctx context.Context, userID string) error {
	err := redis.Delete(ctx, draftKeyPrefix+userID)
	if errors.Is(err, redis.ErrUnavailable) {
		s.mem.delete(draftKeyPrefix + userID)
		return nil
	}
	if err != nil {
		logger.Log.Warn("Failed to delete onboarding draft", "user_id", userID, "error", err)
	}
	return err
}
