package redisstore

import (
	"context"
	"testing"
	"time"

	"applybrain-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftStore_MemoryFallback(t *testing.T) {
	store := NewDraftStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	_, err := store.Get(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	session := &domain.WizardSession{UserID: "user-1", Step: domain.StepSkills}
	session.Draft.JobPreferences.Skills = []string{"Go"}
	require.NoError(t, store.Save(ctx, session))

	// Mutating the caller's copy must not leak into the store.
	session.Draft.JobPreferences.Skills[0] = "Rust"

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepSkills, got.Step)
	assert.Equal(t, []string{"Go"}, got.Draft.JobPreferences.Skills)

	require.NoError(t, store.Delete(ctx, "user-1"))
	_, err = store.Get(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	m := newMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.set("k", true, time.Minute))

	var v bool
	found, err := m.get("k", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, v)

	now = now.Add(2 * time.Minute)
	found, _ = m.get("k", &v)
	assert.False(t, found)

	require.NoError(t, m.set("k2", 1, time.Minute))
	now = now.Add(time.Hour)
	m.sweep()
	assert.Empty(t, m.entries)
}

func TestMemoryStore_ZeroTTLKeeps(t *testing.T) {
	m := newMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.set("draft", "kept", 0))
	now = now.Add(48 * time.Hour)
	m.sweep()

	var v string
	found, err := m.get("draft", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "kept", v)
}

func TestDraftStore_ZeroTTL(t *testing.T) {
	store := NewDraftStore(0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.WizardSession{UserID: "user-2", Step: domain.StepResume}))
	got, err := store.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StepResume, got.Step)
}

func TestFlagCache_MemoryFallback(t *testing.T) {
	cache := NewFlagCache(time.Minute)
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "user-1", true))
	completed, found, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, completed)

	require.NoError(t, cache.Invalidate(ctx, "user-1"))
	_, found, _ = cache.Get(ctx, "user-1")
	assert.False(t, found)
}
