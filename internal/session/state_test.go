package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/model"
)

func newMemoryState(t *testing.T) *State {
	t.Helper()
	store, err := New(config.SessionConfig{Type: "memory", TTLMinutes: 10})
	require.NoError(t, err)
	return NewState(store, "sid-1")
}

func TestConversationIDIsStable(t *testing.T) {
	ctx := context.Background()
	state := newMemoryState(t)
	_, ok, err := state.PeekConversationID(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	id, err := state.ConversationID(ctx)
	require.NoError(t, err)
	require.Len(t, id, 32)
	again, err := state.ConversationID(ctx)
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestCatalogCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	state := newMemoryState(t)
	in := &Catalog{
		FileName:     "bulletin.pdf",
		AcademicYear: "2024-2025",
		Pages:        []model.PageText{{PageNumber: 1, Text: "CS 215 - Intro Credits: 3"}},
		Plan:         &model.DegreePlan{Electives: []model.CatalogCourse{{Code: "CS 215", Title: "Intro", CreditsText: "3", Section: model.SectionUnknown}}},
	}
	require.NoError(t, state.SetCatalog(ctx, in))
	require.NoError(t, state.SetStudentSnapshot(ctx, &model.StudentSnapshot{StudentID: "1001"}))

	got, ok, err := state.Catalog(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, got)

	require.NoError(t, state.InvalidateCatalog(ctx))
	_, ok, err = state.Catalog(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	snap, ok, err := state.StudentSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1001", snap.StudentID)
}

func TestResetClearsEverything(t *testing.T) {
	ctx := context.Background()
	state := newMemoryState(t)
	id, err := state.ConversationID(ctx)
	require.NoError(t, err)
	require.NoError(t, state.SetStudentSnapshot(ctx, &model.StudentSnapshot{StudentID: "1001"}))
	require.NoError(t, state.Reset(ctx))

	_, ok, err := state.StudentSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	next, err := state.ConversationID(ctx)
	require.NoError(t, err)
	require.NotEqual(t, id, next)
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{TTL: time.Minute})
	require.NoError(t, store.Set(ctx, "a", "k", "1"))
	_, ok, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, store.Delete(ctx, "a", "k"))
	_, ok, err = store.Get(ctx, "a", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnknownStoreType(t *testing.T) {
	_, err := New(config.SessionConfig{Type: "etcd"})
	require.Error(t, err)
}

func TestRemoveCatalogBlocksAutoLoadUntilUpload(t *testing.T) {
	ctx := context.Background()
	state := newMemoryState(t)
	removed, err := state.CatalogRemoved(ctx)
	require.NoError(t, err)
	require.False(t, removed)

	require.NoError(t, state.RemoveCatalog(ctx))
	removed, err = state.CatalogRemoved(ctx)
	require.NoError(t, err)
	require.True(t, removed)

	require.NoError(t, state.SetCatalog(ctx, &Catalog{FileName: "new.pdf", Plan: &model.DegreePlan{}}))
	removed, err = state.CatalogRemoved(ctx)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestMissingStudentRecordIsCached(t *testing.T) {
	ctx := context.Background()
	state := newMemoryState(t)
	require.NoError(t, state.SetStudentSnapshot(ctx, nil))

	snap, ok, err := state.StudentSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, snap)

	require.NoError(t, state.InvalidateStudentContext(ctx))
	_, ok, err = state.StudentSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, state.SetStudentSnapshot(ctx, nil))
	require.NoError(t, state.Reset(ctx))
	_, ok, err = state.StudentSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
