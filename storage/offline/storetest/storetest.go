// Package storetest checks an offline.Store implementation against the store contract.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/offline"
)

// Backing returns a function that opens a Store over one fresh backing location.
// Every call of the returned function must see the data written by earlier ones.
type Backing func(t *testing.T) func() offline.Store

var ctx = context.Background()

func Run(t *testing.T, backing Backing) {
	t.Run("init is idempotent", func(t *testing.T) { testInit(t, backing(t)) })
	t.Run("content", func(t *testing.T) { testContent(t, backing(t)()) })
	t.Run("progress upsert", func(t *testing.T) { testProgress(t, backing(t)()) })
	t.Run("sync queue", func(t *testing.T) { testQueue(t, backing(t)()) })
}

// RunPartialBatch checks that StoreContent keeps the items written before a failure.
// s must fail the write of content "c2" and nothing else.
func RunPartialBatch(t *testing.T, s offline.Store) {
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(ctx))

	items := []offline.ContentRecord{
		{ID: "c1", CategoryID: "math", Type: "lesson", Title: map[string]string{"en": "Fractions"}},
		{ID: "c2", CategoryID: "math", Type: "quiz", Title: map[string]string{"en": "Fractions quiz"}},
		{ID: "c3", CategoryID: "science", Type: "video", Title: map[string]string{"en": "Plants"}},
	}
	require.Error(t, s.StoreContent(ctx, items))

	got, err := s.GetOfflineContent(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	byCat, err := s.GetContentByCategory(ctx, "science")
	require.NoError(t, err)
	assert.Empty(t, byCat)
}

func open(t *testing.T, o func() offline.Store) offline.Store {
	s := o()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testInit(t *testing.T, o func() offline.Store) {
	s := open(t, o)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.StoreProgress(ctx, offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 20}))
	_, err := s.QueueSync(ctx, offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 20})
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Close())

	s = open(t, o)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))

	recs, err := s.GetStoredProgress(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 20, recs[0].ProgressPercentage)

	entries, err := s.GetSyncQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func testContent(t *testing.T, s offline.Store) {
	t.Cleanup(func() { _ = s.Close() })
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []offline.ContentRecord{
		{ID: "c3", CategoryID: "math", Type: "video", Title: map[string]string{"en": "Fractions"}, UpdatedAt: now},
		{ID: "c1", CategoryID: "science", Type: "text", Title: map[string]string{"en": "Plants", "pa": "ਪੌਦੇ"}, UpdatedAt: now},
		{ID: "c2", CategoryID: "math", Type: "quiz", Title: map[string]string{"en": "Decimals"}, UpdatedAt: now},
	}

	// lazy init
	require.NoError(t, s.StoreContent(ctx, items))
	require.NoError(t, s.StoreContent(ctx, []offline.ContentRecord{
		{ID: "c2", CategoryID: "science", Type: "quiz", Title: map[string]string{"en": "Decimals v2"}, UpdatedAt: now},
	}))

	all, err := s.GetOfflineContent(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Decimals v2", all[1].Title["en"])
	assert.Equal(t, "ਪੌਦੇ", all[0].Title["pa"])
	assert.True(t, now.Equal(all[0].UpdatedAt))

	tests := []struct {
		category string
		want     []string
	}{
		{category: "math", want: []string{"c3"}},
		{category: "science", want: []string{"c1", "c2"}},
		{category: "history", want: []string{}},
	}
	for _, tt := range tests {
		got, err := s.GetContentByCategory(ctx, tt.category)
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, item := range got {
			ids = append(ids, item.ID)
		}
		assert.Equal(t, tt.want, ids, tt.category)
	}
}

func testProgress(t *testing.T, s offline.Store) {
	t.Cleanup(func() { _ = s.Close() })
	score := 80
	done := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.StoreProgress(ctx, offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 40}))
	require.NoError(t, s.StoreProgress(ctx, offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 100, Score: &score, CompletedAt: &done}))
	require.NoError(t, s.StoreProgress(ctx, offline.ProgressRecord{ID: "p-2", StudentID: "s1", ContentItemID: "c2", ProgressPercentage: 10}))
	require.NoError(t, s.StoreProgress(ctx, offline.ProgressRecord{StudentID: "s2", ContentItemID: "c1", ProgressPercentage: 70}))

	recs, err := s.GetStoredProgress(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "p-2", recs[0].ID)
	assert.Equal(t, "s1:c1", recs[1].ID)
	assert.Equal(t, 100, recs[1].ProgressPercentage)
	require.NotNil(t, recs[1].Score)
	assert.Equal(t, 80, *recs[1].Score)
	require.NotNil(t, recs[1].CompletedAt)
	assert.True(t, done.Equal(*recs[1].CompletedAt))

	recs, err = s.GetStoredProgress(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = s.GetStoredProgress(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testQueue(t *testing.T, s offline.Store) {
	t.Cleanup(func() { _ = s.Close() })
	a := offline.ProgressRecord{ID: "s1:c1", StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 10}
	b := offline.Submission{AssignmentID: "a1", StudentID: "s1", Answers: map[string]string{"q1": "x"}}
	c := offline.ProgressRecord{ID: "s1:c2", StudentID: "s1", ContentItemID: "c2", ProgressPercentage: 30}

	before := time.Now().Add(-time.Second)
	var queued []offline.Entry
	for _, p := range []offline.Payload{a, b, c} {
		e, err := s.QueueSync(ctx, p)
		require.NoError(t, err)
		queued = append(queued, e)
	}

	entries, err := s.GetSyncQueue(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, queued[i].ID, e.ID)
		if i > 0 {
			assert.Greater(t, e.ID, entries[i-1].ID)
		}
		assert.True(t, e.QueuedAt().After(before), "timestamp %d", e.Timestamp)
	}
	assert.Equal(t, offline.EntryProgress, entries[0].Type())
	assert.Equal(t, a, entries[0].Payload)
	assert.Equal(t, b, entries[1].Payload)
	assert.Equal(t, c, entries[2].Payload)

	require.NoError(t, s.ClearSyncQueueThrough(ctx, entries[1].ID))
	entries, err = s.GetSyncQueue(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, queued[2].ID, entries[0].ID)

	require.NoError(t, s.ClearSyncQueue(ctx))
	entries, err = s.GetSyncQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// ids keep increasing after a clear
	e, err := s.QueueSync(ctx, a)
	require.NoError(t, err)
	assert.Greater(t, e.ID, queued[2].ID)
}
