package offline_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/offline"
	logsvc "github.com/trezcool/nabha/services/logger"
	"github.com/trezcool/nabha/storage/offline/inmem"
)

var ctx = context.Background()

type fixture struct {
	store   *inmem.Store
	remote  *remoteMock
	monitor *offline.Monitor
	coord   *offline.Coordinator
}

func setup(t *testing.T, online bool) *fixture {
	t.Helper()
	f := &fixture{
		store:   inmem.New(),
		remote:  &remoteMock{},
		monitor: offline.NewMonitor(online),
	}
	f.coord = offline.NewCoordinator(f.store, f.remote, f.monitor, logsvc.NewNopLogger())
	t.Cleanup(f.coord.Close)
	return f
}

func (f *fixture) queue(t *testing.T) []offline.Entry {
	t.Helper()
	entries, err := f.store.GetSyncQueue(ctx)
	require.NoError(t, err)
	return entries
}

func (f *fixture) enqueue(t *testing.T, payloads ...offline.Payload) []offline.Entry {
	t.Helper()
	entries := make([]offline.Entry, 0, len(payloads))
	for _, p := range payloads {
		e, err := f.store.QueueSync(ctx, p)
		require.NoError(t, err)
		entries = append(entries, e)
	}
	return entries
}

func entryIDs(entries []offline.Entry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func progressRec(student, item string, pct int) offline.ProgressRecord {
	return offline.ProgressRecord{
		StudentID:          student,
		ContentItemID:      item,
		ProgressPercentage: pct,
		LastAccessedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCoordinator_offlineSaveThenReconnect(t *testing.T) {
	f := setup(t, false)
	rec := offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 50}

	d, err := f.coord.SaveProgress(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, offline.Queued, d)

	stored, err := f.store.GetStoredProgress(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.Keyed(), stored[0])

	entries := f.queue(t)
	require.Len(t, entries, 1)
	assert.Equal(t, offline.EntryProgress, entries[0].Type())
	assert.Empty(t, f.remote.Calls())

	f.monitor.SetOnline(true)

	assert.Eventually(t, func() bool { return len(f.queue(t)) == 0 }, time.Second, 5*time.Millisecond)
	calls := f.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/progress", calls[0].path)
	assert.Equal(t, rec.Keyed(), calls[0].payload)
}

func TestCoordinator_SaveProgress(t *testing.T) {
	storeErr := errors.New("disk full")
	tests := []struct {
		name       string
		online     bool
		remoteFail bool
		failWrites func(op string) error
		want       offline.Delivery
		wantErr    error
		wantCalls  int
		wantCached bool
		wantQueued int
	}{
		{name: "online delivered", online: true, want: offline.Delivered, wantCalls: 1, wantCached: true},
		{name: "online remote failure falls back to queue", online: true, remoteFail: true, want: offline.Queued, wantCalls: 1, wantCached: true, wantQueued: 1},
		{name: "offline queued", want: offline.Queued, wantCached: true, wantQueued: 1},
		{
			name:       "local cache failure",
			online:     true,
			failWrites: func(string) error { return storeErr },
			wantErr:    offline.ErrLocalPersistenceFailed,
		},
		{
			name: "queue failure",
			failWrites: func(op string) error {
				if op == "sync_queue" {
					return storeErr
				}
				return nil
			},
			wantErr:    offline.ErrLocalPersistenceFailed,
			wantCached: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.online)
			if tt.remoteFail {
				f.remote.setFail(alwaysFail)
			}
			f.store.FailWrites = tt.failWrites

			rec := progressRec("s1", "c1", 40)
			got, err := f.coord.SaveProgress(ctx, rec)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, errors.Is(err, storeErr), "cause lost: %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Len(t, f.remote.Calls(), tt.wantCalls)
			stored, err := f.store.GetStoredProgress(ctx, "s1")
			require.NoError(t, err)
			if tt.wantCached {
				assert.Equal(t, []offline.ProgressRecord{rec.Keyed()}, stored)
			} else {
				assert.Empty(t, stored)
			}
			assert.Len(t, f.queue(t), tt.wantQueued)
		})
	}
}

func TestCoordinator_invalidRecords(t *testing.T) {
	score := 150
	tests := []struct {
		name    string
		payload offline.Payload
		field   string
	}{
		{name: "score above 100", payload: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 50, Score: &score}, field: "score"},
		{name: "negative time", payload: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", TimeSpent: -1}, field: "time_spent"},
		{name: "percentage above 100", payload: offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 101}, field: "progress_percentage"},
		{name: "no content item", payload: offline.ProgressRecord{StudentID: "s1"}, field: "content_item_id"},
		{name: "no answers", payload: offline.Submission{AssignmentID: "a1", StudentID: "s1"}, field: "answers"},
		{name: "no assignment", payload: offline.Submission{StudentID: "s1", Answers: map[string]string{"q1": "x"}}, field: "assignment_id"},
	}
	for _, tt := range tests {
		for _, online := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s online=%t", tt.name, online), func(t *testing.T) {
				f := setup(t, online)

				var err error
				switch p := tt.payload.(type) {
				case offline.ProgressRecord:
					_, err = f.coord.SaveProgress(ctx, p)
				case offline.Submission:
					_, err = f.coord.SubmitAssignment(ctx, p)
				}
				require.Error(t, err)
				assert.True(t, errors.Is(err, offline.ErrInvalidRecord), "got %v", err)
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Contains(t, verr.FieldMap(), tt.field)

				assert.Empty(t, f.remote.Calls())
				assert.Empty(t, f.queue(t))
				stored, err := f.store.GetStoredProgress(ctx, "s1")
				require.NoError(t, err)
				assert.Empty(t, stored)
			})
		}
	}
}

func TestCoordinator_SubmitAssignment(t *testing.T) {
	sub := offline.Submission{
		AssignmentID: "a1",
		StudentID:    "s1",
		Answers:      map[string]string{"q1": "42"},
		SubmittedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("offline", func(t *testing.T) {
		f := setup(t, false)
		d, err := f.coord.SubmitAssignment(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, offline.Queued, d)

		entries := f.queue(t)
		require.Len(t, entries, 1)
		assert.Equal(t, offline.EntryAssignmentSubmission, entries[0].Type())
		assert.Equal(t, sub, entries[0].Payload)
	})

	t.Run("online", func(t *testing.T) {
		f := setup(t, true)
		d, err := f.coord.SubmitAssignment(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, offline.Delivered, d)
		assert.Empty(t, f.queue(t))

		calls := f.remote.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/api/assignments/submit", calls[0].path)
	})
}

func TestCoordinator_SyncPendingData(t *testing.T) {
	a := progressRec("s1", "c1", 10)
	b := offline.Submission{AssignmentID: "a1", StudentID: "s1", Answers: map[string]string{"q1": "x"}}
	c := progressRec("s1", "c2", 30)

	t.Run("offline is a no-op", func(t *testing.T) {
		f := setup(t, false)
		queued := f.enqueue(t, a, b, c)

		f.coord.SyncPendingData(ctx)

		assert.Empty(t, f.remote.Calls())
		assert.Equal(t, entryIDs(queued), entryIDs(f.queue(t)))
	})

	t.Run("replays in order and clears", func(t *testing.T) {
		f := setup(t, true)
		f.enqueue(t, a, b, c)

		f.coord.SyncPendingData(ctx)

		assert.Equal(t, []call{
			{path: "/api/progress", payload: a},
			{path: "/api/assignments/submit", payload: b},
			{path: "/api/progress", payload: c},
		}, f.remote.Calls())
		assert.Empty(t, f.queue(t))
	})

	t.Run("failure aborts without clearing", func(t *testing.T) {
		f := setup(t, true)
		queued := f.enqueue(t, a, b, c)
		f.remote.setFail(func(_ int, p offline.Payload) bool { return p.EntryType() == offline.EntryAssignmentSubmission })

		f.coord.SyncPendingData(ctx)

		calls := f.remote.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, a, calls[0].payload)
		assert.Equal(t, b, calls[1].payload)
		assert.Equal(t, entryIDs(queued), entryIDs(f.queue(t)))

		// the next drain resends everything
		f.remote.setFail(nil)
		f.coord.SyncPendingData(ctx)

		calls = f.remote.Calls()
		require.Len(t, calls, 5)
		assert.Equal(t, []offline.Payload{a, b, a, b, c}, []offline.Payload{
			calls[0].payload, calls[1].payload, calls[2].payload, calls[3].payload, calls[4].payload,
		})
		assert.Empty(t, f.queue(t))
	})

	t.Run("empty queue", func(t *testing.T) {
		f := setup(t, true)
		f.coord.SyncPendingData(ctx)
		assert.Empty(t, f.remote.Calls())
	})
}

func TestCoordinator_SyncPendingData_singleFlight(t *testing.T) {
	f := setup(t, true)
	f.remote.block = make(chan struct{})
	f.remote.entered = make(chan struct{}, 1)
	f.enqueue(t, progressRec("s1", "c1", 10))

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.coord.SyncPendingData(ctx)
	}()
	<-f.remote.entered

	// overlapping calls return at once
	for i := 0; i < 3; i++ {
		f.coord.SyncPendingData(ctx)
	}
	// saved while the first drain is in flight
	late := f.enqueue(t, progressRec("s1", "c2", 20))

	close(f.remote.block)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not finish")
	}

	calls := f.remote.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, progressRec("s1", "c1", 10), calls[0].payload)
	assert.Equal(t, late[0].Payload, calls[1].payload)
	assert.Empty(t, f.queue(t))
}

// the pass requested by a second caller still runs when the first caller gives up
func TestCoordinator_SyncPendingData_rerunOutlivesCaller(t *testing.T) {
	f := setup(t, true)
	f.remote.block = make(chan struct{})
	f.remote.entered = make(chan struct{}, 1)
	queued := f.enqueue(t, progressRec("s1", "c1", 10))

	first, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.coord.SyncPendingData(first)
	}()
	<-f.remote.entered

	f.coord.SyncPendingData(ctx) // coalesced into the running drain
	cancel()

	select {
	case <-f.remote.entered: // the rerun reached the remote
	case <-time.After(time.Second):
		t.Fatal("rerun did not start")
	}
	close(f.remote.block)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not finish")
	}
	calls := f.remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, queued[0].Payload, calls[0].payload)
	assert.Empty(t, f.queue(t))
}

func TestCoordinator_atLeastOnceAcrossFlaps(t *testing.T) {
	f := setup(t, false)
	recs := []offline.ProgressRecord{progressRec("s1", "c1", 10), progressRec("s1", "c2", 20), progressRec("s1", "c3", 30)}
	for _, rec := range recs {
		_, err := f.coord.SaveProgress(ctx, rec)
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		f.monitor.SetOnline(true)
		f.monitor.SetOnline(false)
	}
	f.monitor.SetOnline(true)

	assert.Eventually(t, func() bool { return len(f.queue(t)) == 0 }, time.Second, 5*time.Millisecond)
	calls := f.remote.Calls()
	require.GreaterOrEqual(t, len(calls), len(recs))
	// every record is delivered, in order, at least once
	seen := 0
	for _, c := range calls {
		if seen < len(recs) && c.payload == offline.Payload(recs[seen].Keyed()) {
			seen++
		}
	}
	assert.Equal(t, len(recs), seen)
}

func TestCoordinator_Close(t *testing.T) {
	f := setup(t, false)
	f.coord.Close()
	f.coord.Close() // idempotent

	_, err := f.coord.SaveProgress(ctx, progressRec("s1", "c1", 10))
	require.NoError(t, err)
	f.monitor.SetOnline(true)

	assert.Never(t, func() bool { return len(f.remote.Calls()) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Len(t, f.queue(t), 1)
}
