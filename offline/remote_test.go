package offline_test

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/offline"
)

var errRemoteDown = errors.New("503 Service Unavailable")

type call struct {
	path    string
	payload offline.Payload
}

// remoteMock records calls; fail decides, per call index, whether the call fails.
type remoteMock struct {
	mu    sync.Mutex
	calls []call
	fail  func(n int, p offline.Payload) bool

	// block, when set, is received from before each call returns
	block   chan struct{}
	entered chan struct{}
}

func (r *remoteMock) do(ctx context.Context, path string, p offline.Payload) error {
	if r.entered != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.calls)
	r.calls = append(r.calls, call{path: path, payload: p})
	if r.fail != nil && r.fail(n, p) {
		return offline.RemoteDeliveryFailed("POST "+path, errRemoteDown)
	}
	return nil
}

func (r *remoteMock) PostProgress(ctx context.Context, rec offline.ProgressRecord) error {
	return r.do(ctx, "/api/progress", rec)
}

func (r *remoteMock) SubmitAssignment(ctx context.Context, sub offline.Submission) error {
	return r.do(ctx, "/api/assignments/submit", sub)
}

func (r *remoteMock) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

func (r *remoteMock) setFail(fail func(n int, p offline.Payload) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func alwaysFail(int, offline.Payload) bool { return true }
