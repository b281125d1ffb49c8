package offline

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

// Remote is the API the coordinator delivers writes to.
// Any error, including a non-2xx response, counts as a failed delivery.
type Remote interface {
	PostProgress(ctx context.Context, rec ProgressRecord) error
	SubmitAssignment(ctx context.Context, sub Submission) error
}

// Delivery is the outcome of a write.
type Delivery int

const (
	Delivered Delivery = iota + 1 // acknowledged by the remote API
	Queued                        // stored in the sync queue for later replay
)

func (d Delivery) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}

// Metrics observes the coordinator.
type Metrics interface {
	Saved(typ EntryType, d Delivery)
	Replayed(typ EntryType)
	DrainFinished(replayed int, err error)
}

type nopMetrics struct{}

func (nopMetrics) Saved(EntryType, Delivery) {}
func (nopMetrics) Replayed(EntryType)        {}
func (nopMetrics) DrainFinished(int, error)  {}

type Option func(*Coordinator)

func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Coordinator persists writes locally, delivers them when online and replays the sync queue
// each time the monitor reports a transition to online.
type Coordinator struct {
	store   Store
	remote  Remote
	monitor *Monitor
	logger  core.Logger
	metrics Metrics

	mu       sync.Mutex
	draining bool
	rerun    bool

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// NewCoordinator subscribes to the monitor; Close ends the subscription.
func NewCoordinator(store Store, remote Remote, monitor *Monitor, logger core.Logger, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		store:   store,
		remote:  remote,
		monitor: monitor,
		logger:  logger,
		metrics: nopMetrics{},
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	events, unsubscribe := monitor.Subscribe()
	c.unsubscribe = unsubscribe
	c.wg.Add(1)
	go c.watch(events)
	return c
}

func (c *Coordinator) watch(events <-chan Event) {
	defer c.wg.Done()
	for ev := range events {
		if !ev.Online {
			continue
		}
		c.logger.Debug("connectivity restored, draining sync queue")
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.SyncPendingData(c.ctx)
		}()
	}
}

// Close unsubscribes from the monitor, cancels background drains and waits for them to return.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.cancel()
		c.wg.Wait()
	})
}

// SaveProgress caches rec locally, then delivers it or queues it.
// A record the API would reject is refused with ErrInvalidRecord before anything is stored;
// otherwise only local failures are returned, as ErrLocalPersistenceFailed.
func (c *Coordinator) SaveProgress(ctx context.Context, rec ProgressRecord) (Delivery, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	rec = rec.Keyed()
	if err := c.store.StoreProgress(ctx, rec); err != nil {
		return 0, LocalPersistenceFailed("storing progress", err)
	}
	return c.deliver(ctx, rec)
}

// SubmitAssignment delivers sub or queues it. Errors are as for SaveProgress.
func (c *Coordinator) SubmitAssignment(ctx context.Context, sub Submission) (Delivery, error) {
	if err := sub.Validate(); err != nil {
		return 0, err
	}
	return c.deliver(ctx, sub)
}

func (c *Coordinator) deliver(ctx context.Context, p Payload) (Delivery, error) {
	if c.monitor.Online() {
		err := c.send(ctx, p)
		if err == nil {
			c.metrics.Saved(p.EntryType(), Delivered)
			return Delivered, nil
		}
		c.logger.Warn("remote delivery failed, queueing", err, map[string]interface{}{"type": p.EntryType()})
	}

	if _, err := c.store.QueueSync(ctx, p); err != nil {
		return 0, LocalPersistenceFailed("queueing "+string(p.EntryType()), err)
	}
	c.metrics.Saved(p.EntryType(), Queued)
	return Queued, nil
}

func (c *Coordinator) send(ctx context.Context, p Payload) error {
	switch v := p.(type) {
	case ProgressRecord:
		return c.remote.PostProgress(ctx, v)
	case Submission:
		return c.remote.SubmitAssignment(ctx, v)
	default:
		return errors.Wrapf(ErrUnknownEntryType, "%T", p)
	}
}

// SyncPendingData replays the sync queue in order and clears it once every entry is delivered.
// A failed replay aborts the drain and leaves the queue untouched; it is logged, never returned.
// A call made while a drain is running returns at once and makes the running drain do one more pass.
func (c *Coordinator) SyncPendingData(ctx context.Context) {
	c.mu.Lock()
	if c.draining {
		c.rerun = true
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()

	for {
		c.drain(ctx)

		c.mu.Lock()
		if !c.rerun {
			c.draining = false
			c.mu.Unlock()
			return
		}
		c.rerun = false
		c.mu.Unlock()

		// the rerun belongs to another caller and must outlive this one's context
		if ctx.Err() != nil {
			ctx = c.ctx
		}
	}
}

func (c *Coordinator) drain(ctx context.Context) {
	if !c.monitor.Online() {
		return
	}

	entries, err := c.store.GetSyncQueue(ctx)
	if err != nil {
		c.logger.Error("reading sync queue", err)
		c.metrics.DrainFinished(0, err)
		return
	}
	if len(entries) == 0 {
		return
	}

	for i, entry := range entries {
		if err := c.send(ctx, entry.Payload); err != nil {
			err = RemoteDeliveryFailed("replaying "+string(entry.Type()), err)
			c.logger.Warn("sync aborted", err, map[string]interface{}{
				"entry_id": entry.ID,
				"replayed": i,
				"pending":  len(entries),
			})
			c.metrics.DrainFinished(i, err)
			return
		}
		c.metrics.Replayed(entry.Type())
	}

	// entries queued while draining have higher IDs and stay queued
	last := entries[len(entries)-1].ID
	if err := c.store.ClearSyncQueueThrough(ctx, last); err != nil {
		c.logger.Error("clearing sync queue", err, map[string]interface{}{"through": last})
		c.metrics.DrainFinished(len(entries), err)
		return
	}
	c.logger.Info("sync queue drained", map[string]interface{}{"replayed": len(entries)})
	c.metrics.DrainFinished(len(entries), nil)
}
