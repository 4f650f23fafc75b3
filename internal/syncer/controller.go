// Package syncer reconciles the one-time saga snapshot with the push
// stream into a single authoritative state record.
//
// The controller owns the record: stream payloads replace it wholesale and
// append their log scope to the history front, strictly in arrival order.
// The snapshot fetch is deferred until the diagram is renderable, which
// means a stream update can legitimately arrive first; in that case the
// late snapshot is discarded as stale instead of bulk-loading a log
// history that would duplicate the entries the stream already delivered.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"sagaview/internal/observable"
	"sagaview/internal/saga"
	"sagaview/internal/scopelog"
)

// DefaultPollInterval is the render-readiness poll period.
const DefaultPollInterval = 250 * time.Millisecond

// SagaClient is the host surface the controller consumes.
type SagaClient interface {
	FetchState(ctx context.Context) (*saga.StateRecord, error)
	Stream(ctx context.Context, handler func(*saga.StateRecord)) error
	Publish(ctx context.Context, cmd saga.Command) error
}

// ScopeSink receives every scope applied to the history, for archival.
type ScopeSink interface {
	SaveScope(*scopelog.Scope) error
}

// Options configures a Controller.
type Options struct {
	// PollInterval overrides the readiness poll period.
	PollInterval time.Duration

	// Archive, when set, receives every applied scope.
	Archive ScopeSink

	// OnUpdate runs after every applied update with the new current
	// state and last error; the view uses it to re-highlight the
	// diagram. It runs with no controller lock held and may call back
	// into the controller.
	OnUpdate func(currentState, lastError string)

	Logger *slog.Logger
}

// Controller is the state synchronization controller.
type Controller struct {
	client   SagaClient
	history  *scopelog.History
	logger   *slog.Logger
	poll     time.Duration
	archive  ScopeSink
	onUpdate func(string, string)

	// Observables for the fields the UI renders directly. The
	// controller is their single writer.
	CurrentState *observable.Value[string]
	LastError    *observable.Value[string]
	HistoryRev   *observable.Value[uint64]

	// mu serializes update application; notifyMu extends that order to
	// the notifications by being acquired while mu is still held.
	mu            sync.Mutex
	notifyMu      sync.Mutex
	record        *saga.StateRecord
	streamTouched bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a controller over client and history.
func New(client SagaClient, history *scopelog.History, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	onUpdate := opts.OnUpdate
	if onUpdate == nil {
		onUpdate = func(string, string) {}
	}

	return &Controller{
		client:       client,
		history:      history,
		logger:       opts.Logger,
		poll:         opts.PollInterval,
		archive:      opts.Archive,
		onUpdate:     onUpdate,
		CurrentState: observable.New(""),
		LastError:    observable.New(""),
		HistoryRev:   observable.New(uint64(0)),
	}
}

// Start launches the stream subscription immediately and polls ready until
// the view is renderable, then fetches the snapshot once. The poll cancels
// itself permanently after that single fetch.
func (c *Controller) Start(ctx context.Context, ready func() bool) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := c.client.Stream(ctx, c.applyStream)
		if err != nil && !errors.Is(err, context.Canceled) {
			// Diagnostics only: the view keeps whatever state it has.
			c.logger.Warn("saga stream ended", "error", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !ready() {
					continue
				}
				c.loadSnapshot(ctx)
				return
			}
		}
	}()
}

// Stop cancels the stream and the readiness poll and waits for both.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Record returns the current authoritative record, which may be nil before
// any data has arrived.
func (c *Controller) Record() *saga.StateRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Publish forwards a command to the host. Failure leaves local state
// untouched; the caller surfaces it to the operator.
func (c *Controller) Publish(ctx context.Context, cmd saga.Command) error {
	return c.client.Publish(ctx, cmd)
}

// RetryFaulted publishes RetryFaultedActivity for the saga's current state.
func (c *Controller) RetryFaulted(ctx context.Context) error {
	return c.Publish(ctx, saga.RetryFaultedActivity(c.CurrentState.Get()))
}

// loadSnapshot performs the one-time bulk load. Fetch failure is logged
// and otherwise ignored: stream processing continues and may still
// populate the view.
func (c *Controller) loadSnapshot(ctx context.Context) {
	rec, err := c.client.FetchState(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn("no initial state, proceeding without snapshot", "error", err)
		return
	}

	c.mu.Lock()

	if c.streamTouched {
		// A stream update beat the snapshot: the snapshot is stale and
		// its bulk log load would duplicate the scope the stream
		// already appended.
		c.mu.Unlock()
		c.logger.Info("discarding stale snapshot, stream already applied")
		return
	}

	c.record = rec
	if rec.Log != nil {
		c.history.LoadHistory(rec.Log.Scopes)
		for _, s := range c.history.Scopes() {
			c.archiveScope(s)
		}
	}
	c.notifyAndUnlock(rec, true)
	c.logger.Info("snapshot loaded",
		"state", rec.CurrentState, "scopes", c.history.Len())
}

// applyStream applies one push-stream payload. The stream client invokes
// it from a single goroutine in arrival order; c.mu additionally serializes
// it against the snapshot load.
func (c *Controller) applyStream(rec *saga.StateRecord) {
	c.mu.Lock()

	c.record = rec
	c.streamTouched = true
	built := c.history.AppendScope(rec.Scope())
	c.archiveScope(built)
	c.notifyAndUnlock(rec, built != nil)
}

// notifyAndUnlock releases c.mu, then pushes the record's observable
// fields and triggers the highlight callback. notifyMu is taken before
// c.mu is released, so notifications fire in application order; they fire
// with c.mu free, so a subscriber may call back into the controller
// (Record, Publish) without deadlocking. Caller holds c.mu.
func (c *Controller) notifyAndUnlock(rec *saga.StateRecord, historyChanged bool) {
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.CurrentState.Set(rec.CurrentState)
	c.LastError.Set(rec.LastError)
	if historyChanged {
		c.HistoryRev.Set(c.HistoryRev.Get() + 1)
	}
	c.onUpdate(rec.CurrentState, rec.LastError)
}

func (c *Controller) archiveScope(s *scopelog.Scope) {
	if c.archive == nil || s == nil {
		return
	}
	if err := c.archive.SaveScope(s); err != nil {
		c.logger.Warn("archive scope", "message_id", s.MessageID, "error", err)
	}
}
