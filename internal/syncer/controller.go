// Package syncer owns the debounced, single-flight synchronization of a
// working directory: local mutations enqueue a commit message, a quiet
// period coalesces bursts into one flush, and a flush stages the tracker's
// storage, commits when a staged diff exists, and hands off to the
// tracker's own pull/merge sync.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/beadviz/internal/events"
	"github.com/groblegark/beadviz/internal/model"
	"github.com/groblegark/beadviz/internal/tracker"
)

// DefaultDebounce is the quiet period applied between the last enqueue and
// the flush it triggers.
const DefaultDebounce = 2 * time.Second

// defaultCommitMessage is used when a flush fires with an empty message.
const defaultCommitMessage = "beadviz: sync issue updates"

// phase is the controller's tagged state. pending rides alongside as the
// only legal extra dimension: an enqueue arriving mid-flush is captured as
// pending without leaving phaseFlushing.
type phase int

const (
	phaseIdle phase = iota
	phasePending
	phaseFlushing
	phaseError
)

// TrackerSyncer is the slice of the tracker gateway the controller needs.
type TrackerSyncer interface {
	Sync(ctx context.Context, opts tracker.SyncOptions) error
}

// GitGateway is the slice of the version-control gateway the controller needs.
type GitGateway interface {
	Add(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
}

// HistoryRecorder persists one record per flush attempt. Optional;
// recording is best-effort and never fails a flush.
type HistoryRecorder interface {
	RecordStart(ctx context.Context, dir, message string) (string, error)
	RecordFinish(ctx context.Context, id string, status model.SyncStatus, errMsg string) error
}

// Options configures a Controller. Zero values take defaults.
type Options struct {
	// Debounce is the quiet period before a flush. Defaults to 2s.
	Debounce time.Duration

	// SyncTimeout bounds the external stage/commit/sync calls of one
	// flush. Zero disables the bound, leaving a hung subprocess to hold
	// the controller in syncing until it exits — the tracker's own
	// timeouts are then the only protection.
	SyncTimeout time.Duration

	// NoPush suppresses the tracker's push for callers that apply a
	// credentialed push separately.
	NoPush bool

	// StagePaths are the paths staged before committing.
	// Defaults to the tracker's storage directory, ".beads".
	StagePaths []string

	Logger    *slog.Logger
	Publisher events.Publisher
	History   HistoryRecorder
}

// Controller serializes commit+sync for one working directory. All methods
// are safe for concurrent use.
type Controller struct {
	dir     string
	tracker TrackerSyncer
	git     GitGateway

	debounce    time.Duration
	syncTimeout time.Duration
	noPush      bool
	stagePaths  []string
	logger      *slog.Logger
	publisher   events.Publisher
	history     HistoryRecorder

	hub *hub

	mu       sync.Mutex
	phase    phase
	pending  bool
	message  string
	timer    *time.Timer
	status   model.SyncStatus
	lastSync *time.Time
	lastErr  string
}

// New returns a Controller for the given working directory.
func New(dir string, ts TrackerSyncer, git GitGateway, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.StagePaths) == 0 {
		opts.StagePaths = []string{".beads"}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	return &Controller{
		dir:         dir,
		tracker:     ts,
		git:         git,
		debounce:    opts.Debounce,
		syncTimeout: opts.SyncTimeout,
		noPush:      opts.NoPush,
		stagePaths:  opts.StagePaths,
		logger:      opts.Logger,
		publisher:   opts.Publisher,
		history:     opts.History,
		hub:         newHub(),
		phase:       phaseIdle,
		status:      model.SyncIdle,
	}
}

// Dir returns the working directory this controller owns.
func (c *Controller) Dir() string {
	return c.dir
}

// Subscribe registers a listener for controller events and returns its
// unsubscribe handle.
func (c *Controller) Subscribe(fn func(Event)) func() {
	return c.hub.subscribe(fn)
}

// State returns a snapshot of the controller's externally visible state.
func (c *Controller) State() model.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() model.SyncState {
	return model.SyncState{
		Status:    c.status,
		LastSync:  c.lastSync,
		LastError: c.lastErr,
		Pending:   c.pending,
	}
}

// Enqueue records a pending commit message (last write wins across bursts)
// and (re)starts the debounce timer. An enqueue arriving while a flush is
// in flight is captured as pending but does not arm the timer; a later
// enqueue or direct Flush picks it up.
func (c *Controller) Enqueue(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.message = message
	c.pending = true

	if c.phase == phaseFlushing {
		return
	}

	c.phase = phasePending
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { _ = c.Flush() })
}

// Stop clears a pending debounce timer. It does not abort an in-flight
// flush's subprocess calls; any captured pending message survives for a
// later Enqueue or Flush.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Flush runs the stage → commit → sync sequence now. It is a no-op when
// nothing is pending or another flush is already in flight, which keeps
// flushes single-flight per directory. Failures park the controller in the
// error state; the next Enqueue retries the whole cycle.
func (c *Controller) Flush() error {
	c.mu.Lock()
	if !c.pending || c.phase == phaseFlushing {
		c.mu.Unlock()
		return nil
	}
	message := c.message
	if message == "" {
		message = defaultCommitMessage
	}
	c.pending = false
	c.message = ""
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.phase = phaseFlushing
	c.status = model.SyncSyncing
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(Event{Type: EventStatusChange, Dir: c.dir, State: snap})
	c.publish(events.TopicSyncStatusChanged, events.SyncStatusChanged{Dir: c.dir, Status: model.SyncSyncing})

	ctx := context.Background()
	cancel := func() {}
	if c.syncTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.syncTimeout)
	}
	defer cancel()

	historyID := c.recordStart(ctx, message)
	err := c.runFlush(ctx, message)

	c.mu.Lock()
	var evts []Event
	if err != nil {
		c.phase = phaseError
		c.status = model.SyncError
		c.lastErr = err.Error()
		snap = c.snapshotLocked()
		evts = append(evts,
			Event{Type: EventStatusChange, Dir: c.dir, State: snap},
			Event{Type: EventSyncError, Dir: c.dir, State: snap, Error: err.Error()},
		)
	} else {
		now := time.Now().UTC()
		c.phase = phaseIdle
		c.status = model.SyncIdle
		c.lastSync = &now
		c.lastErr = ""
		snap = c.snapshotLocked()
		evts = append(evts,
			Event{Type: EventStatusChange, Dir: c.dir, State: snap},
			Event{Type: EventSyncComplete, Dir: c.dir, State: snap},
		)
	}
	c.mu.Unlock()

	for _, e := range evts {
		c.emit(e)
	}
	if err != nil {
		c.logger.Warn("sync flush failed", "dir", c.dir, "err", err)
		c.publish(events.TopicSyncFailed, events.SyncFailed{Dir: c.dir, Error: err.Error()})
		// The flush context may already be dead (timeout); don't let that
		// lose the history row.
		c.recordFinish(context.WithoutCancel(ctx), historyID, model.SyncError, err.Error())
		return err
	}
	c.logger.Info("sync flush complete", "dir", c.dir)
	c.publish(events.TopicSyncCompleted, events.SyncCompleted{Dir: c.dir, Message: message, CompletedAt: *snap.LastSync})
	c.recordFinish(context.WithoutCancel(ctx), historyID, model.SyncIdle, "")
	return nil
}

// runFlush performs the three external steps in order, stopping at the
// first failure.
func (c *Controller) runFlush(ctx context.Context, message string) error {
	if err := c.git.Add(ctx, c.stagePaths...); err != nil {
		return err
	}
	staged, err := c.git.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if staged {
		if err := c.git.Commit(ctx, message); err != nil {
			return err
		}
	}
	return c.tracker.Sync(ctx, tracker.SyncOptions{NoPush: c.noPush})
}

func (c *Controller) emit(e Event) {
	c.hub.publish(e)
}

// publish forwards an event to the external bus, best-effort.
func (c *Controller) publish(topic string, event any) {
	if err := c.publisher.Publish(context.Background(), topic, event); err != nil {
		c.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}

func (c *Controller) recordStart(ctx context.Context, message string) string {
	if c.history == nil {
		return ""
	}
	id, err := c.history.RecordStart(ctx, c.dir, message)
	if err != nil {
		c.logger.Warn("failed to record sync start", "dir", c.dir, "err", err)
		return ""
	}
	return id
}

func (c *Controller) recordFinish(ctx context.Context, id string, status model.SyncStatus, errMsg string) {
	if c.history == nil || id == "" {
		return
	}
	if err := c.history.RecordFinish(ctx, id, status, errMsg); err != nil {
		c.logger.Warn("failed to record sync finish", "dir", c.dir, "err", err)
	}
}
