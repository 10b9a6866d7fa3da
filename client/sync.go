package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveStatus is the state of the debounced order-persistence pipeline.
type SaveStatus int

const (
	StatusIdle SaveStatus = iota
	StatusPendingSave
	StatusSaving
	StatusSaved
	StatusError
)

func (s SaveStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPendingSave:
		return "pending_save"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

type orderPersister interface {
	SaveOrder(ctx context.Context, rankingID string, entries []OrderEntry) error
}

// SyncConfig tunes the controller's timing. Zero values select the defaults
// of a 500ms debounce window and a 2s saved-status hold.
type SyncConfig struct {
	DebounceWindow time.Duration
	SavedHold      time.Duration
}

// SyncController collapses rapid successive reorder events into the minimal
// number of persist calls while never losing the latest order.
//
// The latest snapshot is held as mutable state, not captured at arm time: a
// reorder arriving during the debounce window replaces the snapshot and
// resets the timer, so the request that eventually fires always carries the
// newest order. A reorder arriving while a request is in flight does not
// cancel it; it arms a follow-up save. Completions carry a sequence number
// and a stale completion never overwrites the status a newer save owns.
type SyncController struct {
	mu      sync.Mutex
	persist orderPersister
	logger  *zap.Logger

	debounce  time.Duration
	savedHold time.Duration

	status    SaveStatus
	rankingID string
	snapshot  []OrderEntry
	dirty     bool
	seq       uint64

	timer     *time.Timer
	holdTimer *time.Timer
	onStatus  func(SaveStatus)
}

// NewSyncController builds a controller persisting through persist.
func NewSyncController(persist orderPersister, logger *zap.Logger, cfg SyncConfig) *SyncController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = 500 * time.Millisecond
	}
	if cfg.SavedHold <= 0 {
		cfg.SavedHold = 2 * time.Second
	}
	return &SyncController{
		persist:   persist,
		logger:    logger,
		debounce:  cfg.DebounceWindow,
		savedHold: cfg.SavedHold,
		status:    StatusIdle,
	}
}

// SetStatusListener registers a callback invoked on every status change. The
// callback runs with the controller unlocked.
func (c *SyncController) SetStatusListener(fn func(SaveStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// Status returns the current pipeline status.
func (c *SyncController) Status() SaveStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Reorder records a new full order for the ranking and (re)arms the debounce
// timer. The entries replace any snapshot a previous reorder left behind.
func (c *SyncController) Reorder(rankingID string, entries []OrderEntry) {
	c.mu.Lock()

	c.rankingID = rankingID
	c.snapshot = append([]OrderEntry(nil), entries...)
	c.dirty = true

	if c.timer != nil {
		c.timer.Stop()
	}
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	// An in-flight save keeps its status; the armed timer will issue the
	// follow-up save once the window elapses.
	var notify func(SaveStatus)
	if c.status != StatusSaving {
		c.status = StatusPendingSave
		notify = c.onStatus
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
	c.mu.Unlock()

	if notify != nil {
		notify(StatusPendingSave)
	}
}

// Retry re-issues the last snapshot immediately. Only meaningful from the
// error state; otherwise a no-op.
func (c *SyncController) Retry() {
	c.mu.Lock()
	if c.status != StatusError || len(c.snapshot) == 0 {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	c.mu.Unlock()
	c.fire()
}

// Stop cancels any armed timers. In-flight requests run to completion but
// their completions are ignored.
func (c *SyncController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	c.dirty = false
	c.seq++
}

func (c *SyncController) fire() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	rankingID := c.rankingID
	entries := append([]OrderEntry(nil), c.snapshot...)
	c.dirty = false
	c.seq++
	mySeq := c.seq
	c.status = StatusSaving
	notify := c.onStatus
	c.mu.Unlock()

	if notify != nil {
		notify(StatusSaving)
	}

	go func() {
		err := c.persist.SaveOrder(context.Background(), rankingID, entries)
		c.complete(mySeq, rankingID, err)
	}()
}

func (c *SyncController) complete(seq uint64, rankingID string, err error) {
	c.mu.Lock()
	if seq != c.seq {
		// A newer save superseded this one; its completion owns the status.
		c.mu.Unlock()
		return
	}

	var notify func(SaveStatus)
	var status SaveStatus
	if err != nil {
		c.status = StatusError
		status = StatusError
		notify = c.onStatus
		c.mu.Unlock()
		c.logger.Warn("failed to persist ranking order", zap.String("ranking_id", rankingID), zap.Error(err))
		if notify != nil {
			notify(status)
		}
		return
	}

	c.status = StatusSaved
	status = StatusSaved
	notify = c.onStatus
	c.holdTimer = time.AfterFunc(c.savedHold, func() {
		c.mu.Lock()
		var idleNotify func(SaveStatus)
		if c.status == StatusSaved {
			c.status = StatusIdle
			idleNotify = c.onStatus
		}
		c.mu.Unlock()
		if idleNotify != nil {
			idleNotify(StatusIdle)
		}
	})
	c.mu.Unlock()

	if notify != nil {
		notify(status)
	}
}
