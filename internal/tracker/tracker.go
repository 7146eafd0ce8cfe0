// Package tracker maintains a user's reading position in a book while a
// reader view is open: the current page, the accumulated reading time, and a
// debounced save loop that persists both.
//
// Page turns update in-memory state immediately and never wait on I/O. A save
// fires only after a quiet interval with no further page changes, carries the
// latest page at the moment it fires, and at most one save is in flight per
// tracker. Closing the tracker cancels a pending save outright - the final
// page turn before teardown can be lost, which is the documented trade-off
// rather than a defect.
package tracker

import (
	"context"
	"log"
	"sync"
	"time"
)

// SaveStatus is the observable persistence state, for UI feedback only.
type SaveStatus string

const (
	StatusIdle   SaveStatus = "idle"
	StatusSaving SaveStatus = "saving"
	StatusSaved  SaveStatus = "saved"
)

const (
	DefaultDebounceInterval = 1500 * time.Millisecond
	DefaultSaveTimeout      = 10 * time.Second
	DefaultSavedDisplay     = 2 * time.Second
)

// ProgressStore persists debounced saves. The store, not the tracker, owns
// last-writer-wins arbitration between overlapping saves.
type ProgressStore interface {
	SaveProgress(ctx context.Context, userID, bookID uint, page int, addedMinutes float64, at time.Time) error
}

// IndicatorStore answers the page-presence queries shown alongside the
// viewer. Lookup failures are swallowed; the indicators just stay off.
type IndicatorStore interface {
	HasBookmarkOnPage(userID, bookID uint, page int) (bool, error)
	HasNotesOnPage(userID, bookID uint, page int) (bool, error)
}

// Config tunes a tracker. Zero values fall back to the defaults above.
type Config struct {
	DebounceInterval time.Duration
	SaveTimeout      time.Duration
	SavedDisplay     time.Duration
	Clock            Clock
}

// State is a point-in-time snapshot of the tracker for the view-status
// endpoint.
type State struct {
	CurrentPage int        `json:"current_page"`
	SaveStatus  SaveStatus `json:"save_status"`
	HasBookmark bool       `json:"has_bookmark"`
	HasNotes    bool       `json:"has_notes"`
}

// Tracker reconciles page-turn events with debounced persistence for one
// open reader view. All methods are safe for concurrent use.
type Tracker struct {
	store      ProgressStore
	indicators IndicatorStore
	clock      Clock
	cfg        Config

	userID uint
	bookID uint

	mu          sync.Mutex
	currentPage int
	status      SaveStatus
	pending     Timer // armed debounce timer, nil when quiet
	statusTimer Timer // cosmetic saved->idle revert
	inFlight    bool
	lastSaveAt  time.Time // origin for elapsed-time accounting; advances only on success
	hasBookmark bool
	hasNotes    bool
	closed      bool
}

// New creates a tracker for an open reader view. initialPage is the page the
// view opened on (already clamped by the caller). The elapsed-time origin
// starts now, so the first save is seeded with time since the view opened.
func New(store ProgressStore, indicators IndicatorStore, userID, bookID uint, initialPage int, cfg Config) *Tracker {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	if cfg.SavedDisplay <= 0 {
		cfg.SavedDisplay = DefaultSavedDisplay
	}
	if cfg.Clock == nil {
		cfg.Clock = NewRealClock()
	}
	if initialPage < 1 {
		initialPage = 1
	}

	t := &Tracker{
		store:       store,
		indicators:  indicators,
		clock:       cfg.Clock,
		cfg:         cfg,
		userID:      userID,
		bookID:      bookID,
		currentPage: initialPage,
		status:      StatusIdle,
		lastSaveAt:  cfg.Clock.Now(),
	}
	go t.refreshIndicators(initialPage)
	return t
}

// OnPageChange records a page turn. The in-memory page updates immediately;
// persistence is deferred until the debounce interval passes without another
// page change. The tracker does not clamp: callers validate newPage against
// the book's page count before invoking.
func (t *Tracker) OnPageChange(newPage int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	t.currentPage = newPage

	// Re-arm the quiet-interval timer. An in-flight save is left alone; the
	// store's updated_at arbitration keeps it from clobbering newer state.
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = t.clock.AfterFunc(t.cfg.DebounceInterval, t.fire)
}

// CurrentPage returns the page the view is on right now.
func (t *Tracker) CurrentPage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentPage
}

// Snapshot returns the observable tracker state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		CurrentPage: t.currentPage,
		SaveStatus:  t.status,
		HasBookmark: t.hasBookmark,
		HasNotes:    t.hasNotes,
	}
}

// Close tears the tracker down when the reader view goes away. A pending
// debounce timer is cancelled, not flushed: a page turn inside the last quiet
// interval is dropped. An already in-flight save is allowed to finish.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	if t.statusTimer != nil {
		t.statusTimer.Stop()
		t.statusTimer = nil
	}
}

// fire runs when the debounce interval elapses with no further page changes.
func (t *Tracker) fire() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.pending = nil

	if t.inFlight {
		// One persistence attempt at a time: try again after another quiet
		// interval instead of stacking requests.
		t.pending = t.clock.AfterFunc(t.cfg.DebounceInterval, t.fire)
		t.mu.Unlock()
		return
	}

	// The payload carries the page as of this moment, never a stale capture.
	page := t.currentPage
	firedAt := t.clock.Now()
	elapsed := firedAt.Sub(t.lastSaveAt).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}

	t.inFlight = true
	t.status = StatusSaving
	t.mu.Unlock()

	go t.refreshIndicators(page)
	go t.save(page, elapsed, firedAt)
}

func (t *Tracker) save(page int, elapsedMinutes float64, firedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.SaveTimeout)
	defer cancel()

	err := t.store.SaveProgress(ctx, t.userID, t.bookID, page, elapsedMinutes, firedAt)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.inFlight = false

	if err != nil {
		// Dropped silently from the user's perspective; the next debounce
		// cycle carries the latest page, so the failure self-heals while the
		// user keeps reading.
		log.Printf("Failed to save reading progress (user=%d book=%d page=%d): %v", t.userID, t.bookID, page, err)
		t.status = StatusIdle
		return
	}

	// Only a successful save consumes the elapsed window; a failed one leaves
	// the origin alone so the time is carried into the next attempt.
	t.lastSaveAt = firedAt
	t.status = StatusSaved

	if t.statusTimer != nil {
		t.statusTimer.Stop()
	}
	t.statusTimer = t.clock.AfterFunc(t.cfg.SavedDisplay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.status == StatusSaved {
			t.status = StatusIdle
		}
	})
}

// refreshIndicators re-reads the bookmark/note presence flags for a settled
// page. Errors leave the previous values in place.
func (t *Tracker) refreshIndicators(page int) {
	if t.indicators == nil {
		return
	}

	hasBookmark, bmErr := t.indicators.HasBookmarkOnPage(t.userID, t.bookID, page)
	hasNotes, noteErr := t.indicators.HasNotesOnPage(t.userID, t.bookID, page)

	t.mu.Lock()
	defer t.mu.Unlock()
	if bmErr == nil {
		t.hasBookmark = hasBookmark
	}
	if noteErr == nil {
		t.hasNotes = hasNotes
	}
}
