// Package reader manages open reader views. A view is one user reading one
// book: it pins the book metadata, holds the progress tracker for that
// sitting, and is addressed by an opaque view ID handed to the client.
//
// Views that go quiet are expired by a janitor after a TTL; expiry tears the
// tracker down the same way an explicit close does, so a pending save inside
// the last debounce window is dropped rather than flushed.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kuttab/kuttab/internal/entities"
	"github.com/kuttab/kuttab/internal/tracker"
)

var (
	// ErrViewNotFound covers unknown, expired, and other-user view IDs alike.
	ErrViewNotFound = errors.New("reader view not found")
	// ErrPageOutOfRange rejects page turns beyond the book's page count.
	ErrPageOutOfRange = errors.New("page out of range")
)

// BookStore resolves the book being opened.
type BookStore interface {
	GetByID(userID, id uint) (*entities.Book, error)
}

// SessionStore resolves where the user last left off.
type SessionStore interface {
	LatestForBook(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error)
}

// Config tunes the view registry. Zero values fall back to the defaults.
type Config struct {
	ViewTTL         time.Duration
	JanitorInterval time.Duration
	Tracker         tracker.Config
}

const (
	DefaultViewTTL         = 30 * time.Minute
	DefaultJanitorInterval = 5 * time.Minute
)

type view struct {
	id          string
	userID      uint
	book        *entities.Book
	tracker     *tracker.Tracker
	lastTouched time.Time
}

// Service is the registry of open reader views.
type Service struct {
	books      BookStore
	sessions   SessionStore
	progress   tracker.ProgressStore
	indicators tracker.IndicatorStore
	cfg        Config

	mu    sync.Mutex
	views map[string]*view

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// ViewInfo is what the client gets back when a view opens.
type ViewInfo struct {
	ViewID      string         `json:"view_id"`
	Book        *entities.Book `json:"book"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

// NewService creates the registry and starts its janitor.
func NewService(books BookStore, sessions SessionStore, progress tracker.ProgressStore, indicators tracker.IndicatorStore, cfg Config) *Service {
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = DefaultViewTTL
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = DefaultJanitorInterval
	}

	s := &Service{
		books:       books,
		sessions:    sessions,
		progress:    progress,
		indicators:  indicators,
		cfg:         cfg,
		views:       make(map[string]*view),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	go s.janitor()
	return s
}

// OpenView loads the book and the user's last position, clamps the starting
// page into the book's range, and registers a tracker for the sitting. The
// two reads run concurrently.
func (s *Service) OpenView(ctx context.Context, userID, bookID uint) (*ViewInfo, error) {
	var (
		book    *entities.Book
		session *entities.ReadingSession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		book, err = s.books.GetByID(userID, bookID)
		if err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		session, err = s.sessions.LatestForBook(gctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("failed to load reading session: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := 1
	if session != nil {
		page = session.CurrentPage
	}
	page = clampPage(page, book.TotalPages)

	v := &view{
		id:          uuid.NewString(),
		userID:      userID,
		book:        book,
		tracker:     tracker.New(s.progress, s.indicators, userID, bookID, page, s.cfg.Tracker),
		lastTouched: time.Now(),
	}

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	return &ViewInfo{
		ViewID:      v.id,
		Book:        book,
		CurrentPage: page,
		TotalPages:  book.TotalPages,
	}, nil
}

// TurnPage records a page turn on an open view. Pages outside the book's
// range are rejected here so the tracker only ever sees valid pages.
func (s *Service) TurnPage(userID uint, viewID string, page int) (tracker.State, error) {
	v, err := s.lookup(userID, viewID)
	if err != nil {
		return tracker.State{}, err
	}

	if page < 1 || (v.book.TotalPages > 0 && page > v.book.TotalPages) {
		return tracker.State{}, ErrPageOutOfRange
	}

	v.tracker.OnPageChange(page)
	return v.tracker.Snapshot(), nil
}

// Status returns the tracker snapshot for an open view.
func (s *Service) Status(userID uint, viewID string) (tracker.State, error) {
	v, err := s.lookup(userID, viewID)
	if err != nil {
		return tracker.State{}, err
	}
	return v.tracker.Snapshot(), nil
}

// CloseView tears an open view down. The tracker's pending save, if any, is
// cancelled rather than flushed.
func (s *Service) CloseView(userID uint, viewID string) error {
	s.mu.Lock()
	v, ok := s.views[viewID]
	if ok && v.userID == userID {
		delete(s.views, viewID)
	} else {
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return ErrViewNotFound
	}
	v.tracker.Close()
	return nil
}

// OpenCount reports how many views are currently registered.
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Close stops the janitor and closes every remaining view.
func (s *Service) Close() {
	close(s.stopJanitor)
	<-s.janitorDone

	s.mu.Lock()
	views := s.views
	s.views = make(map[string]*view)
	s.mu.Unlock()

	for _, v := range views {
		v.tracker.Close()
	}
}

func (s *Service) lookup(userID uint, viewID string) (*view, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewID]
	if !ok || v.userID != userID {
		return nil, ErrViewNotFound
	}
	v.lastTouched = time.Now()
	return v, nil
}

func (s *Service) janitor() {
	defer close(s.janitorDone)

	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopJanitor:
			return
		case <-ticker.C:
			s.expireIdle(time.Now())
		}
	}
}

// expireIdle closes views untouched for longer than the TTL. Expiry behaves
// like an abandoned browser tab: the tracker is closed without a flush.
func (s *Service) expireIdle(now time.Time) {
	s.mu.Lock()
	var expired []*view
	for id, v := range s.views {
		if now.Sub(v.lastTouched) > s.cfg.ViewTTL {
			delete(s.views, id)
			expired = append(expired, v)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		v.tracker.Close()
		log.Printf("Expired idle reader view %s (user=%d book=%d)", v.id, v.userID, v.book.ID)
	}
}

func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages > 0 && page > totalPages {
		return totalPages
	}
	return page
}
