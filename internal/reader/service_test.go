package reader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
	"github.com/kuttab/kuttab/internal/tracker"
)

type stubBooks struct {
	book *entities.Book
}

func (s *stubBooks) GetByID(userID, id uint) (*entities.Book, error) {
	if s.book == nil || s.book.ID != id || s.book.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.book, nil
}

type stubSessions struct {
	session *entities.ReadingSession
}

func (s *stubSessions) LatestForBook(_ context.Context, _, _ uint) (*entities.ReadingSession, error) {
	return s.session, nil
}

type recordingStore struct {
	mu    sync.Mutex
	pages []int
}

func (r *recordingStore) SaveProgress(_ context.Context, _, _ uint, page int, _ float64, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, page)
	return nil
}

func (r *recordingStore) savedPages() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pages...)
}

func newTestService(t *testing.T, book *entities.Book, session *entities.ReadingSession) (*Service, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	svc := NewService(&stubBooks{book: book}, &stubSessions{session: session}, store, nil, Config{
		ViewTTL:         time.Hour,
		JanitorInterval: time.Hour,
		Tracker:         tracker.Config{DebounceInterval: 5 * time.Millisecond, SavedDisplay: 10 * time.Millisecond},
	})
	t.Cleanup(svc.Close)
	return svc, store
}

func testBook() *entities.Book {
	return &entities.Book{ID: 10, UserID: 1, Title: "Al-Muqaddimah", TotalPages: 50}
}

func TestService_OpenView_StartsAtPageOneWithoutSession(t *testing.T) {
	svc, _ := newTestService(t, testBook(), nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ViewID)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 50, info.TotalPages)
	assert.Equal(t, 1, svc.OpenCount())
}

func TestService_OpenView_ResumesFromSession(t *testing.T) {
	svc, _ := newTestService(t, testBook(), &entities.ReadingSession{UserID: 1, BookID: 10, CurrentPage: 23})

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 23, info.CurrentPage)
}

func TestService_OpenView_ClampsStoredPageIntoRange(t *testing.T) {
	// The stored page can exceed the page count if the PDF was re-uploaded
	// with fewer pages
	svc, _ := newTestService(t, testBook(), &entities.ReadingSession{UserID: 1, BookID: 10, CurrentPage: 400})

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, info.CurrentPage)
}

func TestService_OpenView_UnknownBook(t *testing.T) {
	svc, _ := newTestService(t, testBook(), nil)

	_, err := svc.OpenView(context.Background(), 1, 999)
	assert.Error(t, err)

	_, err = svc.OpenView(context.Background(), 2, 10)
	assert.Error(t, err, "someone else's book behaves like a missing one")
}

func TestService_TurnPage_RejectsOutOfRange(t *testing.T) {
	svc, store := newTestService(t, testBook(), nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.TurnPage(1, info.ViewID, 999)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = svc.TurnPage(1, info.ViewID, 0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	// Nothing invalid ever reaches the store
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.savedPages())
}

func TestService_TurnPage_PersistsThroughTracker(t *testing.T) {
	svc, store := newTestService(t, testBook(), nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	state, err := svc.TurnPage(1, info.ViewID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, state.CurrentPage, "page updates before the save lands")

	require.Eventually(t, func() bool {
		pages := store.savedPages()
		return len(pages) == 1 && pages[0] == 7
	}, 2*time.Second, time.Millisecond)
}

func TestService_TurnPage_UnknownPageCountSkipsUpperBound(t *testing.T) {
	book := testBook()
	book.TotalPages = 0
	svc, _ := newTestService(t, book, nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.TurnPage(1, info.ViewID, 5000)
	assert.NoError(t, err)
}

func TestService_ViewIsScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t, testBook(), nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.Status(2, info.ViewID)
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = svc.TurnPage(2, info.ViewID, 5)
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.ErrorIs(t, svc.CloseView(2, info.ViewID), ErrViewNotFound)
}

func TestService_CloseView_DropsPendingSave(t *testing.T) {
	store := &recordingStore{}
	// A long debounce keeps the save pending until after the close
	svc := NewService(&stubBooks{book: testBook()}, &stubSessions{}, store, nil, Config{
		ViewTTL:         time.Hour,
		JanitorInterval: time.Hour,
		Tracker:         tracker.Config{DebounceInterval: time.Hour},
	})
	defer svc.Close()

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = svc.TurnPage(1, info.ViewID, 9)
	require.NoError(t, err)
	require.NoError(t, svc.CloseView(1, info.ViewID))

	_, err = svc.Status(1, info.ViewID)
	assert.ErrorIs(t, err, ErrViewNotFound)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.savedPages())
	assert.Zero(t, svc.OpenCount())
}

func TestService_ExpireIdle(t *testing.T) {
	svc, _ := newTestService(t, testBook(), nil)

	info, err := svc.OpenView(context.Background(), 1, 10)
	require.NoError(t, err)

	// Not yet past the TTL
	svc.expireIdle(time.Now().Add(30 * time.Minute))
	assert.Equal(t, 1, svc.OpenCount())

	svc.expireIdle(time.Now().Add(2 * time.Hour))
	assert.Zero(t, svc.OpenCount())

	_, err = svc.Status(1, info.ViewID)
	assert.ErrorIs(t, err, ErrViewNotFound)
}
