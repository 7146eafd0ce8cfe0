package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuttab/kuttab/internal/database"
	"github.com/kuttab/kuttab/internal/database/bookmarks"
	"github.com/kuttab/kuttab/internal/database/books"
	"github.com/kuttab/kuttab/internal/database/notes"
	"github.com/kuttab/kuttab/internal/database/sessions"
	"github.com/kuttab/kuttab/internal/entities"
	"github.com/kuttab/kuttab/internal/reader"
)

type combinedIndicators struct {
	bookmarks *bookmarks.Repository
	notes     *notes.Repository
}

func (i *combinedIndicators) HasBookmarkOnPage(userID, bookID uint, page int) (bool, error) {
	return i.bookmarks.HasBookmarkOnPage(userID, bookID, page)
}

func (i *combinedIndicators) HasNotesOnPage(userID, bookID uint, page int) (bool, error) {
	return i.notes.HasNotesOnPage(userID, bookID, page)
}

func newReaderRouter(t *testing.T, db *database.Database, userID uint) (*gin.Engine, *reader.Service) {
	t.Helper()

	sessionRepo := sessions.NewRepository(db.DB)
	indicators := &combinedIndicators{
		bookmarks: bookmarks.NewRepository(db.DB),
		notes:     notes.NewRepository(db.DB),
	}
	views := reader.NewService(books.NewRepository(db.DB), sessionRepo, sessionRepo, indicators, reader.Config{})
	t.Cleanup(views.Close)

	controller := NewReaderController(views)

	router := gin.New()
	router.Use(authAs(userID))
	router.POST("/api/books/:id/view", controller.OpenView)
	router.POST("/api/reader/:viewID/page", controller.TurnPage)
	router.GET("/api/reader/:viewID/status", controller.ViewStatus)
	router.DELETE("/api/reader/:viewID", controller.CloseView)
	return router, views
}

func openTestView(t *testing.T, router *gin.Engine, bookID string) reader.ViewInfo {
	t.Helper()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/books/"+bookID+"/view", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var info reader.ViewInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	return info
}

func TestReaderController_OpenView(t *testing.T) {
	t.Run("opens a view at page one", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, books.NewRepository(db.DB).Create(&entities.Book{
			UserID: 1, Title: "Al-Muqaddimah", TotalPages: 424,
		}))

		router, _ := newReaderRouter(t, db, 1)
		info := openTestView(t, router, "1")

		assert.NotEmpty(t, info.ViewID)
		assert.Equal(t, 1, info.CurrentPage)
		assert.Equal(t, 424, info.TotalPages)
	})

	t.Run("returns 404 for an unknown book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router, _ := newReaderRouter(t, db, 1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/99/view", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReaderController_TurnPage(t *testing.T) {
	t.Run("records a page turn and reports the new state", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, books.NewRepository(db.DB).Create(&entities.Book{
			UserID: 1, Title: "Al-Muqaddimah", TotalPages: 424,
		}))

		router, _ := newReaderRouter(t, db, 1)
		info := openTestView(t, router, "1")

		w := postJSON(t, router, "/api/reader/"+info.ViewID+"/page", gin.H{"page": 7})
		assert.Equal(t, http.StatusOK, w.Code)

		var state map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.Equal(t, float64(7), state["current_page"])
	})

	t.Run("rejects a page beyond the book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		require.NoError(t, books.NewRepository(db.DB).Create(&entities.Book{
			UserID: 1, Title: "Short", TotalPages: 10,
		}))

		router, _ := newReaderRouter(t, db, 1)
		info := openTestView(t, router, "1")

		w := postJSON(t, router, "/api/reader/"+info.ViewID+"/page", gin.H{"page": 999})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for an unknown view", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router, _ := newReaderRouter(t, db, 1)

		w := postJSON(t, router, "/api/reader/no-such-view/page", gin.H{"page": 2})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReaderController_CloseView(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, books.NewRepository(db.DB).Create(&entities.Book{
		UserID: 1, Title: "Al-Muqaddimah", TotalPages: 424,
	}))

	router, _ := newReaderRouter(t, db, 1)
	info := openTestView(t, router, "1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/reader/"+info.ViewID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The view is gone afterwards
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/reader/"+info.ViewID+"/status", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
