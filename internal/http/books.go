package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type BooksController struct {
	books      BookStore
	notes      NoteStore
	bookmarks  BookmarkStore
	glossary   GlossaryStore
	resources  ResourceStore
	goals      GoalStore
	sessions   SessionStore
	recordings RecordingStore
	blobs      BlobStore
}

func NewBooksController(books BookStore, notes NoteStore, bookmarks BookmarkStore, glossary GlossaryStore, resources ResourceStore, goals GoalStore, sessions SessionStore, recordings RecordingStore, blobs BlobStore) *BooksController {
	return &BooksController{
		books:      books,
		notes:      notes,
		bookmarks:  bookmarks,
		glossary:   glossary,
		resources:  resources,
		goals:      goals,
		sessions:   sessions,
		recordings: recordings,
		blobs:      blobs,
	}
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	userID := GetUserID(c)

	if q := c.Query("q"); q != "" {
		books, err := controller.books.Search(userID, q)
		if err != nil {
			respondInternalError(c, err, "search books")
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
		return
	}

	books, err := controller.books.ListForUser(userID, c.Query("category"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.GetByID(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) ListCategories(c *gin.Context) {
	categories, err := controller.books.Categories(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type bookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Description string `json:"description"`
	PDFURL      string `json:"pdf_url"`
	TotalPages  int    `json:"total_pages"`
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if req.TotalPages < 0 {
		respondBadRequest(c, "total_pages must not be negative")
		return
	}

	book := &entities.Book{
		UserID:      GetUserID(c),
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Description: req.Description,
		PDFURL:      req.PDFURL,
		TotalPages:  req.TotalPages,
	}
	if err := controller.books.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := controller.books.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if req.TotalPages < 0 {
		respondBadRequest(c, "total_pages must not be negative")
		return
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Category = req.Category
	book.Description = req.Description
	book.PDFURL = req.PDFURL
	book.TotalPages = req.TotalPages

	if err := controller.books.Update(userID, book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book and everything hanging off it: notes, bookmarks,
// glossary terms, resources, goals, reading sessions, voice recordings, and
// the stored PDF and audio blobs.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := controller.books.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	// Dependents first, the book row last, so a failure part-way leaves the
	// book visible rather than orphaning its data
	deletions := []struct {
		name string
		fn   func(bookID uint) error
	}{
		{"notes", controller.notes.DeleteForBook},
		{"bookmarks", controller.bookmarks.DeleteForBook},
		{"glossary", controller.glossary.DeleteForBook},
		{"resources", controller.resources.DeleteForBook},
		{"goals", controller.goals.DeleteForBook},
		{"sessions", controller.sessions.DeleteForBook},
	}
	for _, d := range deletions {
		if err := d.fn(id); err != nil {
			respondInternalError(c, err, "delete book "+d.name)
			return
		}
	}

	recordings, err := controller.recordings.DeleteForBook(id)
	if err != nil {
		respondInternalError(c, err, "delete book recordings")
		return
	}

	if err := controller.books.Delete(userID, id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	// Blob cleanup is best effort; orphans are swept by the maintenance task
	controller.deleteBlob(c.Request.Context(), book.PDFURL)
	for _, recording := range recordings {
		controller.deleteBlob(c.Request.Context(), recording.AudioURL)
	}

	respondSuccess(c, "book deleted")
}

func (controller *BooksController) deleteBlob(ctx context.Context, publicURL string) {
	if controller.blobs == nil || publicURL == "" {
		return
	}
	path := controller.blobs.StoragePath(publicURL)
	if path == "" {
		return
	}
	if err := controller.blobs.Delete(ctx, path); err != nil {
		log.Printf("Failed to delete blob %s: %v", path, err)
	}
}

// DashboardStats summarizes the user's library and reading activity.
func (controller *BooksController) DashboardStats(c *gin.Context) {
	userID := GetUserID(c)

	totalBooks, err := controller.books.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count books")
		return
	}
	totalNotes, err := controller.notes.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count notes")
		return
	}
	totalMinutes, err := controller.sessions.TotalDurationForUser(userID)
	if err != nil {
		respondInternalError(c, err, "sum reading time")
		return
	}
	completedGoals, err := controller.goals.CountCompletedForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count completed goals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_books":           totalBooks,
		"total_notes":           totalNotes,
		"total_reading_minutes": totalMinutes,
		"completed_goals":       completedGoals,
	})
}
