package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type NotesController struct {
	notes NoteStore
	books BookStore
}

func NewNotesController(notes NoteStore, books BookStore) *NotesController {
	return &NotesController{notes: notes, books: books}
}

// ListNotes returns a book's notes; with ?page=N only the notes pinned to
// that page.
func (controller *NotesController) ListNotes(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			respondBadRequest(c, "invalid page")
			return
		}
		notes, err := controller.notes.ListForPage(userID, bookID, page)
		if err != nil {
			respondInternalError(c, err, "list notes for page")
			return
		}
		c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
		return
	}

	notes, err := controller.notes.ListForBook(userID, bookID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

type noteRequest struct {
	PageNumber int                     `json:"page_number" binding:"required"`
	Title      string                  `json:"title"`
	Content    string                  `json:"content" binding:"required"`
	Formatting entities.NoteFormatting `json:"formatting"`
}

func (controller *NotesController) CreateNote(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	if _, err := controller.books.GetByID(userID, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid note payload: "+err.Error())
		return
	}

	note := &entities.Note{
		UserID:     userID,
		BookID:     bookID,
		PageNumber: req.PageNumber,
		Title:      req.Title,
		Content:    req.Content,
		Formatting: req.Formatting,
	}
	if err := controller.notes.Create(note); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, note)
}

func (controller *NotesController) UpdateNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	note, err := controller.notes.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "get note")
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid note payload: "+err.Error())
		return
	}

	note.PageNumber = req.PageNumber
	note.Title = req.Title
	note.Content = req.Content
	note.Formatting = req.Formatting

	if err := controller.notes.Update(userID, note); err != nil {
		respondInternalError(c, err, "update note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func (controller *NotesController) DeleteNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.notes.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "delete note")
		return
	}
	respondSuccess(c, "note deleted")
}
