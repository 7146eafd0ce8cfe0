package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type BookmarksController struct {
	bookmarks BookmarkStore
	books     BookStore
}

func NewBookmarksController(bookmarks BookmarkStore, books BookStore) *BookmarksController {
	return &BookmarksController{bookmarks: bookmarks, books: books}
}

func (controller *BookmarksController) ListBookmarks(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookmarks, err := controller.bookmarks.ListForBook(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks, "count": len(bookmarks)})
}

// ListByTag returns the user's bookmarks across all books carrying a tag.
func (controller *BookmarksController) ListByTag(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		respondBadRequest(c, "tag query parameter is required")
		return
	}

	bookmarks, err := controller.bookmarks.ListForUserByTag(GetUserID(c), tag)
	if err != nil {
		respondInternalError(c, err, "list bookmarks by tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks, "count": len(bookmarks)})
}

type bookmarkRequest struct {
	PageNumber int      `json:"page_number" binding:"required"`
	Tags       []string `json:"tags"`
}

func (controller *BookmarksController) CreateBookmark(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := controller.books.GetByID(userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid bookmark payload: "+err.Error())
		return
	}
	if book.TotalPages > 0 && req.PageNumber > book.TotalPages {
		respondBadRequest(c, "page out of range")
		return
	}

	bookmark := &entities.Bookmark{
		UserID:     userID,
		BookID:     bookID,
		PageNumber: req.PageNumber,
		Tags:       req.Tags,
	}
	if err := controller.bookmarks.Create(bookmark); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, bookmark)
}

type bookmarkUpdateRequest struct {
	Tags []string `json:"tags"`
}

func (controller *BookmarksController) UpdateBookmark(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req bookmarkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid bookmark payload: "+err.Error())
		return
	}

	bookmark, err := controller.bookmarks.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "get bookmark")
		return
	}

	bookmark.Tags = req.Tags
	if err := controller.bookmarks.Update(userID, bookmark); err != nil {
		respondInternalError(c, err, "update bookmark")
		return
	}
	c.JSON(http.StatusOK, bookmark)
}

func (controller *BookmarksController) DeleteBookmark(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.bookmarks.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "delete bookmark")
		return
	}
	respondSuccess(c, "bookmark deleted")
}
