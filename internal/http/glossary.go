package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type GlossaryController struct {
	glossary GlossaryStore
	books    BookStore
}

func NewGlossaryController(glossary GlossaryStore, books BookStore) *GlossaryController {
	return &GlossaryController{glossary: glossary, books: books}
}

func (controller *GlossaryController) ListTerms(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	terms, err := controller.glossary.ListForBook(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "list glossary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"terms": terms, "count": len(terms)})
}

func (controller *GlossaryController) SearchTerms(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	terms, err := controller.glossary.Search(GetUserID(c), q)
	if err != nil {
		respondInternalError(c, err, "search glossary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"terms": terms, "count": len(terms)})
}

type glossaryRequest struct {
	Word       string `json:"word" binding:"required"`
	Definition string `json:"definition" binding:"required"`
}

func (controller *GlossaryController) CreateTerm(c *gin.Context) {
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

	var req glossaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid glossary payload: "+err.Error())
		return
	}

	term := &entities.GlossaryTerm{
		UserID:     userID,
		BookID:     bookID,
		Word:       req.Word,
		Definition: req.Definition,
	}
	if err := controller.glossary.Create(term); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, term)
}

func (controller *GlossaryController) UpdateTerm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req glossaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid glossary payload: "+err.Error())
		return
	}

	term := &entities.GlossaryTerm{ID: id, Word: req.Word, Definition: req.Definition}
	if err := controller.glossary.Update(userID, term); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "glossary term")
			return
		}
		respondInternalError(c, err, "update glossary term")
		return
	}
	c.JSON(http.StatusOK, term)
}

func (controller *GlossaryController) DeleteTerm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.glossary.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "glossary term")
			return
		}
		respondInternalError(c, err, "delete glossary term")
		return
	}
	respondSuccess(c, "glossary term deleted")
}
