package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type ResourcesController struct {
	resources ResourceStore
	books     BookStore
}

func NewResourcesController(resources ResourceStore, books BookStore) *ResourcesController {
	return &ResourcesController{resources: resources, books: books}
}

func (controller *ResourcesController) ListResources(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resources, err := controller.resources.ListForBook(GetUserID(c), bookID, entities.ResourceType(c.Query("type")))
	if err != nil {
		respondInternalError(c, err, "list resources")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources, "count": len(resources)})
}

type resourceRequest struct {
	Type        entities.ResourceType `json:"type"`
	Title       string                `json:"title" binding:"required"`
	URL         string                `json:"url" binding:"required"`
	Description string                `json:"description"`
}

func (controller *ResourcesController) CreateResource(c *gin.Context) {
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

	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid resource payload: "+err.Error())
		return
	}

	resource := &entities.Resource{
		UserID:      userID,
		BookID:      bookID,
		Type:        req.Type,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := controller.resources.Create(resource); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, resource)
}

func (controller *ResourcesController) UpdateResource(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid resource payload: "+err.Error())
		return
	}

	resource := &entities.Resource{
		ID:          id,
		Type:        req.Type,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := controller.resources.Update(userID, resource); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "resource")
			return
		}
		respondInternalError(c, err, "update resource")
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (controller *ResourcesController) DeleteResource(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.resources.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "resource")
			return
		}
		respondInternalError(c, err, "delete resource")
		return
	}
	respondSuccess(c, "resource deleted")
}
