package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

type GoalsController struct {
	goals GoalStore
	books BookStore
}

func NewGoalsController(goals GoalStore, books BookStore) *GoalsController {
	return &GoalsController{goals: goals, books: books}
}

func (controller *GoalsController) ListGoals(c *gin.Context) {
	goals, err := controller.goals.ListForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list goals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
}

// GetBookGoal returns the active goal for a book, or 404 when none is set.
func (controller *GoalsController) GetBookGoal(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	goal, err := controller.goals.LatestForBook(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "get goal")
		return
	}
	if goal == nil {
		respondNotFound(c, "reading goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

type goalRequest struct {
	ExpectedDurationDays   int        `json:"expected_duration_days" binding:"required"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
}

func (controller *GoalsController) CreateGoal(c *gin.Context) {
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

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid goal payload: "+err.Error())
		return
	}

	goal := &entities.ReadingGoal{
		UserID:               userID,
		BookID:               bookID,
		ExpectedDurationDays: req.ExpectedDurationDays,
	}
	if req.ExpectedCompletionDate != nil {
		goal.ExpectedCompletionDate = *req.ExpectedCompletionDate
	}
	if err := controller.goals.Create(goal); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, goal)
}

func (controller *GoalsController) DeleteGoal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.goals.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reading goal")
			return
		}
		respondInternalError(c, err, "delete goal")
		return
	}
	respondSuccess(c, "reading goal deleted")
}
