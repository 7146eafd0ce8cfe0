package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/kuttab/kuttab/internal/tasks"
)

// TasksController exposes the maintenance task queue for manual runs.
type TasksController struct {
	client *tasks.Client
}

func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ListTaskTypes returns the task types that can be triggered by hand.
func (controller *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "prune_sessions",
			Description: "Remove superseded reading session history",
		},
		{
			Type:        "complete_goals",
			Description: "Mark reading goals whose books are finished as completed",
		},
		{
			Type:        "cleanup_blobs",
			Description: "Delete stored files no database row references",
		},
	}

	c.JSON(http.StatusOK, gin.H{"task_types": types})
}

// GetTaskStatus returns the status of a previously enqueued task.
func (controller *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := controller.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTask enqueues a maintenance task of the given type.
func (controller *TasksController) RunTask(c *gin.Context) {
	var task backlite.Task
	switch taskType := c.Param("type"); taskType {
	case "prune_sessions":
		task = tasks.PruneSessionsTask{}
	case "complete_goals":
		task = tasks.CompleteGoalsTask{}
	case "cleanup_blobs":
		task = tasks.CleanupBlobsTask{}
	default:
		respondBadRequest(c, "unknown task type: "+taskType)
		return
	}

	ids, err := controller.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    c.Param("type"),
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
