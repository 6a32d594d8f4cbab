package controller

import (
	"errors"
	"net/http"

	apperrors "github.com/getter-shop/getter-backend/internal/errors"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/getter-shop/getter-backend/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// TaskController lets admins trigger maintenance jobs on demand.
type TaskController struct {
	scheduler *scheduler.MaintenanceScheduler
}

func NewTaskController(scheduler *scheduler.MaintenanceScheduler) *TaskController {
	return &TaskController{scheduler: scheduler}
}

// ListTasks returns the runnable task names.
// GET /api/v1/admin/tasks
func (ctrl *TaskController) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": ctrl.scheduler.TaskNames()})
}

// RunTask executes a maintenance job immediately.
// POST /api/v1/admin/tasks/:name
func (ctrl *TaskController) RunTask(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	name := c.Param("name")

	if err := ctrl.scheduler.RunTask(name); err != nil {
		if errors.Is(err, scheduler.ErrTaskNotFound) {
			apperrors.NotFound(c, apperrors.TaskNotFound, "Unknown task: "+name)
			return
		}
		log.Error("Manual task run failed", err, map[string]interface{}{
			"task": name,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.TaskFailed, "Task failed: "+name)
		return
	}

	log.Info("Task run completed", map[string]interface{}{
		"task": name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Task completed",
		"task":    name,
	})
}
