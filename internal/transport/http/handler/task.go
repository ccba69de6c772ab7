package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/app"
	"taskmanager/internal/model"
	"taskmanager/internal/pkg/metrics"
	"taskmanager/internal/transport/http/middleware"
	"taskmanager/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewTaskHandler(taskService *app.TaskService, m *metrics.Metrics, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		metrics:     m,
		logger:      logger,
	}
}

func (h *TaskHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	tasks, err := h.taskService.List(c.Request.Context(), user.ID, c.Query("status"))
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	h.metrics.TaskOperation("list", metrics.ResultOK)
	response.JSON(c, http.StatusOK, model.ToResponses(tasks))
}

func (h *TaskHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	taskID, ok := taskIDParam(c)
	if !ok {
		h.fail(c, "get", app.ErrTaskNotFound)
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), user.ID, taskID)
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	h.metrics.TaskOperation("get", metrics.ResultOK)
	response.JSON(c, http.StatusOK, task.ToResponse())
}

func (h *TaskHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var fields taskFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.fail(c, "create", app.ErrInvalidPayload)
		return
	}
	input, err := fields.createInput()
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	h.metrics.TaskOperation("create", metrics.ResultOK)
	h.logger.Info("task created", slog.Uint64("user_id", uint64(user.ID)), slog.Uint64("task_id", uint64(task.ID)))
	response.JSON(c, http.StatusCreated, task.ToResponse())
}

func (h *TaskHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	taskID, ok := taskIDParam(c)
	if !ok {
		h.fail(c, "update", app.ErrTaskNotFound)
		return
	}

	var fields taskFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.fail(c, "update", app.ErrInvalidPayload)
		return
	}
	input, err := fields.updateInput()
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), user.ID, taskID, input)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	h.metrics.TaskOperation("update", metrics.ResultOK)
	response.JSON(c, http.StatusOK, task.ToResponse())
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	taskID, ok := taskIDParam(c)
	if !ok {
		h.fail(c, "delete", app.ErrTaskNotFound)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		h.fail(c, "delete", err)
		return
	}
	h.metrics.TaskOperation("delete", metrics.ResultOK)
	h.logger.Info("task deleted", slog.Uint64("user_id", uint64(user.ID)), slog.Uint64("task_id", uint64(taskID)))
	response.Message(c, http.StatusOK, response.MsgTaskDeleted)
}

// fail maps a domain error onto the API error body.
func (h *TaskHandler) fail(c *gin.Context, op string, err error) {
	if ve, ok := app.IsValidation(err); ok {
		h.metrics.TaskOperation(op, metrics.ResultInvalid)
		response.Error(c, http.StatusBadRequest, ve.Message)
		return
	}
	if errors.Is(err, app.ErrTaskNotFound) {
		h.metrics.TaskOperation(op, metrics.ResultMissing)
		response.Error(c, http.StatusNotFound, response.MsgTaskNotFound)
		return
	}

	h.metrics.TaskOperation(op, metrics.ResultError)
	h.logger.Error("task operation failed", slog.String("op", op), slog.String("error", err.Error()))
	response.Error(c, http.StatusInternalServerError, response.MsgInternalServer)
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
