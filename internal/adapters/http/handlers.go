package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aduanatrack/core/internal/application/projections"
	"github.com/aduanatrack/core/internal/application/services"
	"github.com/aduanatrack/core/internal/domain/entities"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
	"github.com/aduanatrack/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the full task collection
func (h *TaskHandler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.taskService.Snapshot())
}

// CreateTask handles task creation. Task fields are deliberately not
// validated here: the tracker has always accepted partial task records.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tasks, err := h.taskService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task")
	}

	return c.JSON(http.StatusCreated, tasks)
}

// UpdateTask handles a partial task update
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	taskID := c.Param("id")

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tasks, err := h.taskService.Update(c.Request().Context(), taskID, req)
	if errors.Is(err, entities.ErrTaskNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	if err != nil {
		h.logger.Errorw("Update task failed", "error", err, "task_id", taskID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	return c.JSON(http.StatusOK, tasks)
}

// AttachFile handles a multipart file upload onto a task
func (h *TaskHandler) AttachFile(c echo.Context) error {
	taskID := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorw("Open uploaded file failed", "error", err, "file", fileHeader.Filename)
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	tasks, err := h.taskService.AttachFile(c.Request().Context(), taskID, src, fileHeader.Filename, mimeType)
	if errors.Is(err, entities.ErrTaskNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	if err != nil {
		h.logger.Errorw("Attach file failed", "error", err, "task_id", taskID, "file", fileHeader.Filename)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to attach file")
	}

	return c.JSON(http.StatusOK, tasks)
}

// DashboardHandler serves the derived dashboard and calendar views
type DashboardHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(taskService *services.TaskService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// DashboardResponse aggregates the dashboard projections
type DashboardResponse struct {
	Counts          projections.Counts          `json:"counts"`
	TotalInvestment float64                     `json:"totalInvestment"`
	Distribution    []projections.LocationCount `json:"distribution"`
	RecentActivity  []entities.Task             `json:"recentActivity"`
}

// GetDashboard recomputes all dashboard projections from the current
// collection snapshot.
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	tasks := h.taskService.Snapshot()

	return c.JSON(http.StatusOK, DashboardResponse{
		Counts:          projections.CountByStatus(tasks),
		TotalInvestment: projections.TotalInvestment(tasks),
		Distribution:    projections.DistributionByLocation(tasks, entities.SeedLocations()),
		RecentActivity:  projections.RecentActivity(tasks, 5),
	})
}

// GetCalendarDay returns the tasks scheduled to start on an exact day
func (h *DashboardHandler) GetCalendarDay(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid month")
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > 31 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid day")
	}

	bucket := projections.CalendarBucket(h.taskService.Snapshot(), day, month, year)
	if bucket == nil {
		bucket = []entities.Task{}
	}
	return c.JSON(http.StatusOK, bucket)
}

// AdviceHandler handles maintenance-advice requests
type AdviceHandler struct {
	adviceService *services.AdviceService
	logger        *logger.Logger
}

// NewAdviceHandler creates a new advice handler
func NewAdviceHandler(adviceService *services.AdviceService, logger *logger.Logger) *AdviceHandler {
	return &AdviceHandler{
		adviceService: adviceService,
		logger:        logger,
	}
}

// AdviceRequest asks for advice on one task description
type AdviceRequest struct {
	Description string `json:"description" validate:"required"`
}

// AdviceResponse carries the advice or the degraded "unavailable" outcome
type AdviceResponse struct {
	Available bool     `json:"available"`
	Steps     []string `json:"steps,omitempty"`
	Tools     []string `json:"tools,omitempty"`
}

// RequestAdvice asks the collaborator for safety steps and tools. Any
// failure, including a missing credential, degrades to available=false;
// the endpoint never fails because the collaborator did.
func (h *AdviceHandler) RequestAdvice(c echo.Context) error {
	var req AdviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	advice, err := h.adviceService.GetMaintenanceAdvice(c.Request().Context(), req.Description)
	if errors.Is(err, entities.ErrAdviceUnavailable) {
		return c.JSON(http.StatusOK, AdviceResponse{Available: false})
	}
	if err != nil {
		h.logger.Errorw("Advice request failed", "error", err)
		return c.JSON(http.StatusOK, AdviceResponse{Available: false})
	}

	return c.JSON(http.StatusOK, AdviceResponse{
		Available: true,
		Steps:     advice.Steps,
		Tools:     advice.Tools,
	})
}

// Request/Response helper types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
