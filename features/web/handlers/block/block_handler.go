package block

import (
	"errors"
	"net/http"
	"strconv"

	"sozblock/features/blocker"
	"sozblock/features/blocker/repository"
	"sozblock/features/web/handlers/response"

	"github.com/labstack/echo/v4"
)

type BlockHandler struct {
	service *blocker.Service
}

func NewBlockHandler(service *blocker.Service) *BlockHandler {
	return &BlockHandler{service: service}
}

// Start launches a blocking run over the favoriters of one entry. The run
// proceeds in the background; the response carries the id to follow it.
func (h *BlockHandler) Start(c echo.Context) error {
	req := &StartInput{}
	if err := c.Bind(req); err != nil {
		return response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if req.Mode != "" {
		if err := h.service.SetDefaultMode(req.Mode); err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	runID, err := h.service.Start(c.Request().Context(), req.EntryID)
	if err != nil {
		switch {
		case errors.Is(err, blocker.ErrRunInProgress):
			return response.Conflict(c, "Another blocking run is already in progress. Cancel it or wait for it to finish.")
		case errors.Is(err, blocker.ErrEmptyEntryID):
			return response.BadRequest(c, err.Error())
		default:
			return response.Error(c, http.StatusInternalServerError, err.Error())
		}
	}

	return response.Accepted(c, map[string]any{
		"run_id":  runID,
		"message": "Blocking started. Use run_id to follow progress.",
	})
}

// Status reports one run: live progress while it is the active run, the
// recorded history row afterwards.
func (h *BlockHandler) Status(c echo.Context) error {
	runID := c.Param("runID")
	if runID == "" {
		return response.BadRequest(c, "runID is required")
	}

	if progress, active := h.service.Progress(); progress != nil && progress.RunID == runID {
		return response.Success(c, StatusPayload{Active: active, Progress: progress})
	}

	run, err := h.service.RunStatus(c.Request().Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return response.NotFound(c, "Run not found", runID)
		}
		return response.Error(c, http.StatusInternalServerError, err.Error())
	}

	return response.Success(c, StatusPayload{Run: run})
}

// Active reports whether a run is in flight and its latest progress.
func (h *BlockHandler) Active(c echo.Context) error {
	progress, active := h.service.Progress()
	return response.Success(c, StatusPayload{Active: active, Progress: progress})
}

// Cancel stops the active run at the next user boundary. The checkpoint
// stays so the run can be resumed later.
func (h *BlockHandler) Cancel(c echo.Context) error {
	return response.Success(c, map[string]any{"cancelled": h.service.Cancel()})
}

// Runs lists recorded run history, newest first.
func (h *BlockHandler) Runs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return response.BadRequest(c, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	runs, err := h.service.History(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, err.Error())
	}

	return response.Success(c, runs)
}

// Mode reports the default action applied to new runs.
func (h *BlockHandler) Mode(c echo.Context) error {
	return response.Success(c, map[string]any{"mode": h.service.Mode()})
}

// SetMode switches the default action for subsequent runs. The active run
// keeps the action it started with.
func (h *BlockHandler) SetMode(c echo.Context) error {
	req := &ModeInput{}
	if err := c.Bind(req); err != nil {
		return response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.service.SetDefaultMode(req.Mode); err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, map[string]any{"mode": h.service.Mode()})
}
