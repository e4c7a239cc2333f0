package sort

import (
	"errors"
	"net/http"

	"sozblock/features/sorting"
	"sozblock/features/web/handlers/response"

	"github.com/labstack/echo/v4"
)

type SortHandler struct {
	service *sorting.Service
}

func NewSortHandler(service *sorting.Service) *SortHandler {
	return &SortHandler{service: service}
}

// Sort fetches a listing page and returns its entries in the requested
// order.
func (h *SortHandler) Sort(c echo.Context) error {
	req := &SortInput{}
	if err := c.Bind(req); err != nil {
		return response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	direction, err := sorting.ParseDirection(req.Direction)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	page, err := h.service.Sort(c.Request().Context(), sorting.SortRequest{
		URL:       req.URL,
		Strategy:  req.Strategy,
		Direction: direction,
	})
	if err != nil {
		switch {
		case errors.Is(err, sorting.ErrUnknownStrategy), errors.Is(err, sorting.ErrForeignHost):
			return response.BadRequest(c, err.Error())
		default:
			// Anything left is the forum failing to serve the page.
			return response.Error(c, http.StatusBadGateway, err.Error())
		}
	}

	return response.Success(c, NewSortPayload(page))
}

// Undo restores the order the last sort replaced.
func (h *SortHandler) Undo(c echo.Context) error {
	return response.Success(c, map[string]any{"undone": h.service.UndoSort()})
}

// Strategies lists the sort catalogue for UI menus.
func (h *SortHandler) Strategies(c echo.Context) error {
	return response.Success(c, h.service.Strategies())
}
