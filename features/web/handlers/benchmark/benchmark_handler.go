package benchmark

import (
	"errors"
	"net/http"

	"sozblock/features/sorting"
	"sozblock/features/web/handlers/response"

	"github.com/labstack/echo/v4"
)

type BenchmarkInput struct {
	URL        string `json:"url"`
	Iterations int    `json:"iterations" validate:"omitempty,min=1,max=1000"`
}

type BenchmarkHandler struct {
	service *sorting.Service
}

func NewBenchmarkHandler(service *sorting.Service) *BenchmarkHandler {
	return &BenchmarkHandler{service: service}
}

// Compare times every registered sort strategy over one page's records so
// slow comparators show up before they reach users.
func (h *BenchmarkHandler) Compare(c echo.Context) error {
	req := &BenchmarkInput{}
	if err := c.Bind(req); err != nil {
		return response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	results, records, err := h.service.Benchmark(c.Request().Context(), req.URL, req.Iterations)
	if err != nil {
		if errors.Is(err, sorting.ErrForeignHost) {
			return response.BadRequest(c, err.Error())
		}
		return response.Error(c, http.StatusBadGateway, err.Error())
	}

	return response.Success(c, map[string]any{
		"records":    records,
		"strategies": results,
	})
}
