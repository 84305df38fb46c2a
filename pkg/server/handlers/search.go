// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexquery/lexquery/pkg/search"
	"github.com/lexquery/lexquery/pkg/server/dto"
	"github.com/lexquery/lexquery/pkg/types"
)

const defaultK = 3

// Searcher is the retrieval surface the API exposes.
type Searcher interface {
	Search(ctx context.Context, q types.Query) (*search.Response, error)
}

// SearchHandler handles retrieval requests.
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// Search handles POST /search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if req.K <= 0 {
		req.K = defaultK
	}

	resp, err := h.searcher.Search(c.Request.Context(), types.Query{
		Text:      req.Query,
		Court:     req.Court,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		K:         req.K,
	})
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Results:  resp.Results,
		Partial:  resp.Partial,
		Failures: resp.Failures,
	})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "validation_failed"
	}
	var berr *types.BackendUnavailableError
	if errors.As(err, &berr) {
		return http.StatusServiceUnavailable, "backends_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
