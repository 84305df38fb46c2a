// Package dto holds the wire types of the HTTP API.
package dto

import "github.com/lexquery/lexquery/pkg/types"

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query     string `json:"query" binding:"required"`
	Court     string `json:"court"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	K         int    `json:"k"`
}

// SearchResponse is the answer to POST /search.
type SearchResponse struct {
	Results  []types.ScoredResult   `json:"results"`
	Partial  bool                   `json:"partial"`
	Failures []types.BackendFailure `json:"failures,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
