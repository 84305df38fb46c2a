package search

import (
	"fmt"
	"time"

	"github.com/lexquery/lexquery/pkg/graph"
	"github.com/lexquery/lexquery/pkg/types"
	"github.com/lexquery/lexquery/pkg/vector"
)

// Filters is the logical, backend-neutral filter of one query.
type Filters struct {
	Court     string
	StartDate string
	EndDate   string
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f.Court == "" && f.StartDate == "" && f.EndDate == ""
}

// Translate converts the logical filter into the two store-specific
// predicates. The backends differ on court matching: the vector store
// compares exactly and case-sensitively against its metadata, the
// graph compares case-insensitively against the Court node name. That
// is each store's native comparison semantics and is not papered over
// here.
//
// Malformed or inverted dates fail with a ValidationError before any
// backend sees the query. When no field is set, both predicates are
// nil and the full corpus is eligible.
func (f Filters) Translate() (*vector.Predicate, *graph.CasePredicate, error) {
	if err := validateDate("start_date", f.StartDate); err != nil {
		return nil, nil, err
	}
	if err := validateDate("end_date", f.EndDate); err != nil {
		return nil, nil, err
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return nil, nil, types.NewValidationError("start_date",
			fmt.Sprintf("start date %s is after end date %s", f.StartDate, f.EndDate))
	}

	if f.IsZero() {
		return nil, nil, nil
	}

	vp := &vector.Predicate{
		Court:    f.Court,
		DateFrom: f.StartDate,
		DateTo:   f.EndDate,
	}
	gp := &graph.CasePredicate{
		Court:    f.Court,
		DateFrom: f.StartDate,
		DateTo:   f.EndDate,
	}
	return vp, gp, nil
}

// validateDate accepts the empty string (unbounded) or a strict
// YYYY-MM-DD date. The canonical form is what makes lexical range
// comparisons agree with chronological order downstream.
func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return types.NewValidationError(field, fmt.Sprintf("%q is not a YYYY-MM-DD date", value))
	}
	if parsed.Format("2006-01-02") != value {
		return types.NewValidationError(field, fmt.Sprintf("%q is not in canonical YYYY-MM-DD form", value))
	}
	return nil
}
