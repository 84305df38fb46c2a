package vector

import "github.com/lexquery/lexquery/pkg/types"

// Predicate is the vector-store metadata filter: court is an exact,
// case-sensitive match against the stored court name; dates are an
// inclusive range compared lexically as canonical YYYY-MM-DD strings.
// A nil Predicate leaves the full corpus eligible.
type Predicate struct {
	Court    string
	DateFrom string
	DateTo   string
}

// IsZero reports whether no filter field is set.
func (p *Predicate) IsZero() bool {
	return p == nil || (p.Court == "" && p.DateFrom == "" && p.DateTo == "")
}

// Matches applies the predicate as a hard filter. A chunk with no
// metadata date fails any date bound: an unknown date cannot satisfy
// an inclusive range.
func (p *Predicate) Matches(m types.ChunkMetadata) bool {
	if p == nil {
		return true
	}
	if p.Court != "" && m.Court != p.Court {
		return false
	}
	if p.DateFrom != "" && (m.Date == "" || m.Date < p.DateFrom) {
		return false
	}
	if p.DateTo != "" && (m.Date == "" || m.Date > p.DateTo) {
		return false
	}
	return true
}
