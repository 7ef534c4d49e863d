package property

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortOrder is the requested price ordering of a search result.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "", "asc" and "desc" (case-insensitive).
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortAsc, SortDesc:
		return o, nil
	default:
		return SortNone, fmt.Errorf("invalid sort order '%s' (expected asc or desc)", s)
	}
}

// Criteria is a search predicate.
//
// If CustomID is set, only a record with exactly that identity matches and all other
// criteria are ignored. Otherwise every non-empty field is a case-insensitive substring
// match against the record field of the same name. The matches are combined with AND,
// or with OR when Any is set. Criteria without any field match every record.
type Criteria struct {
	CustomID    string    `json:"custom_id,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	Type        string    `json:"type,omitempty"`
	Address     string    `json:"address,omitempty"`
	Any         bool      `json:"any,omitempty"`
	SortByPrice SortOrder `json:"sort_by_price,omitempty"`
}

// IsEmpty reports whether the criteria has no filter at all
func (c Criteria) IsEmpty() bool {
	return c.CustomID == "" && c.City == "" && c.State == "" && c.Type == "" && c.Address == ""
}

// Matches evaluates the criteria against a record.
func (c Criteria) Matches(r Record) bool {
	if c.CustomID != "" {
		return r.CustomID == c.CustomID
	}

	checks := [...]struct{ want, have string }{
		{c.City, r.City},
		{c.State, r.State},
		{c.Type, r.Type},
		{c.Address, r.Address},
	}

	supplied := 0
	for _, chk := range checks {
		if chk.want == "" {
			continue
		}
		supplied++
		hit := containsFold(chk.have, chk.want)
		if c.Any && hit {
			return true
		}
		if !c.Any && !hit {
			return false
		}
	}

	// AND of all supplied checks passed, or nothing supplied at all
	return !c.Any || supplied == 0
}

// SortRecords orders records by price according to the requested order.
// Records with equal price keep their relative order.
func SortRecords(records []Record, order SortOrder) {
	switch order {
	case SortAsc:
		slices.SortStableFunc(records, func(a, b Record) int { return cmp.Compare(a.Price, b.Price) })
	case SortDesc:
		slices.SortStableFunc(records, func(a, b Record) int { return cmp.Compare(b.Price, a.Price) })
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
