package model

import (
	"net/url"
	"strconv"
)

// ListPageSize is the fixed page size for task list requests.
const ListPageSize = 100

// StatusFilter narrows the list by completion state.
type StatusFilter string

// Status filter values.
const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

var statusCycle = []StatusFilter{StatusAll, StatusActive, StatusCompleted}

// Next returns the following status filter, wrapping around.
func (s StatusFilter) Next() StatusFilter {
	for i, v := range statusCycle {
		if v == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusAll
}

// PriorityAll disables priority filtering.
const PriorityAll Priority = "all"

// NextPriorityFilter cycles all -> low -> medium -> high -> all.
func NextPriorityFilter(p Priority) Priority {
	switch p {
	case PriorityAll:
		return PriorityLow
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityAll
	}
}

// Filter is the ephemeral list filter driven by the UI.
type Filter struct {
	Status   StatusFilter
	Priority Priority
}

// DefaultFilter shows every task.
func DefaultFilter() Filter {
	return Filter{Status: StatusAll, Priority: PriorityAll}
}

// IsDefault reports whether no narrowing is applied.
func (f Filter) IsDefault() bool {
	return (f.Status == StatusAll || f.Status == "") &&
		(f.Priority == PriorityAll || f.Priority == "")
}

// Query renders the filter as the list query string, in the order the
// backend documents: skip, limit, then completed and priority when they
// narrow the result. "all" omits the parameter.
func (f Filter) Query() string {
	q := "skip=0&limit=" + strconv.Itoa(ListPageSize)

	switch f.Status {
	case StatusActive:
		q += "&completed=false"
	case StatusCompleted:
		q += "&completed=true"
	}

	if f.Priority != "" && f.Priority != PriorityAll {
		q += "&priority=" + url.QueryEscape(string(f.Priority))
	}
	return q
}
