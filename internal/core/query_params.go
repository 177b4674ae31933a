// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Default and limit constants for pagination
const (
	DefaultLimit  = 50
	MaxLimit      = 500
	DefaultSortBy = "completed_at"
	DefaultOrder  = "desc"
)

// SortableHistoryColumns lists the history columns a client may sort by.
var SortableHistoryColumns = map[string]bool{
	"completed_at":    true,
	"table_name":      true,
	"row_count":       true,
	"elapsed_seconds": true,
}

// ListQueryOptions holds parsed query parameters for listing generated tables
type ListQueryOptions struct {
	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"

	// Filtering
	RunID string
}

// ParseListQueryOptions extracts pagination, sorting and run filtering options from query parameters.
// Returns the parsed options and any validation error.
func ParseListQueryOptions(queryParams url.Values) (*ListQueryOptions, error) {
	opts := &ListQueryOptions{
		Limit:     DefaultLimit,
		Offset:    0,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultOrder,
	}

	// Parse limit
	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be an integer")
		}
		if limit < 1 {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be at least 1")
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("invalid 'limit' parameter: maximum is %d", MaxLimit)
		}
		opts.Limit = limit
	}

	// Parse offset
	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be an integer")
		}
		if offset < 0 {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be non-negative")
		}
		opts.Offset = offset
	}

	// Parse sort column
	if sortBy := queryParams.Get("sort"); sortBy != "" {
		if !SortableHistoryColumns[strings.ToLower(sortBy)] {
			return nil, fmt.Errorf("invalid 'sort' parameter: '%s' is not a sortable column", sortBy)
		}
		opts.SortBy = strings.ToLower(sortBy)
	}

	// Parse sort order
	if order := queryParams.Get("order"); order != "" {
		lowerOrder := strings.ToLower(order)
		if lowerOrder != "asc" && lowerOrder != "desc" {
			return nil, fmt.Errorf("invalid 'order' parameter: must be 'asc' or 'desc'")
		}
		opts.SortOrder = lowerOrder
	}

	if runID := queryParams.Get("run_id"); runID != "" {
		opts.RunID = runID
	}

	return opts, nil
}
