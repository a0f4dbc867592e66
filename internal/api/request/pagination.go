package request

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ParseLimit reads the limit query parameter, falling back to DefaultLimit
// for missing or invalid values and capping at MaxLimit.
func ParseLimit(r *http.Request) int {
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}
