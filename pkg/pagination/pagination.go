package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents pagination query parameters.
type Params struct {
	Page  int
	Limit int
	Skip  int
}

// Metadata holds the pagination block returned alongside list payloads.
type Metadata struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Extract reads page and limit from the query string, falling back to the
// defaults on missing or malformed values and capping limit at MaxLimit.
func Extract(c *gin.Context) Params {
	page := queryInt(c, "page", DefaultPage)
	limit := queryInt(c, "limit", DefaultLimit)

	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// MetadataFrom builds response metadata given the total row count.
func MetadataFrom(total int64, params Params) Metadata {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}

	return Metadata{
		TotalItems:  total,
		CurrentPage: params.Page,
		PageSize:    params.Limit,
		TotalPages:  totalPages,
		HasNextPage: params.Page < totalPages,
		HasPrevPage: params.Page > 1,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
