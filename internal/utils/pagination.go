package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgstack/org-license-manager/internal/constants"
)

// PaginationParams holds the pagination, sorting and search parameters shared
// by every list endpoint. Out-of-range values are silently clamped.
type PaginationParams struct {
	Page           int
	PageSize       int
	SortBy         string
	SortDescending bool
	Search         string
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// GetPaginationParams extracts and clamps pagination parameters from the
// request query.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(constants.DefaultPageSize)))
	sortDescending, _ := strconv.ParseBool(c.DefaultQuery("sortDescending", "false"))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return PaginationParams{
		Page:           page,
		PageSize:       pageSize,
		SortBy:         strings.TrimSpace(c.Query("sortBy")),
		SortDescending: sortDescending,
		Search:         strings.TrimSpace(c.Query("search")),
	}
}

// PagedResult is the envelope returned by every paginated endpoint.
type PagedResult[T any] struct {
	Items           []T   `json:"items"`
	Page            int   `json:"page"`
	PageSize        int   `json:"pageSize"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// NewPagedResult builds the envelope from a page of items and the total row
// count.
func NewPagedResult[T any](items []T, params PaginationParams, totalCount int64) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int(math.Ceil(float64(totalCount) / float64(params.PageSize)))
	return PagedResult[T]{
		Items:           items,
		Page:            params.Page,
		PageSize:        params.PageSize,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasPreviousPage: params.Page > 1,
		HasNextPage:     params.Page < totalPages,
	}
}

// MapPagedResult converts the item type of a paged result while keeping the
// envelope metadata.
func MapPagedResult[T, U any](in PagedResult[T], convert func(T) U) PagedResult[U] {
	items := make([]U, len(in.Items))
	for i, item := range in.Items {
		items[i] = convert(item)
	}
	return PagedResult[U]{
		Items:           items,
		Page:            in.Page,
		PageSize:        in.PageSize,
		TotalCount:      in.TotalCount,
		TotalPages:      in.TotalPages,
		HasPreviousPage: in.HasPreviousPage,
		HasNextPage:     in.HasNextPage,
	}
}
