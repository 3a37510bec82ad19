package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/utils"
)

// Paginate applies offset pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.PageSize)
	}
}

// Sort orders a query by a case-insensitive allow-list of sortable columns.
// Unknown or empty sortBy values fall back to the default column so the
// ordering is always stable.
func Sort(params utils.PaginationParams, mappings map[string]string, defaultColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column := defaultColumn
		if params.SortBy != "" {
			if mapped, ok := mappings[strings.ToLower(params.SortBy)]; ok {
				column = mapped
			}
		}
		if params.SortDescending {
			return db.Order(column + " DESC")
		}
		return db.Order(column + " ASC")
	}
}
