package persistence

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyConditions applies the filter's where conditions only.
// Keys are matched verbatim against column names; callers control the keys.
func applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}
	return query
}

// applyFilter applies where conditions, ordering and pagination.
// A PageSize of 0 disables paging and returns the full result set.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyConditions(query, filter)

	if filter.OrderBy != "" {
		dir := "DESC"
		if strings.EqualFold(filter.OrderDir, "asc") {
			dir = "ASC"
		}
		query = query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	return query
}
