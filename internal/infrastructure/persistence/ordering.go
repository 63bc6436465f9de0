package persistence

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortable is the set of columns a list endpoint may order by. Column names
// reach SQL unquoted by the caller, so nothing outside the set is accepted.
type sortable map[string]struct{}

func columns(names ...string) sortable {
	s := make(sortable, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

var userColumns = columns("id", "email", "display_name", "created_at", "updated_at", "last_login_at")

// orderBy resolves a requested column and direction into an ORDER BY scope.
// Unknown columns fall back to fallback; anything but "asc" sorts descending.
// The primary key is appended as a tiebreaker so paging is stable.
func orderBy(allowed sortable, column, direction, fallback string) func(*gorm.DB) *gorm.DB {
	column = strings.TrimSpace(column)
	if _, ok := allowed[column]; !ok {
		column = fallback
	}
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")

	order := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
	}}
	if column != "id" {
		order.Columns = append(order.Columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Clauses(order)
	}
}

// paginate applies the filter's window
func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
