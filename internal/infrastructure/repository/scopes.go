package repository

import (
	"strings"

	"github.com/sangkips/pos-api/pkg/daterange"
	"github.com/sangkips/pos-api/pkg/pagination"
	"gorm.io/gorm"
)

// InRange limits column to the half-open range. A nil range is a no-op.
func InRange(column string, rng *daterange.Range) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if rng == nil {
			return db
		}
		return db.Where(column+" >= ? AND "+column+" < ?", rng.From, rng.To)
	}
}

// Paginate applies offset/limit. Nil params return every row.
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// Search matches term case-insensitively against any of columns.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, c := range columns {
			clauses[i] = c + " ILIKE ?"
			args[i] = like
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}
