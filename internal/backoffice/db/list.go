package db

import (
	"context"
	"fmt"

	"github.com/gartstein/backoffice/internal/backoffice/query"
	"gorm.io/gorm"
)

// ListSpec describes one filtered, paginated list query.
type ListSpec struct {
	Where    query.Predicate
	Page     query.Page
	Order    string
	Preloads []string
}

// list counts the rows matching spec.Where and loads the requested page.
// Both statements are built from the same predicate so the total always
// agrees with the rows that can be paged through.
func list[T any](ctx context.Context, db *gorm.DB, spec ListSpec) (query.Result[T], error) {
	result := query.Result[T]{Page: spec.Page, Items: []T{}}
	var model T

	if err := spec.Where.Apply(db.WithContext(ctx).Model(&model)).Count(&result.Total).Error; err != nil {
		return result, fmt.Errorf("count: %w", err)
	}
	if result.Total == 0 {
		return result, nil
	}

	q := spec.Page.Paginate(spec.Where.Apply(db.WithContext(ctx).Model(&model)))
	if spec.Order != "" {
		q = q.Order(spec.Order)
	}
	for _, p := range spec.Preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("page: %w", err)
	}
	return result, nil
}
