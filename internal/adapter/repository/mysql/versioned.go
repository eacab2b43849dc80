package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// latestAtOrBefore resolves the recurring "most recent record with
// dateColumn <= asOf" lookup shared by platform config and exchange rates.
// tx carries any additional filters the caller already applied.
func latestAtOrBefore[T any](ctx context.Context, tx *gorm.DB, dateColumn string, asOf time.Time) (*T, error) {
	var out T
	res := tx.WithContext(ctx).
		Where(dateColumn+" <= ?", asOf).
		Order(dateColumn + " DESC").
		Order("id DESC").
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
