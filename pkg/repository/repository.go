package repository

import (
	"context"

	"github.com/Yassinesbr/support-center/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a thin generic data-access layer over gorm. FindOne
// returns (nil, nil) when no row matches, so callers can map a miss to
// their own not-found error without touching gorm sentinels.
type Repository[T any] interface {
	// WithTrx rebinds the store to tx so multi-model writes share one
	// transaction.
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, record *T) error
}
