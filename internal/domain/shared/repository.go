package shared

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// Repository is the base interface for all repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, q query.Query) (query.Page[T], error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
