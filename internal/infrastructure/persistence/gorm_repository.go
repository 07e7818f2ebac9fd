package persistence

import (
	"context"
	"errors"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRepository implements shared.Repository[T] for any gorm model whose
// primary key is the id column.
type GormRepository[T any] struct {
	db           *gorm.DB
	entity       string
	searchFields []string
}

// NewGormRepository creates a repository. entity names the type in
// NOT_FOUND messages.
func NewGormRepository[T any](db *gorm.DB, entity string, searchFields ...string) *GormRepository[T] {
	return &GormRepository[T]{db: db, entity: entity, searchFields: searchFields}
}

// DB exposes the handle for repositories that extend this one
func (r *GormRepository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// FindByID finds an entity by its ID
func (r *GormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var v T
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, r.translate(err)
	}
	return &v, nil
}

// List returns one page of entities matching q
func (r *GormRepository[T]) List(ctx context.Context, q query.Query) (query.Page[T], error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(new(T)), q)
}

// list paginates base, which may carry extra conditions
func (r *GormRepository[T]) list(ctx context.Context, base *gorm.DB, q query.Query) (query.Page[T], error) {
	q = q.WithDefaultSort("createdAt", query.Desc).Normalized()
	cols, err := columnsOf(r.db, new(T))
	if err != nil {
		return query.Page[T]{}, err
	}

	tx := applyFilters(base, cols, q, r.searchFields)
	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return query.Page[T]{}, err
	}

	items := make([]T, 0, q.Limit)
	if total > int64(q.Offset()) {
		err = applySort(tx.Session(&gorm.Session{}), cols, q, "createdAt", query.Desc).
			Offset(q.Offset()).
			Limit(q.Limit).
			Find(&items).Error
		if err != nil {
			return query.Page[T]{}, err
		}
	}
	return query.NewPage(items, int(total), q), nil
}

// Save creates or updates an entity
func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	return r.translate(r.db.WithContext(ctx).Save(entity).Error)
}

// Delete removes an entity by ID
func (r *GormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return r.translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NotFound(r.entity)
	}
	return nil
}

func (r *GormRepository[T]) translate(err error) error {
	return translateError(err, r.entity)
}

// translateError maps gorm errors onto domain errors. It relies on
// gorm.Config.TranslateError for the dialect specific constraint codes.
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, entity+" already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError("INVALID_REFERENCE", entity+" references a missing or dependent record")
	}
	return err
}
