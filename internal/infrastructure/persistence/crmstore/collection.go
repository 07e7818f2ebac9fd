// Package crmstore implements the CRM repositories on a kvstore.Store. Each
// entity type lives under one fixed key as a JSON array.
package crmstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/google/uuid"
)

// collection is a JSON array of T stored under key
type collection[T query.Record] struct {
	store        kvstore.Store
	key          string
	entity       string
	searchFields []string
	idOf         func(*T) uuid.UUID
}

func decode[T any](key string, data []byte) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) All(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decode[T](c.key, data)
}

func (c *collection[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, shared.NotFound(c.entity)
}

// List runs the shared filter/sort/paginate routine; newest records first
// unless the query names a sort field.
func (c *collection[T]) List(ctx context.Context, q query.Query) (query.Page[T], error) {
	items, err := c.All(ctx)
	if err != nil {
		return query.Page[T]{}, err
	}
	q = q.WithDefaultSort("createdAt", query.Desc)
	return query.Apply(items, q, c.searchFields...), nil
}

// Find returns every record matching the filters of q, unpaginated
func (c *collection[T]) Find(ctx context.Context, q query.Query) ([]T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return query.Filter(items, q, c.searchFields...), nil
}

// Save inserts the entity or replaces the stored one with the same id
func (c *collection[T]) Save(ctx context.Context, entity *T) error {
	id := c.idOf(entity)
	return c.modify(ctx, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(it T) bool { return c.idOf(&it) == id })
		if i < 0 {
			return append(items, *entity), nil
		}
		items[i] = *entity
		return items, nil
	})
}

// SaveAll replaces the whole collection
func (c *collection[T]) SaveAll(ctx context.Context, entities []T) error {
	return c.modify(ctx, func([]T) ([]T, error) {
		return entities, nil
	})
}

func (c *collection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return c.modify(ctx, func(items []T) ([]T, error) {
		n := len(items)
		items = slices.DeleteFunc(items, func(it T) bool { return c.idOf(&it) == id })
		if len(items) == n {
			return nil, shared.NotFound(c.entity)
		}
		return items, nil
	})
}

// deleteWhere removes all records matching pred and reports how many went
func (c *collection[T]) deleteWhere(ctx context.Context, pred func(*T) bool) (int, error) {
	removed := 0
	err := c.modify(ctx, func(items []T) ([]T, error) {
		n := len(items)
		items = slices.DeleteFunc(items, func(it T) bool { return pred(&it) })
		removed = n - len(items)
		return items, nil
	})
	return removed, err
}

func (c *collection[T]) modify(ctx context.Context, fn func([]T) ([]T, error)) error {
	return c.store.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		items, err := decode[T](c.key, current)
		if err != nil {
			return nil, err
		}
		items, err = fn(items)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
}
