package persistence

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements logistics.OrderRepository using GORM.
// Orders are saved together with their items.
type GormOrderRepository struct {
	*GormRepository[logistics.Order]
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{
		GormRepository: NewGormRepository[logistics.Order](db, "Order", logistics.SearchFields[logistics.ResourceOrders]...),
	}
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*logistics.Order, error) {
	var order logistics.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, r.translate(err)
	}
	return &order, nil
}

// FindItems returns the lines of an order
func (r *GormOrderRepository) FindItems(ctx context.Context, orderID uuid.UUID) ([]logistics.OrderItem, error) {
	var exists int64
	if err := r.DB(ctx).Model(&logistics.Order{}).Where("id = ?", orderID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, translateError(gorm.ErrRecordNotFound, "Order")
	}
	items := make([]logistics.OrderItem, 0)
	if err := r.DB(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save writes the order header and replaces its item set in one transaction
func (r *GormOrderRepository) Save(ctx context.Context, order *logistics.Order) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(order.Items))
		for _, it := range order.Items {
			keep = append(keep, it.ID)
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&logistics.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return r.translate(err)
}

// Delete removes the order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&logistics.OrderItem{}).Error; err != nil {
			return err
		}
		return NewGormRepository[logistics.Order](tx, "Order").Delete(ctx, id)
	})
}

var _ logistics.OrderRepository = (*GormOrderRepository)(nil)
