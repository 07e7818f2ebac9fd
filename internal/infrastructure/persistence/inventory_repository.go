package persistence

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements logistics.InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	*GormRepository[logistics.InventoryItem]
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{
		GormRepository: NewGormRepository[logistics.InventoryItem](db, "Inventory item"),
	}
}

// FindByProductAndFacility finds the stock record of a product at a facility
func (r *GormInventoryItemRepository) FindByProductAndFacility(ctx context.Context, productID, facilityID uuid.UUID) (*logistics.InventoryItem, error) {
	var item logistics.InventoryItem
	err := r.DB(ctx).
		Where("product_id = ? AND facility_id = ?", productID, facilityID).
		First(&item).Error
	if err != nil {
		return nil, r.translate(err)
	}
	return &item, nil
}

// List returns one page of stock records. The search term is matched
// against the product (sku, name) and facility (code, name) of each record.
func (r *GormInventoryItemRepository) List(ctx context.Context, q query.Query) (query.Page[logistics.InventoryItem], error) {
	base, q := searchStock(r.DB(ctx).Model(&logistics.InventoryItem{}), q)
	return r.list(ctx, base, q)
}

// FindLowStock lists items whose available quantity is at or below their reorder level
func (r *GormInventoryItemRepository) FindLowStock(ctx context.Context, q query.Query) (query.Page[logistics.InventoryItem], error) {
	base, q := searchStock(r.DB(ctx).Model(&logistics.InventoryItem{}).
		Where("quantity_on_hand - quantity_reserved <= reorder_level"), q)
	return r.list(ctx, base, q)
}

const stockSearch = `(product_id IN (SELECT id FROM products WHERE LOWER(sku) LIKE @term ESCAPE '\' OR LOWER(name) LIKE @term ESCAPE '\')` +
	` OR facility_id IN (SELECT id FROM facilities WHERE LOWER(code) LIKE @term ESCAPE '\' OR LOWER(name) LIKE @term ESCAPE '\'))`

// searchStock moves the search term of q into a condition on tx
func searchStock(tx *gorm.DB, q query.Query) (*gorm.DB, query.Query) {
	term := strings.ToLower(q.SearchTerm())
	if term == "" {
		return tx, q
	}
	like := "%" + likeEscaper.Replace(term) + "%"
	return tx.Where(stockSearch, sql.Named("term", like)), q.WithoutSearch()
}

// GormInventoryItemDetailRepository implements logistics.InventoryItemDetailRepository.
// Every movement is written together with the stock change it causes.
type GormInventoryItemDetailRepository struct {
	*GormRepository[logistics.InventoryItemDetail]
}

// NewGormInventoryItemDetailRepository creates a new GormInventoryItemDetailRepository
func NewGormInventoryItemDetailRepository(db *gorm.DB) *GormInventoryItemDetailRepository {
	return &GormInventoryItemDetailRepository{
		GormRepository: NewGormRepository[logistics.InventoryItemDetail](db, "Inventory item detail",
			logistics.SearchFields[logistics.ResourceInventoryItemDetails]...),
	}
}

// Record stores detail and applies its quantity diff to the inventory item
func (r *GormInventoryItemDetailRepository) Record(ctx context.Context, detail *logistics.InventoryItemDetail) (*logistics.InventoryItem, error) {
	var item *logistics.InventoryItem
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if item, err = adjustStock(tx, detail.InventoryItemID, detail.QuantityDiff); err != nil {
			return err
		}
		return tx.Create(detail).Error
	})
	if err != nil {
		return nil, r.translate(err)
	}
	return item, nil
}

// Revert deletes a detail and undoes its quantity diff
func (r *GormInventoryItemDetailRepository) Revert(ctx context.Context, id uuid.UUID) (*logistics.InventoryItem, error) {
	var item *logistics.InventoryItem
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var detail logistics.InventoryItemDetail
		if err := tx.First(&detail, "id = ?", id).Error; err != nil {
			return err
		}
		var err error
		if item, err = adjustStock(tx, detail.InventoryItemID, -detail.QuantityDiff); err != nil {
			return err
		}
		return tx.Delete(&detail).Error
	})
	if err != nil {
		return nil, r.translate(err)
	}
	return item, nil
}

// Delete reverts the movement, so stock stays the sum of its details
func (r *GormInventoryItemDetailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.Revert(ctx, id)
	return err
}

// adjustStock locks the item row (SELECT ... FOR UPDATE where supported),
// applies diff and saves it
func adjustStock(tx *gorm.DB, itemID uuid.UUID, diff int) (*logistics.InventoryItem, error) {
	var item logistics.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, translateError(err, "Inventory item")
	}
	if err := item.ApplyDiff(diff); err != nil {
		return nil, err
	}
	if err := tx.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

var (
	_ logistics.InventoryItemRepository       = (*GormInventoryItemRepository)(nil)
	_ logistics.InventoryItemDetailRepository = (*GormInventoryItemDetailRepository)(nil)
)
