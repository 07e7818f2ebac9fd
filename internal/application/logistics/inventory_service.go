package logistics

import (
	"context"
	"errors"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// InventoryItemService handles stock records
type InventoryItemService struct {
	store[logistics.InventoryItem]
	repos Repositories
}

// Create opens an empty stock record. Stock arrives through inventory item details.
func (s *InventoryItemService) Create(ctx context.Context, req CreateInventoryItemRequest) (*logistics.InventoryItem, error) {
	if err := mustExist(ctx, s.repos.Products, &req.ProductID, "PRODUCT", "Product"); err != nil {
		return nil, err
	}
	if err := mustExist(ctx, s.repos.Facilities, &req.FacilityID, "FACILITY", "Facility"); err != nil {
		return nil, err
	}
	_, err := s.repos.InventoryItems.FindByProductAndFacility(ctx, req.ProductID, req.FacilityID)
	if err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product is already stocked at this facility")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err := logistics.NewInventoryItem(req.ProductID, req.FacilityID, req.ReorderLevel)
	if err != nil {
		return nil, err
	}
	if req.QuantityReserved != 0 {
		if err := item.Apply(logistics.InventoryItemPatch{QuantityReserved: &req.QuantityReserved}); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, item)
}

// Update changes reserved quantity and reorder level
func (s *InventoryItemService) Update(ctx context.Context, id uuid.UUID, req UpdateInventoryItemRequest) (*logistics.InventoryItem, error) {
	return s.update(ctx, id, func(i *logistics.InventoryItem) error {
		return i.Apply(req.patch())
	})
}

// LowStock lists items at or below their reorder level
func (s *InventoryItemService) LowStock(ctx context.Context, q query.Query) (query.Page[logistics.InventoryItem], error) {
	return s.repos.InventoryItems.FindLowStock(ctx, q)
}

// InventoryItemDetailService records stock movements
type InventoryItemDetailService struct {
	store[logistics.InventoryItemDetail]
	repos Repositories
}

// Create records a movement and applies it to the inventory item
func (s *InventoryItemDetailService) Create(ctx context.Context, req CreateInventoryItemDetailRequest) (*logistics.InventoryItemDetail, error) {
	item, err := s.repos.InventoryItems.FindByID(ctx, req.InventoryItemID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_INVENTORY_ITEM", "Inventory item "+req.InventoryItemID.String()+" does not exist")
	}
	if err != nil {
		return nil, err
	}
	if err := mustExist(ctx, s.repos.Shipments, req.ShipmentID, "SHIPMENT", "Shipment"); err != nil {
		return nil, err
	}

	detail, err := logistics.NewInventoryItemDetail(item, req.QuantityDiff, req.Reason, req.ShipmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.InventoryItemDetails.Record(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// Update changes the reason or shipment of a movement
func (s *InventoryItemDetailService) Update(ctx context.Context, id uuid.UUID, req UpdateInventoryItemDetailRequest) (*logistics.InventoryItemDetail, error) {
	if err := mustExist(ctx, s.repos.Shipments, req.ShipmentID, "SHIPMENT", "Shipment"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(d *logistics.InventoryItemDetail) error {
		return d.Apply(req.patch())
	})
}

// Delete removes a movement and reverts its effect on stock
func (s *InventoryItemDetailService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.repos.InventoryItemDetails.Revert(ctx, id)
	return err
}
