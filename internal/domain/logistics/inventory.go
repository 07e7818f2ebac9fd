package logistics

import (
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItem is the stock of one product at one facility
type InventoryItem struct {
	shared.BaseEntity
	ProductID        uuid.UUID `json:"productId" gorm:"not null;uniqueIndex:idx_inventory_product_facility"`
	FacilityID       uuid.UUID `json:"facilityId" gorm:"not null;uniqueIndex:idx_inventory_product_facility"`
	QuantityOnHand   int       `json:"quantityOnHand" gorm:"not null;default:0"`
	QuantityReserved int       `json:"quantityReserved" gorm:"not null;default:0"`
	ReorderLevel     int       `json:"reorderLevel" gorm:"not null;default:0"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// NewInventoryItem creates an empty stock record
func NewInventoryItem(productID, facilityID uuid.UUID, reorderLevel int) (*InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Inventory item must reference a product")
	}
	if facilityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FACILITY", "Inventory item must reference a facility")
	}
	if reorderLevel < 0 {
		return nil, shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	return &InventoryItem{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		FacilityID:   facilityID,
		ReorderLevel: reorderLevel,
	}, nil
}

// Available is on hand minus reserved
func (i *InventoryItem) Available() int {
	return i.QuantityOnHand - i.QuantityReserved
}

// IsLowStock reports whether available stock is at or below the reorder level
func (i *InventoryItem) IsLowStock() bool {
	return i.Available() <= i.ReorderLevel
}

// ApplyDiff adjusts quantity on hand. Stock never drops below the reserved quantity.
func (i *InventoryItem) ApplyDiff(diff int) error {
	next := i.QuantityOnHand + diff
	if next < 0 || next < i.QuantityReserved {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Adjustment would leave less stock than reserved")
	}
	i.QuantityOnHand = next
	i.Touch()
	return nil
}

// InventoryItemPatch carries a partial update; nil fields are left unchanged.
// On-hand quantity only changes through inventory item details.
type InventoryItemPatch struct {
	QuantityReserved *int
	ReorderLevel     *int
}

// Apply validates and applies a partial update
func (i *InventoryItem) Apply(p InventoryItemPatch) error {
	if p.QuantityReserved != nil {
		if *p.QuantityReserved < 0 || *p.QuantityReserved > i.QuantityOnHand {
			return shared.NewDomainError("INVALID_RESERVED", "Reserved quantity must be between 0 and quantity on hand")
		}
		i.QuantityReserved = *p.QuantityReserved
	}
	if p.ReorderLevel != nil {
		if *p.ReorderLevel < 0 {
			return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
		}
		i.ReorderLevel = *p.ReorderLevel
	}
	i.Touch()
	return nil
}

// InventoryItemDetail is one signed stock movement of an inventory item.
// Recording it changes the item's quantity on hand by QuantityDiff, so the
// details of an item are its audit trail.
type InventoryItemDetail struct {
	shared.BaseEntity
	InventoryItemID uuid.UUID  `json:"inventoryItemId" gorm:"not null;index"`
	ShipmentID      *uuid.UUID `json:"shipmentId" gorm:"index"`
	ProductID       uuid.UUID  `json:"productId" gorm:"not null;index"`
	FacilityID      uuid.UUID  `json:"facilityId" gorm:"not null;index"`
	QuantityDiff    int        `json:"quantityDiff" gorm:"not null"`
	Reason          string     `json:"reason" gorm:"type:varchar(200)"`
}

func (InventoryItemDetail) TableName() string { return "inventory_item_details" }

// NewInventoryItemDetail creates a movement for item. Product and facility
// are copied from the item.
func NewInventoryItemDetail(item *InventoryItem, diff int, reason string, shipmentID *uuid.UUID) (*InventoryItemDetail, error) {
	if diff == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity difference cannot be zero")
	}
	if err := shared.CheckLength("reason", reason, 200); err != nil {
		return nil, err
	}
	return &InventoryItemDetail{
		BaseEntity:      shared.NewBaseEntity(),
		InventoryItemID: item.ID,
		ShipmentID:      shipmentID,
		ProductID:       item.ProductID,
		FacilityID:      item.FacilityID,
		QuantityDiff:    diff,
		Reason:          reason,
	}, nil
}

// InventoryItemDetailPatch carries a partial update. The quantity of a
// recorded movement is immutable.
type InventoryItemDetailPatch struct {
	Reason     *string
	ShipmentID *uuid.UUID
}

// Apply validates and applies a partial update
func (d *InventoryItemDetail) Apply(p InventoryItemDetailPatch) error {
	if p.Reason != nil {
		if err := shared.CheckLength("reason", *p.Reason, 200); err != nil {
			return err
		}
		d.Reason = *p.Reason
	}
	if p.ShipmentID != nil {
		id := *p.ShipmentID
		d.ShipmentID = &id
	}
	d.Touch()
	return nil
}
