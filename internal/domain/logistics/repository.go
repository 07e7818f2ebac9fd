package logistics

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// Resource names as they appear in /logistics/api/v1/{resource}
const (
	ResourceProducts             = "products"
	ResourceCategories           = "categories"
	ResourceFacilities           = "facilities"
	ResourceSuppliers            = "suppliers"
	ResourceCustomers            = "customers"
	ResourceOrders               = "orders"
	ResourceShipments            = "shipments"
	ResourceInventoryItems       = "inventory-items"
	ResourceInventoryItemDetails = "inventory-item-details"
	ResourceAddresses            = "addresses"
)

// Resources lists every resource in menu order
var Resources = []string{
	ResourceProducts, ResourceCategories, ResourceFacilities, ResourceSuppliers,
	ResourceCustomers, ResourceOrders, ResourceShipments, ResourceInventoryItems,
	ResourceInventoryItemDetails, ResourceAddresses,
}

type (
	CategoryRepository interface{ shared.Repository[Category] }
	ProductRepository  interface {
		shared.Repository[Product]
		FindBySKU(ctx context.Context, sku string) (*Product, error)
	}
	AddressRepository  interface{ shared.Repository[Address] }
	FacilityRepository interface{ shared.Repository[Facility] }
	SupplierRepository interface{ shared.Repository[Supplier] }
	CustomerRepository interface{ shared.Repository[Customer] }
	ShipmentRepository interface{ shared.Repository[Shipment] }
)

// OrderRepository loads and saves orders together with their items
type OrderRepository interface {
	shared.Repository[Order]
	// FindItems returns the lines of an order
	FindItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
}

// InventoryItemRepository manages stock records
type InventoryItemRepository interface {
	shared.Repository[InventoryItem]
	FindByProductAndFacility(ctx context.Context, productID, facilityID uuid.UUID) (*InventoryItem, error)
	// FindLowStock lists items whose available quantity is at or below their reorder level
	FindLowStock(ctx context.Context, q query.Query) (query.Page[InventoryItem], error)
}

// InventoryItemDetailRepository records stock movements
type InventoryItemDetailRepository interface {
	shared.Repository[InventoryItemDetail]
	// Record stores the detail and applies its QuantityDiff to the inventory
	// item in the same transaction, returning the updated item
	Record(ctx context.Context, detail *InventoryItemDetail) (*InventoryItem, error)
	// Revert deletes the detail and undoes its QuantityDiff atomically
	Revert(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
}

// SearchFields lists the fields matched by the free-text search of each
// resource. Inventory items carry no text of their own; their repository
// matches the term against the stocked product and the facility instead.
var SearchFields = map[string][]string{
	ResourceProducts:             {"sku", "name", "description"},
	ResourceCategories:           {"name", "description"},
	ResourceFacilities:           {"code", "name"},
	ResourceSuppliers:            {"name", "contactName", "email", "phone"},
	ResourceCustomers:            {"name", "email", "phone"},
	ResourceOrders:               {"orderNumber", "notes"},
	ResourceShipments:            {"shipmentNumber", "carrier", "trackingNumber"},
	ResourceInventoryItems:       {},
	ResourceInventoryItemDetails: {"reason"},
	ResourceAddresses:            {"line1", "line2", "city", "state", "postalCode", "country"},
}
