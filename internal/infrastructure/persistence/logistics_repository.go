package persistence

import (
	"context"
	"strings"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"gorm.io/gorm"
)

// LogisticsRepositories bundles the stores behind the logistics console
type LogisticsRepositories struct {
	Products             *GormProductRepository
	Categories           *GormRepository[logistics.Category]
	Facilities           *GormRepository[logistics.Facility]
	Suppliers            *GormRepository[logistics.Supplier]
	Customers            *GormRepository[logistics.Customer]
	Addresses            *GormRepository[logistics.Address]
	Orders               *GormOrderRepository
	Shipments            *GormRepository[logistics.Shipment]
	InventoryItems       *GormInventoryItemRepository
	InventoryItemDetails *GormInventoryItemDetailRepository
}

// NewLogisticsRepositories wires every logistics repository to db
func NewLogisticsRepositories(db *gorm.DB) *LogisticsRepositories {
	fields := logistics.SearchFields
	return &LogisticsRepositories{
		Products:             NewGormProductRepository(db),
		Categories:           NewGormRepository[logistics.Category](db, "Category", fields[logistics.ResourceCategories]...),
		Facilities:           NewGormRepository[logistics.Facility](db, "Facility", fields[logistics.ResourceFacilities]...),
		Suppliers:            NewGormRepository[logistics.Supplier](db, "Supplier", fields[logistics.ResourceSuppliers]...),
		Customers:            NewGormRepository[logistics.Customer](db, "Customer", fields[logistics.ResourceCustomers]...),
		Addresses:            NewGormRepository[logistics.Address](db, "Address", fields[logistics.ResourceAddresses]...),
		Orders:               NewGormOrderRepository(db),
		Shipments:            NewGormRepository[logistics.Shipment](db, "Shipment", fields[logistics.ResourceShipments]...),
		InventoryItems:       NewGormInventoryItemRepository(db),
		InventoryItemDetails: NewGormInventoryItemDetailRepository(db),
	}
}

// GormProductRepository implements logistics.ProductRepository using GORM
type GormProductRepository struct {
	*GormRepository[logistics.Product]
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{
		GormRepository: NewGormRepository[logistics.Product](db, "Product", logistics.SearchFields[logistics.ResourceProducts]...),
	}
}

// FindBySKU finds a product by its SKU, case-insensitively
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*logistics.Product, error) {
	var product logistics.Product
	if err := r.DB(ctx).Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).First(&product).Error; err != nil {
		return nil, r.translate(err)
	}
	return &product, nil
}

var (
	_ logistics.ProductRepository  = (*GormProductRepository)(nil)
	_ logistics.CategoryRepository = (*GormRepository[logistics.Category])(nil)
	_ logistics.FacilityRepository = (*GormRepository[logistics.Facility])(nil)
	_ logistics.SupplierRepository = (*GormRepository[logistics.Supplier])(nil)
	_ logistics.CustomerRepository = (*GormRepository[logistics.Customer])(nil)
	_ logistics.AddressRepository  = (*GormRepository[logistics.Address])(nil)
	_ logistics.ShipmentRepository = (*GormRepository[logistics.Shipment])(nil)
)
