// Package logistics holds the application services behind the logistics
// REST API. Services validate references between resources and keep the
// derived values (order totals, stock levels) consistent.
package logistics

import (
	"context"
	"errors"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// Repositories bundles the logistics repositories
type Repositories struct {
	Products             logistics.ProductRepository
	Categories           logistics.CategoryRepository
	Facilities           logistics.FacilityRepository
	Suppliers            logistics.SupplierRepository
	Customers            logistics.CustomerRepository
	Addresses            logistics.AddressRepository
	Orders               logistics.OrderRepository
	Shipments            logistics.ShipmentRepository
	InventoryItems       logistics.InventoryItemRepository
	InventoryItemDetails logistics.InventoryItemDetailRepository
}

// Services bundles the logistics application services
type Services struct {
	Products             *ProductService
	Categories           *CategoryService
	Facilities           *FacilityService
	Suppliers            *SupplierService
	Customers            *CustomerService
	Addresses            *AddressService
	Orders               *OrderService
	Shipments            *ShipmentService
	InventoryItems       *InventoryItemService
	InventoryItemDetails *InventoryItemDetailService
}

// NewServices wires every service on repos
func NewServices(repos Repositories) *Services {
	return &Services{
		Products:             &ProductService{store: store[logistics.Product]{repos.Products}, repos: repos},
		Categories:           &CategoryService{store: store[logistics.Category]{repos.Categories}},
		Facilities:           &FacilityService{store: store[logistics.Facility]{repos.Facilities}, repos: repos},
		Suppliers:            &SupplierService{store: store[logistics.Supplier]{repos.Suppliers}, repos: repos},
		Customers:            &CustomerService{store: store[logistics.Customer]{repos.Customers}, repos: repos},
		Addresses:            &AddressService{store: store[logistics.Address]{repos.Addresses}},
		Orders:               &OrderService{store: store[logistics.Order]{repos.Orders}, repos: repos},
		Shipments:            &ShipmentService{store: store[logistics.Shipment]{repos.Shipments}, repos: repos},
		InventoryItems:       &InventoryItemService{store: store[logistics.InventoryItem]{repos.InventoryItems}, repos: repos},
		InventoryItemDetails: &InventoryItemDetailService{store: store[logistics.InventoryItemDetail]{repos.InventoryItemDetails}, repos: repos},
	}
}

// store provides the read and delete operations every resource shares
type store[T any] struct {
	repo shared.Repository[T]
}

// List returns one page of the resource
func (s store[T]) List(ctx context.Context, q query.Query) (query.Page[T], error) {
	return s.repo.List(ctx, q)
}

// Get returns one record
func (s store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes one record
func (s store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// create saves a new record
func (s store[T]) create(ctx context.Context, v *T) (*T, error) {
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// update loads the record, lets apply mutate it and saves the result
func (s store[T]) update(ctx context.Context, id uuid.UUID, apply func(*T) error) (*T, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(v); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// mustExist turns a missing reference into an INVALID_<FIELD> error so the
// caller sees a 400 rather than a 404 for the resource it addressed
func mustExist[T any](ctx context.Context, repo shared.Repository[T], id *uuid.UUID, field, entity string) error {
	if id == nil {
		return nil
	}
	_, err := repo.FindByID(ctx, *id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("INVALID_"+field, entity+" "+id.String()+" does not exist")
	}
	return err
}
