package logistics

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/google/uuid"
)

// AddressService handles address operations
type AddressService struct {
	store[logistics.Address]
}

// Create creates an address
func (s *AddressService) Create(ctx context.Context, req AddressRequest) (*logistics.Address, error) {
	address, err := logistics.NewAddress(deref(req.Line1), deref(req.City), deref(req.Country))
	if err != nil {
		return nil, err
	}
	if err := address.Apply(req.patch()); err != nil {
		return nil, err
	}
	return s.create(ctx, address)
}

// Update applies a partial update
func (s *AddressService) Update(ctx context.Context, id uuid.UUID, req AddressRequest) (*logistics.Address, error) {
	return s.update(ctx, id, func(a *logistics.Address) error {
		return a.Apply(req.patch())
	})
}

// FacilityService handles facility operations
type FacilityService struct {
	store[logistics.Facility]
	repos Repositories
}

// Create creates a facility
func (s *FacilityService) Create(ctx context.Context, req FacilityRequest) (*logistics.Facility, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	var facilityType logistics.FacilityType
	if req.Type != nil {
		facilityType = logistics.FacilityType(*req.Type)
	}
	facility, err := logistics.NewFacility(deref(req.Code), deref(req.Name), facilityType)
	if err != nil {
		return nil, err
	}
	if err := facility.Apply(req.patch()); err != nil {
		return nil, err
	}
	return s.create(ctx, facility)
}

// Update applies a partial update
func (s *FacilityService) Update(ctx context.Context, id uuid.UUID, req FacilityRequest) (*logistics.Facility, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(f *logistics.Facility) error {
		return f.Apply(req.patch())
	})
}

// SupplierService handles supplier operations
type SupplierService struct {
	store[logistics.Supplier]
	repos Repositories
}

// Create creates a supplier
func (s *SupplierService) Create(ctx context.Context, req ContactRequest) (*logistics.Supplier, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	supplier, err := logistics.NewSupplier(deref(req.Name), deref(req.ContactName), deref(req.Email), deref(req.Phone))
	if err != nil {
		return nil, err
	}
	if err := supplier.Apply(req.patch(), nil); err != nil {
		return nil, err
	}
	return s.create(ctx, supplier)
}

// Update applies a partial update
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req ContactRequest) (*logistics.Supplier, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sup *logistics.Supplier) error {
		return sup.Apply(req.patch(), req.ContactName)
	})
}

// CustomerService handles logistics customer operations
type CustomerService struct {
	store[logistics.Customer]
	repos Repositories
}

// Create creates a customer
func (s *CustomerService) Create(ctx context.Context, req ContactRequest) (*logistics.Customer, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	customer, err := logistics.NewCustomer(deref(req.Name), deref(req.Email), deref(req.Phone))
	if err != nil {
		return nil, err
	}
	if err := customer.Apply(req.patch()); err != nil {
		return nil, err
	}
	return s.create(ctx, customer)
}

// Update applies a partial update
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req ContactRequest) (*logistics.Customer, error) {
	if err := mustExist(ctx, s.repos.Addresses, req.AddressID, "ADDRESS", "Address"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(c *logistics.Customer) error {
		return c.Apply(req.patch())
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
