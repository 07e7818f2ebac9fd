package crm

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// CustomerService handles customer operations
type CustomerService struct {
	base
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, q query.Query) (query.Page[crm.Customer], error) {
	if err := s.call(ctx, "fetch customers"); err != nil {
		return query.Page[crm.Customer]{}, err
	}
	return s.repos.Customers.List(ctx, q)
}

// Get returns one customer
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	if err := s.call(ctx, "fetch customer"); err != nil {
		return nil, err
	}
	return s.repos.Customers.FindByID(ctx, id)
}

// Create creates a customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*crm.Customer, error) {
	if err := s.call(ctx, "create customer"); err != nil {
		return nil, err
	}

	customer, err := crm.NewCustomer(req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := customer.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)
	return customer, nil
}

// Update applies a partial update
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*crm.Customer, error) {
	if err := s.call(ctx, "update customer"); err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)
	return customer, nil
}

// ChangeStatus moves a customer to another status
func (s *CustomerService) ChangeStatus(ctx context.Context, id uuid.UUID, status crm.CustomerStatus) (*crm.Customer, error) {
	if err := s.call(ctx, "update customer status"); err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repos.Customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)
	return customer, nil
}

// Delete removes a customer together with its opportunities and the
// activities attached to it.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.call(ctx, "delete customer"); err != nil {
		return err
	}

	if err := s.repos.Customers.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.repos.Opportunities.DeleteByCustomer(ctx, id); err != nil {
		return err
	}
	_, err := s.repos.Activities.DeleteByRelated(ctx, crm.RelatedCustomer, id)
	return err
}
