package crmstore

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/google/uuid"
)

// CustomerRepository stores customers under crm.KeyCustomers
type CustomerRepository struct {
	collection[crm.Customer]
}

// NewCustomerRepository creates a customer repository
func NewCustomerRepository(store kvstore.Store) *CustomerRepository {
	return &CustomerRepository{collection[crm.Customer]{
		store:        store,
		key:          crm.KeyCustomers,
		entity:       "Customer",
		searchFields: crm.CustomerSearchFields,
		idOf:         func(c *crm.Customer) uuid.UUID { return c.ID },
	}}
}

// LeadRepository stores leads under crm.KeyLeads
type LeadRepository struct {
	collection[crm.Lead]
}

// NewLeadRepository creates a lead repository
func NewLeadRepository(store kvstore.Store) *LeadRepository {
	return &LeadRepository{collection[crm.Lead]{
		store:        store,
		key:          crm.KeyLeads,
		entity:       "Lead",
		searchFields: crm.LeadSearchFields,
		idOf:         func(l *crm.Lead) uuid.UUID { return l.ID },
	}}
}

// OpportunityRepository stores opportunities under crm.KeyOpportunities
type OpportunityRepository struct {
	collection[crm.Opportunity]
}

// NewOpportunityRepository creates an opportunity repository
func NewOpportunityRepository(store kvstore.Store) *OpportunityRepository {
	return &OpportunityRepository{collection[crm.Opportunity]{
		store:        store,
		key:          crm.KeyOpportunities,
		entity:       "Opportunity",
		searchFields: crm.OpportunitySearchFields,
		idOf:         func(o *crm.Opportunity) uuid.UUID { return o.ID },
	}}
}

// DeleteByCustomer removes the customer's opportunities
func (r *OpportunityRepository) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) (int, error) {
	return r.deleteWhere(ctx, func(o *crm.Opportunity) bool { return o.CustomerID == customerID })
}

// ActivityRepository stores activities under crm.KeyActivities
type ActivityRepository struct {
	collection[crm.Activity]
}

// NewActivityRepository creates an activity repository
func NewActivityRepository(store kvstore.Store) *ActivityRepository {
	return &ActivityRepository{collection[crm.Activity]{
		store:        store,
		key:          crm.KeyActivities,
		entity:       "Activity",
		searchFields: crm.ActivitySearchFields,
		idOf:         func(a *crm.Activity) uuid.UUID { return a.ID },
	}}
}

// FindByRelated returns the activities attached to one record, newest first
func (r *ActivityRepository) FindByRelated(ctx context.Context, relatedType crm.RelatedType, relatedID uuid.UUID) ([]crm.Activity, error) {
	items, err := r.Find(ctx, query.New().
		Where("relatedType", relatedType).
		Where("relatedId", relatedID))
	if err != nil {
		return nil, err
	}
	query.Sort(items, "createdAt", query.Desc)
	return items, nil
}

// DeleteByRelated removes the activities attached to one record
func (r *ActivityRepository) DeleteByRelated(ctx context.Context, relatedType crm.RelatedType, relatedID uuid.UUID) (int, error) {
	return r.deleteWhere(ctx, func(a *crm.Activity) bool {
		return a.RelatedType == relatedType && a.RelatedID == relatedID
	})
}

var (
	_ crm.CustomerRepository    = (*CustomerRepository)(nil)
	_ crm.LeadRepository        = (*LeadRepository)(nil)
	_ crm.OpportunityRepository = (*OpportunityRepository)(nil)
	_ crm.ActivityRepository    = (*ActivityRepository)(nil)
)
