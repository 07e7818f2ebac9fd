package crm

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Store keys of the CRM mock persistence. Each key holds a JSON array.
const (
	KeyCustomers     = "crm_customers"
	KeyLeads         = "crm_leads"
	KeyOpportunities = "crm_opportunities"
	KeyActivities    = "crm_activities"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	shared.Repository[Customer]
	All(ctx context.Context) ([]Customer, error)
}

// LeadRepository persists leads
type LeadRepository interface {
	shared.Repository[Lead]
	All(ctx context.Context) ([]Lead, error)
}

// OpportunityRepository persists opportunities
type OpportunityRepository interface {
	shared.Repository[Opportunity]
	All(ctx context.Context) ([]Opportunity, error)
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) (int, error)
}

// ActivityRepository persists activities
type ActivityRepository interface {
	shared.Repository[Activity]
	All(ctx context.Context) ([]Activity, error)
	FindByRelated(ctx context.Context, relatedType RelatedType, relatedID uuid.UUID) ([]Activity, error)
	DeleteByRelated(ctx context.Context, relatedType RelatedType, relatedID uuid.UUID) (int, error)
}
