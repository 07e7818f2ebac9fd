package crm

import (
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeCustomer    = "Customer"
	AggregateTypeLead        = "Lead"
	AggregateTypeOpportunity = "Opportunity"
	AggregateTypeActivity    = "Activity"
)

// Event type constants
const (
	EventTypeCustomerCreated         = "CustomerCreated"
	EventTypeCustomerStatusChanged   = "CustomerStatusChanged"
	EventTypeLeadStatusChanged       = "LeadStatusChanged"
	EventTypeLeadConverted           = "LeadConverted"
	EventTypeOpportunityStageChanged = "OpportunityStageChanged"
	EventTypeActivityCompleted       = "ActivityCompleted"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		Name:            c.Name,
	}
}

// CustomerStatusChangedEvent is published when a customer's status changes
type CustomerStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus CustomerStatus `json:"old_status"`
	NewStatus CustomerStatus `json:"new_status"`
}

// NewCustomerStatusChangedEvent creates a new CustomerStatusChangedEvent
func NewCustomerStatusChangedEvent(c *Customer, old, new CustomerStatus) *CustomerStatusChangedEvent {
	return &CustomerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerStatusChanged, AggregateTypeCustomer, c.ID),
		OldStatus:       old,
		NewStatus:       new,
	}
}

// LeadStatusChangedEvent is published when a lead's status changes
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(l *Lead, old, new LeadStatus) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, l.ID),
		OldStatus:       old,
		NewStatus:       new,
	}
}

// LeadConvertedEvent is published when a lead becomes a customer
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	LeadName      string     `json:"lead_name"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
}

// NewLeadConvertedEvent creates a new LeadConvertedEvent
func NewLeadConvertedEvent(l *Lead, customerID uuid.UUID, opportunityID *uuid.UUID) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, AggregateTypeLead, l.ID),
		LeadName:        l.FullName(),
		CustomerID:      customerID,
		OpportunityID:   opportunityID,
	}
}

// OpportunityStageChangedEvent is published when a deal moves in the pipeline.
// Revenue is the signed change to a customer's total revenue, nil when the
// move neither wins nor reopens a credited deal.
type OpportunityStageChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID        `json:"customer_id"`
	OldStage   OpportunityStage `json:"old_stage"`
	NewStage   OpportunityStage `json:"new_stage"`
	Value      decimal.Decimal  `json:"value"`
	Revenue    *RevenueCredit   `json:"revenue,omitempty"`
}

// NewOpportunityStageChangedEvent creates a new OpportunityStageChangedEvent
func NewOpportunityStageChangedEvent(o *Opportunity, old, new OpportunityStage, revenue *RevenueCredit) *OpportunityStageChangedEvent {
	return &OpportunityStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpportunityStageChanged, AggregateTypeOpportunity, o.ID),
		CustomerID:      o.CustomerID,
		OldStage:        old,
		NewStage:        new,
		Value:           o.Value,
		Revenue:         revenue,
	}
}

// ActivityCompletedEvent is published when an activity is completed
type ActivityCompletedEvent struct {
	shared.BaseDomainEvent
	RelatedType RelatedType `json:"related_type"`
	RelatedID   uuid.UUID   `json:"related_id"`
}

// NewActivityCompletedEvent creates a new ActivityCompletedEvent
func NewActivityCompletedEvent(a *Activity) *ActivityCompletedEvent {
	return &ActivityCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivityCompleted, AggregateTypeActivity, a.ID),
		RelatedType:     a.RelatedType,
		RelatedID:       a.RelatedID,
	}
}
