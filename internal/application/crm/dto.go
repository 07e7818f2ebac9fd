package crm

import (
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Company      string           `json:"company" binding:"max=200"`
	Email        string           `json:"email" binding:"omitempty,email,max=200"`
	Phone        string           `json:"phone" binding:"max=50"`
	Industry     string           `json:"industry" binding:"max=100"`
	Status       string           `json:"status" binding:"omitempty,oneof=active inactive prospect churned"`
	Tier         string           `json:"tier" binding:"omitempty,oneof=standard premium enterprise"`
	AssignedTo   string           `json:"assignedTo" binding:"max=100"`
	Address      string           `json:"address" binding:"max=500"`
	City         string           `json:"city" binding:"max=100"`
	State        string           `json:"state" binding:"max=100"`
	PostalCode   string           `json:"postalCode" binding:"max=20"`
	Country      string           `json:"country" binding:"max=100"`
	TotalRevenue *decimal.Decimal `json:"totalRevenue" binding:"omitempty,decimal_gte0"`
	Tags         []string         `json:"tags"`
	Notes        string           `json:"notes"`
}

func (r CreateCustomerRequest) patch() crm.CustomerPatch {
	p := crm.CustomerPatch{
		Company:      &r.Company,
		Phone:        &r.Phone,
		Industry:     &r.Industry,
		AssignedTo:   &r.AssignedTo,
		Address:      &r.Address,
		City:         &r.City,
		State:        &r.State,
		PostalCode:   &r.PostalCode,
		Country:      &r.Country,
		TotalRevenue: r.TotalRevenue,
		Tags:         r.Tags,
		Notes:        &r.Notes,
	}
	if r.Status != "" {
		s := crm.CustomerStatus(r.Status)
		p.Status = &s
	}
	if r.Tier != "" {
		t := crm.CustomerTier(r.Tier)
		p.Tier = &t
	}
	return p
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Company       *string          `json:"company" binding:"omitempty,max=200"`
	Email         *string          `json:"email" binding:"omitempty,email,max=200"`
	Phone         *string          `json:"phone" binding:"omitempty,max=50"`
	Industry      *string          `json:"industry" binding:"omitempty,max=100"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active inactive prospect churned"`
	Tier          *string          `json:"tier" binding:"omitempty,oneof=standard premium enterprise"`
	AssignedTo    *string          `json:"assignedTo" binding:"omitempty,max=100"`
	Address       *string          `json:"address" binding:"omitempty,max=500"`
	City          *string          `json:"city" binding:"omitempty,max=100"`
	State         *string          `json:"state" binding:"omitempty,max=100"`
	PostalCode    *string          `json:"postalCode" binding:"omitempty,max=20"`
	Country       *string          `json:"country" binding:"omitempty,max=100"`
	TotalRevenue  *decimal.Decimal `json:"totalRevenue" binding:"omitempty,decimal_gte0"`
	LastContactAt *time.Time       `json:"lastContactAt"`
	Tags          []string         `json:"tags"`
	Notes         *string          `json:"notes"`
}

func (r UpdateCustomerRequest) patch() crm.CustomerPatch {
	return crm.CustomerPatch{
		Name:          r.Name,
		Company:       r.Company,
		Email:         r.Email,
		Phone:         r.Phone,
		Industry:      r.Industry,
		Status:        (*crm.CustomerStatus)(r.Status),
		Tier:          (*crm.CustomerTier)(r.Tier),
		AssignedTo:    r.AssignedTo,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		PostalCode:    r.PostalCode,
		Country:       r.Country,
		TotalRevenue:  r.TotalRevenue,
		LastContactAt: r.LastContactAt,
		Tags:          r.Tags,
		Notes:         r.Notes,
	}
}

// ChangeCustomerStatusRequest moves a customer to another status
type ChangeCustomerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive prospect churned"`
}

// =============================================================================
// Lead DTOs
// =============================================================================

// CreateLeadRequest represents a request to create a lead
type CreateLeadRequest struct {
	FirstName      string           `json:"firstName" binding:"required,min=1,max=100"`
	LastName       string           `json:"lastName" binding:"required,min=1,max=100"`
	Company        string           `json:"company" binding:"max=200"`
	Title          string           `json:"title" binding:"max=100"`
	Email          string           `json:"email" binding:"omitempty,email,max=200"`
	Phone          string           `json:"phone" binding:"max=50"`
	Source         string           `json:"source" binding:"omitempty,oneof=website referral social event cold_call advertisement other"`
	Score          *int             `json:"score" binding:"omitempty,gte=0,lte=100"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue" binding:"omitempty,decimal_gte0"`
	AssignedTo     string           `json:"assignedTo" binding:"max=100"`
	Notes          string           `json:"notes"`
}

func (r CreateLeadRequest) patch() crm.LeadPatch {
	return crm.LeadPatch{
		Company:        &r.Company,
		Title:          &r.Title,
		Phone:          &r.Phone,
		Score:          r.Score,
		EstimatedValue: r.EstimatedValue,
		AssignedTo:     &r.AssignedTo,
		Notes:          &r.Notes,
	}
}

// UpdateLeadRequest represents a partial lead update
type UpdateLeadRequest struct {
	FirstName      *string          `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName       *string          `json:"lastName" binding:"omitempty,min=1,max=100"`
	Company        *string          `json:"company" binding:"omitempty,max=200"`
	Title          *string          `json:"title" binding:"omitempty,max=100"`
	Email          *string          `json:"email" binding:"omitempty,email,max=200"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	Source         *string          `json:"source" binding:"omitempty,oneof=website referral social event cold_call advertisement other"`
	Status         *string          `json:"status" binding:"omitempty,oneof=new contacted qualified unqualified converted lost"`
	Score          *int             `json:"score" binding:"omitempty,gte=0,lte=100"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue" binding:"omitempty,decimal_gte0"`
	AssignedTo     *string          `json:"assignedTo" binding:"omitempty,max=100"`
	Notes          *string          `json:"notes"`
}

func (r UpdateLeadRequest) patch() crm.LeadPatch {
	return crm.LeadPatch{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Company:        r.Company,
		Title:          r.Title,
		Email:          r.Email,
		Phone:          r.Phone,
		Source:         (*crm.LeadSource)(r.Source),
		Status:         (*crm.LeadStatus)(r.Status),
		Score:          r.Score,
		EstimatedValue: r.EstimatedValue,
		AssignedTo:     r.AssignedTo,
		Notes:          r.Notes,
	}
}

// ChangeLeadStatusRequest sets a lead status
type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted qualified unqualified converted lost"`
}

// ConvertLeadRequest turns a lead into a customer and optionally an opportunity
type ConvertLeadRequest struct {
	CustomerName      string           `json:"customerName" binding:"max=200"`
	CreateOpportunity bool             `json:"createOpportunity"`
	OpportunityName   string           `json:"opportunityName" binding:"max=200"`
	OpportunityValue  *decimal.Decimal `json:"opportunityValue" binding:"omitempty,decimal_gte0"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate"`
}

// ConvertLeadResult is the outcome of a lead conversion
type ConvertLeadResult struct {
	Lead        *crm.Lead        `json:"lead"`
	Customer    *crm.Customer    `json:"customer"`
	Opportunity *crm.Opportunity `json:"opportunity,omitempty"`
}

// =============================================================================
// Opportunity DTOs
// =============================================================================

// CreateOpportunityRequest represents a request to create an opportunity
type CreateOpportunityRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	CustomerID        uuid.UUID       `json:"customerId" binding:"required"`
	Stage             string          `json:"stage" binding:"omitempty,oneof=prospecting qualification proposal negotiation closed_won closed_lost"`
	Probability       *int            `json:"probability" binding:"omitempty,gte=0,lte=100"`
	Value             decimal.Decimal `json:"value" binding:"decimal_gte0"`
	ExpectedCloseDate *time.Time      `json:"expectedCloseDate"`
	AssignedTo        string          `json:"assignedTo" binding:"max=100"`
	Description       string          `json:"description"`
}

// UpdateOpportunityRequest represents a partial opportunity update
type UpdateOpportunityRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	CustomerID        *uuid.UUID       `json:"customerId"`
	Stage             *string          `json:"stage" binding:"omitempty,oneof=prospecting qualification proposal negotiation closed_won closed_lost"`
	Probability       *int             `json:"probability" binding:"omitempty,gte=0,lte=100"`
	Value             *decimal.Decimal `json:"value" binding:"omitempty,decimal_gte0"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate"`
	AssignedTo        *string          `json:"assignedTo" binding:"omitempty,max=100"`
	Description       *string          `json:"description"`
}

func (r UpdateOpportunityRequest) patch() crm.OpportunityPatch {
	return crm.OpportunityPatch{
		Name:              r.Name,
		CustomerID:        r.CustomerID,
		Stage:             (*crm.OpportunityStage)(r.Stage),
		Probability:       r.Probability,
		Value:             r.Value,
		ExpectedCloseDate: r.ExpectedCloseDate,
		AssignedTo:        r.AssignedTo,
		Description:       r.Description,
	}
}

// ChangeStageRequest moves an opportunity through the pipeline
type ChangeStageRequest struct {
	Stage string `json:"stage" binding:"required,oneof=prospecting qualification proposal negotiation closed_won closed_lost"`
}

// =============================================================================
// Activity DTOs
// =============================================================================

// CreateActivityRequest represents a request to create an activity
type CreateActivityRequest struct {
	Type        string     `json:"type" binding:"required,oneof=call email meeting task note"`
	Subject     string     `json:"subject" binding:"required,min=1,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	RelatedType string     `json:"relatedType" binding:"required,oneof=customer lead opportunity"`
	RelatedID   uuid.UUID  `json:"relatedId" binding:"required"`
	AssignedTo  string     `json:"assignedTo" binding:"max=100"`
}

// UpdateActivityRequest represents a partial activity update
type UpdateActivityRequest struct {
	Type        *string    `json:"type" binding:"omitempty,oneof=call email meeting task note"`
	Subject     *string    `json:"subject" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status" binding:"omitempty,oneof=planned completed cancelled"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,max=100"`
}

func (r UpdateActivityRequest) patch() crm.ActivityPatch {
	return crm.ActivityPatch{
		Type:        (*crm.ActivityType)(r.Type),
		Subject:     r.Subject,
		Description: r.Description,
		Priority:    (*crm.ActivityPriority)(r.Priority),
		Status:      (*crm.ActivityStatus)(r.Status),
		DueDate:     r.DueDate,
		AssignedTo:  r.AssignedTo,
	}
}

// CompleteActivityRequest completes an activity with an optional outcome
type CompleteActivityRequest struct {
	Outcome string `json:"outcome" binding:"max=1000"`
}

// =============================================================================
// Dashboard
// =============================================================================

// StageSummary aggregates the open and closed deals of one stage
type StageSummary struct {
	Stage         crm.OpportunityStage `json:"stage"`
	Count         int                  `json:"count"`
	Value         decimal.Decimal      `json:"value"`
	WeightedValue decimal.Decimal      `json:"weightedValue"`
}

// DashboardSummary is the CRM dashboard
type DashboardSummary struct {
	CustomersByStatus  map[crm.CustomerStatus]int `json:"customersByStatus"`
	LeadsByStatus      map[crm.LeadStatus]int     `json:"leadsByStatus"`
	ActivitiesByStatus map[crm.ActivityStatus]int `json:"activitiesByStatus"`
	Pipeline           []StageSummary             `json:"pipeline"`
	PipelineValue      decimal.Decimal            `json:"pipelineValue"`
	WeightedPipeline   decimal.Decimal            `json:"weightedPipeline"`
	WonValue           decimal.Decimal            `json:"wonValue"`
	WinRate            float64                    `json:"winRate"`
	ConversionRate     float64                    `json:"conversionRate"`
	TotalRevenue       decimal.Decimal            `json:"totalRevenue"`
	UpcomingActivities []crm.Activity             `json:"upcomingActivities"`
	OverdueActivities  int                        `json:"overdueActivities"`
	GeneratedAt        time.Time                  `json:"generatedAt"`
}
