package crm

import (
	"context"
	"strings"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"github.com/bizconsole/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles lead operations
type LeadService struct {
	base
}

// List returns a page of leads
func (s *LeadService) List(ctx context.Context, q query.Query) (query.Page[crm.Lead], error) {
	if err := s.call(ctx, "fetch leads"); err != nil {
		return query.Page[crm.Lead]{}, err
	}
	return s.repos.Leads.List(ctx, q)
}

// Get returns one lead
func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	if err := s.call(ctx, "fetch lead"); err != nil {
		return nil, err
	}
	return s.repos.Leads.FindByID(ctx, id)
}

// Create creates a lead in status new
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest) (*crm.Lead, error) {
	if err := s.call(ctx, "create lead"); err != nil {
		return nil, err
	}

	lead, err := crm.NewLead(req.FirstName, req.LastName, req.Email, crm.LeadSource(req.Source))
	if err != nil {
		return nil, err
	}
	if err := lead.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Leads.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.publish(ctx, lead)
	return lead, nil
}

// Update applies a partial update
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req UpdateLeadRequest) (*crm.Lead, error) {
	if err := s.call(ctx, "update lead"); err != nil {
		return nil, err
	}

	lead, err := s.repos.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lead.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Leads.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.publish(ctx, lead)
	return lead, nil
}

// ChangeStatus sets any valid status; progression is not enforced
func (s *LeadService) ChangeStatus(ctx context.Context, id uuid.UUID, status crm.LeadStatus) (*crm.Lead, error) {
	if err := s.call(ctx, "update lead status"); err != nil {
		return nil, err
	}

	lead, err := s.repos.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lead.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repos.Leads.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.publish(ctx, lead)
	return lead, nil
}

// SuggestedNextStatuses returns the conventional next statuses of a lead
func (s *LeadService) SuggestedNextStatuses(ctx context.Context, id uuid.UUID) ([]crm.LeadStatus, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return crm.SuggestedNextStatuses(lead.Status), nil
}

// Delete removes a lead and its activities
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.call(ctx, "delete lead"); err != nil {
		return err
	}
	if err := s.repos.Leads.Delete(ctx, id); err != nil {
		return err
	}
	_, err := s.repos.Activities.DeleteByRelated(ctx, crm.RelatedLead, id)
	return err
}

// Convert creates a customer (and optionally an opportunity) from a lead
// and marks the lead converted.
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID, req ConvertLeadRequest) (*ConvertLeadResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lead", "convert")
	defer span.End()
	telemetry.SetAttribute(span, "lead_id", id.String())

	if err := s.call(ctx, "convert lead"); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lead, err := s.repos.Leads.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if lead.IsConverted() {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Lead is already converted")
	}

	customer, err := customerFromLead(lead, req)
	if err != nil {
		return nil, err
	}

	var opportunity *crm.Opportunity
	if req.CreateOpportunity {
		opportunity, err = opportunityFromLead(lead, customer, req)
		if err != nil {
			return nil, err
		}
	}

	var opportunityID *uuid.UUID
	if opportunity != nil {
		opportunityID = &opportunity.ID
	}
	if err := lead.MarkConverted(customer.ID, opportunityID); err != nil {
		return nil, err
	}

	// the three saves are not atomic; a failed step removes what the
	// earlier ones wrote so the lead can be converted again
	var undo []func(context.Context) error
	fail := func(err error) (*ConvertLeadResult, error) {
		telemetry.RecordError(span, err)
		s.undoConvert(ctx, lead.ID, undo)
		return nil, err
	}

	if err := s.repos.Customers.Save(ctx, customer); err != nil {
		return fail(err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.repos.Customers.Delete(ctx, customer.ID) })
	if opportunity != nil {
		if err := s.repos.Opportunities.Save(ctx, opportunity); err != nil {
			return fail(err)
		}
		undo = append(undo, func(ctx context.Context) error { return s.repos.Opportunities.Delete(ctx, opportunity.ID) })
	}
	if err := s.repos.Leads.Save(ctx, lead); err != nil {
		return fail(err)
	}

	telemetry.SetAttribute(span, "customer_id", customer.ID.String())
	logger.L(ctx).Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.Bool("opportunity_created", opportunity != nil),
	)

	result := &ConvertLeadResult{Lead: lead, Customer: customer, Opportunity: opportunity}
	if opportunity != nil {
		s.publish(ctx, customer, opportunity, lead)
	} else {
		s.publish(ctx, customer, lead)
	}
	return result, nil
}

// undoConvert runs undo in reverse order. It outlives a canceled request.
func (s *LeadService) undoConvert(ctx context.Context, leadID uuid.UUID, undo []func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			logger.L(ctx).Error("failed to undo partial lead conversion",
				zap.String("lead_id", leadID.String()),
				zap.Error(err),
			)
		}
	}
}

func customerFromLead(lead *crm.Lead, req ConvertLeadRequest) (*crm.Customer, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = lead.Company
	}
	if name == "" {
		name = lead.FullName()
	}

	customer, err := crm.NewCustomer(name, lead.Email)
	if err != nil {
		return nil, err
	}
	err = customer.Apply(crm.CustomerPatch{
		Company:    &lead.Company,
		Phone:      &lead.Phone,
		AssignedTo: &lead.AssignedTo,
		Notes:      &lead.Notes,
	})
	return customer, err
}

func opportunityFromLead(lead *crm.Lead, customer *crm.Customer, req ConvertLeadRequest) (*crm.Opportunity, error) {
	name := strings.TrimSpace(req.OpportunityName)
	if name == "" {
		name = customer.Name + " - new business"
	}
	value := lead.EstimatedValue
	if req.OpportunityValue != nil {
		value = *req.OpportunityValue
	}

	opp, err := crm.NewOpportunity(name, customer.ID, crm.StageQualification, value, nil)
	if err != nil {
		return nil, err
	}
	leadID := lead.ID
	opp.LeadID = &leadID
	opp.AssignedTo = lead.AssignedTo
	opp.ExpectedCloseDate = req.ExpectedCloseDate
	return opp, nil
}
