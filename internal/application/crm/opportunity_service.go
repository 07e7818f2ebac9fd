package crm

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// OpportunityService handles opportunity operations
type OpportunityService struct {
	base
}

// List returns a page of opportunities
func (s *OpportunityService) List(ctx context.Context, q query.Query) (query.Page[crm.Opportunity], error) {
	if err := s.call(ctx, "fetch opportunities"); err != nil {
		return query.Page[crm.Opportunity]{}, err
	}
	return s.repos.Opportunities.List(ctx, q)
}

// Get returns one opportunity
func (s *OpportunityService) Get(ctx context.Context, id uuid.UUID) (*crm.Opportunity, error) {
	if err := s.call(ctx, "fetch opportunity"); err != nil {
		return nil, err
	}
	return s.repos.Opportunities.FindByID(ctx, id)
}

// Create creates an opportunity for an existing customer
func (s *OpportunityService) Create(ctx context.Context, req CreateOpportunityRequest) (*crm.Opportunity, error) {
	if err := s.call(ctx, "create opportunity"); err != nil {
		return nil, err
	}
	if _, err := s.repos.Customers.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	opp, err := crm.NewOpportunity(req.Name, req.CustomerID, crm.OpportunityStage(req.Stage), req.Value, req.Probability)
	if err != nil {
		return nil, err
	}
	opp.ExpectedCloseDate = req.ExpectedCloseDate
	opp.AssignedTo = req.AssignedTo
	opp.Description = req.Description

	if err := s.repos.Opportunities.Save(ctx, opp); err != nil {
		return nil, err
	}
	s.publish(ctx, opp)
	return opp, nil
}

// Update applies a partial update. A stage change re-derives probability
// unless the request also sets it.
func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, req UpdateOpportunityRequest) (*crm.Opportunity, error) {
	if err := s.call(ctx, "update opportunity"); err != nil {
		return nil, err
	}

	opp, err := s.repos.Opportunities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil && *req.CustomerID != opp.CustomerID {
		if _, err := s.repos.Customers.FindByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := opp.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Opportunities.Save(ctx, opp); err != nil {
		return nil, err
	}
	s.publish(ctx, opp)
	return opp, nil
}

// ChangeStage moves an opportunity to another pipeline stage
func (s *OpportunityService) ChangeStage(ctx context.Context, id uuid.UUID, stage crm.OpportunityStage) (*crm.Opportunity, error) {
	if err := s.call(ctx, "update opportunity stage"); err != nil {
		return nil, err
	}

	opp, err := s.repos.Opportunities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := opp.ChangeStage(stage); err != nil {
		return nil, err
	}
	if err := s.repos.Opportunities.Save(ctx, opp); err != nil {
		return nil, err
	}
	s.publish(ctx, opp)
	return opp, nil
}

// Delete removes an opportunity and its activities
func (s *OpportunityService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.call(ctx, "delete opportunity"); err != nil {
		return err
	}
	if err := s.repos.Opportunities.Delete(ctx, id); err != nil {
		return err
	}
	_, err := s.repos.Activities.DeleteByRelated(ctx, crm.RelatedOpportunity, id)
	return err
}
