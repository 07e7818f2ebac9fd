package crm

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// ActivityService handles activity operations
type ActivityService struct {
	base
}

// List returns a page of activities
func (s *ActivityService) List(ctx context.Context, q query.Query) (query.Page[crm.Activity], error) {
	if err := s.call(ctx, "fetch activities"); err != nil {
		return query.Page[crm.Activity]{}, err
	}
	return s.repos.Activities.List(ctx, q)
}

// ListForRelated returns every activity attached to a record, newest first
func (s *ActivityService) ListForRelated(ctx context.Context, relatedType crm.RelatedType, relatedID uuid.UUID) ([]crm.Activity, error) {
	if !relatedType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RELATED_TYPE", "Related type must be customer, lead or opportunity")
	}
	if err := s.call(ctx, "fetch related activities"); err != nil {
		return nil, err
	}
	return s.repos.Activities.FindByRelated(ctx, relatedType, relatedID)
}

// Get returns one activity
func (s *ActivityService) Get(ctx context.Context, id uuid.UUID) (*crm.Activity, error) {
	if err := s.call(ctx, "fetch activity"); err != nil {
		return nil, err
	}
	return s.repos.Activities.FindByID(ctx, id)
}

// Create creates an activity attached to an existing record
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*crm.Activity, error) {
	if err := s.call(ctx, "create activity"); err != nil {
		return nil, err
	}

	relatedType := crm.RelatedType(req.RelatedType)
	if err := s.ensureRelated(ctx, relatedType, req.RelatedID); err != nil {
		return nil, err
	}

	activity, err := crm.NewActivity(crm.ActivityType(req.Type), req.Subject, relatedType, req.RelatedID)
	if err != nil {
		return nil, err
	}
	patch := crm.ActivityPatch{
		Description: &req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  &req.AssignedTo,
	}
	if req.Priority != "" {
		p := crm.ActivityPriority(req.Priority)
		patch.Priority = &p
	}
	if err := activity.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repos.Activities.Save(ctx, activity); err != nil {
		return nil, err
	}
	s.publish(ctx, activity)
	return activity, nil
}

// Update applies a partial update
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, req UpdateActivityRequest) (*crm.Activity, error) {
	if err := s.call(ctx, "update activity"); err != nil {
		return nil, err
	}

	activity, err := s.repos.Activities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := activity.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.repos.Activities.Save(ctx, activity); err != nil {
		return nil, err
	}
	s.publish(ctx, activity)
	return activity, nil
}

// Complete marks an activity done
func (s *ActivityService) Complete(ctx context.Context, id uuid.UUID, outcome string) (*crm.Activity, error) {
	return s.transition(ctx, id, "complete activity", func(a *crm.Activity) error {
		return a.Complete(outcome)
	})
}

// Cancel calls an activity off
func (s *ActivityService) Cancel(ctx context.Context, id uuid.UUID) (*crm.Activity, error) {
	return s.transition(ctx, id, "cancel activity", (*crm.Activity).Cancel)
}

// Delete removes an activity
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.call(ctx, "delete activity"); err != nil {
		return err
	}
	return s.repos.Activities.Delete(ctx, id)
}

func (s *ActivityService) transition(ctx context.Context, id uuid.UUID, op string, fn func(*crm.Activity) error) (*crm.Activity, error) {
	if err := s.call(ctx, op); err != nil {
		return nil, err
	}

	activity, err := s.repos.Activities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(activity); err != nil {
		return nil, err
	}
	if err := s.repos.Activities.Save(ctx, activity); err != nil {
		return nil, err
	}
	s.publish(ctx, activity)
	return activity, nil
}

func (s *ActivityService) ensureRelated(ctx context.Context, relatedType crm.RelatedType, id uuid.UUID) error {
	var err error
	switch relatedType {
	case crm.RelatedCustomer:
		_, err = s.repos.Customers.FindByID(ctx, id)
	case crm.RelatedLead:
		_, err = s.repos.Leads.FindByID(ctx, id)
	case crm.RelatedOpportunity:
		_, err = s.repos.Opportunities.FindByID(ctx, id)
	default:
		err = shared.NewDomainError("INVALID_RELATED_TYPE", "Related type must be customer, lead or opportunity")
	}
	return err
}
