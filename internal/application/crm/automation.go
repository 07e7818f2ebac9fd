package crm

import (
	"context"
	"fmt"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// RegisterAutomations subscribes the CRM follow-up rules to the event bus:
//   - a converted lead leaves a note on the new customer
//   - a won deal adds its value to the customer's revenue (and a reopened one removes it)
//   - a completed activity updates the customer's last contact date
//
// Handlers work on the repositories directly, so they never see simulated failures.
func RegisterAutomations(bus shared.EventSubscriber, repos Repositories, log *zap.Logger) {
	a := &automations{repos: repos, logger: log}
	bus.Subscribe(event.HandlerFunc(a.onLeadConverted, crm.EventTypeLeadConverted))
	bus.Subscribe(event.HandlerFunc(a.onStageChanged, crm.EventTypeOpportunityStageChanged))
	bus.Subscribe(event.HandlerFunc(a.onActivityCompleted, crm.EventTypeActivityCompleted))
}

type automations struct {
	repos  Repositories
	logger *zap.Logger
}

func (a *automations) onLeadConverted(ctx context.Context, ev shared.DomainEvent) error {
	e, ok := ev.(*crm.LeadConvertedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}

	note, err := crm.NewActivity(crm.ActivityTypeNote, "Converted from lead "+e.LeadName, crm.RelatedCustomer, e.CustomerID)
	if err != nil {
		return err
	}
	if err := note.Complete(""); err != nil {
		return err
	}
	note.ClearDomainEvents()
	return a.repos.Activities.Save(ctx, note)
}

func (a *automations) onStageChanged(ctx context.Context, ev shared.DomainEvent) error {
	e, ok := ev.(*crm.OpportunityStageChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}

	if e.Revenue == nil {
		return nil
	}

	customer, err := a.repos.Customers.FindByID(ctx, e.Revenue.CustomerID)
	if err != nil {
		return err
	}
	customer.RecordRevenue(e.Revenue.Amount)
	a.logger.Debug("customer revenue updated",
		zap.String("customer_id", customer.ID.String()),
		zap.String("amount", e.Revenue.Amount.String()),
	)
	return a.repos.Customers.Save(ctx, customer)
}

func (a *automations) onActivityCompleted(ctx context.Context, ev shared.DomainEvent) error {
	e, ok := ev.(*crm.ActivityCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}

	customerID := e.RelatedID
	switch e.RelatedType {
	case crm.RelatedCustomer:
	case crm.RelatedOpportunity:
		opp, err := a.repos.Opportunities.FindByID(ctx, e.RelatedID)
		if err != nil {
			return err
		}
		customerID = opp.CustomerID
	default:
		return nil
	}

	customer, err := a.repos.Customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	customer.MarkContacted(e.OccurredAt())
	customer.ClearDomainEvents()
	return a.repos.Customers.Save(ctx, customer)
}
