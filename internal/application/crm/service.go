// Package crm holds the application services of the CRM mock API. Every
// public operation passes through a Simulator before touching the store.
package crm

import (
	"context"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Repositories bundles the CRM repositories
type Repositories struct {
	Customers     crm.CustomerRepository
	Leads         crm.LeadRepository
	Opportunities crm.OpportunityRepository
	Activities    crm.ActivityRepository
}

// Services bundles the CRM application services
type Services struct {
	Customers     *CustomerService
	Leads         *LeadService
	Opportunities *OpportunityService
	Activities    *ActivityService
	Dashboard     *DashboardService
}

// NewServices wires all CRM services on the same repositories, simulator and
// event publisher.
func NewServices(repos Repositories, sim *Simulator, events shared.EventPublisher) *Services {
	b := base{repos: repos, sim: sim, events: events}
	return &Services{
		Customers:     &CustomerService{base: b},
		Leads:         &LeadService{base: b},
		Opportunities: &OpportunityService{base: b},
		Activities:    &ActivityService{base: b},
		Dashboard:     NewDashboardService(b),
	}
}

type base struct {
	repos  Repositories
	sim    *Simulator
	events shared.EventPublisher
}

func (b base) call(ctx context.Context, op string) error {
	if b.sim == nil {
		return nil
	}
	return b.sim.Call(ctx, op)
}

// publish dispatches and clears the pending events of the aggregates
func (b base) publish(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if len(events) == 0 || b.events == nil {
			continue
		}
		if err := b.events.Publish(ctx, events...); err != nil {
			logger.L(ctx).Warn("failed to publish crm events", zap.Error(err))
		}
	}
}
