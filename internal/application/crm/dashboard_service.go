package crm

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 10
)

// DashboardService computes the CRM dashboard
type DashboardService struct {
	base
	now func() time.Time
}

// NewDashboardService creates a dashboard service
func NewDashboardService(b base) *DashboardService {
	return &DashboardService{base: b, now: time.Now}
}

// Summary aggregates counts, pipeline values and upcoming work
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "crm_dashboard", "summary")
	defer span.End()

	if err := s.call(ctx, "load dashboard"); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	customers, err := s.repos.Customers.All(ctx)
	if err != nil {
		return nil, err
	}
	leads, err := s.repos.Leads.All(ctx)
	if err != nil {
		return nil, err
	}
	opportunities, err := s.repos.Opportunities.All(ctx)
	if err != nil {
		return nil, err
	}
	activities, err := s.repos.Activities.All(ctx)
	if err != nil {
		return nil, err
	}

	return summarize(s.now(), customers, leads, opportunities, activities), nil
}

func summarize(now time.Time, customers []crm.Customer, leads []crm.Lead, opportunities []crm.Opportunity, activities []crm.Activity) *DashboardSummary {
	sum := &DashboardSummary{
		CustomersByStatus:  make(map[crm.CustomerStatus]int),
		LeadsByStatus:      make(map[crm.LeadStatus]int),
		ActivitiesByStatus: make(map[crm.ActivityStatus]int),
		PipelineValue:      decimal.Zero,
		WeightedPipeline:   decimal.Zero,
		WonValue:           decimal.Zero,
		TotalRevenue:       decimal.Zero,
		UpcomingActivities: []crm.Activity{},
		GeneratedAt:        now,
	}

	for _, c := range customers {
		sum.CustomersByStatus[c.Status]++
		sum.TotalRevenue = sum.TotalRevenue.Add(c.TotalRevenue)
	}

	converted := 0
	for _, l := range leads {
		sum.LeadsByStatus[l.Status]++
		if l.IsConverted() {
			converted++
		}
	}
	sum.ConversionRate = percent(converted, len(leads))

	stages := make(map[crm.OpportunityStage]*StageSummary, len(crm.OpportunityStages))
	for _, st := range crm.OpportunityStages {
		stages[st] = &StageSummary{Stage: st, Value: decimal.Zero, WeightedValue: decimal.Zero}
	}
	won, lost := 0, 0
	for _, o := range opportunities {
		st, ok := stages[o.Stage]
		if !ok {
			continue
		}
		weighted := o.WeightedValue()
		st.Count++
		st.Value = st.Value.Add(o.Value)
		st.WeightedValue = st.WeightedValue.Add(weighted)

		switch o.Stage {
		case crm.StageClosedWon:
			won++
			sum.WonValue = sum.WonValue.Add(o.Value)
		case crm.StageClosedLost:
			lost++
		default:
			sum.PipelineValue = sum.PipelineValue.Add(o.Value)
			sum.WeightedPipeline = sum.WeightedPipeline.Add(weighted)
		}
	}
	for _, st := range crm.OpportunityStages {
		sum.Pipeline = append(sum.Pipeline, *stages[st])
	}
	sum.WinRate = percent(won, won+lost)

	for _, a := range activities {
		sum.ActivitiesByStatus[a.Status]++
		switch {
		case a.IsUpcoming(now, upcomingWindow):
			sum.UpcomingActivities = append(sum.UpcomingActivities, a)
		case a.IsOverdue(now):
			sum.OverdueActivities++
		}
	}
	slices.SortStableFunc(sum.UpcomingActivities, func(a, b crm.Activity) int {
		return a.DueDate.Compare(*b.DueDate)
	})
	if len(sum.UpcomingActivities) > upcomingLimit {
		sum.UpcomingActivities = sum.UpcomingActivities[:upcomingLimit]
	}

	return sum
}

// percent returns part/total as a percentage with one decimal
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
