// Package mockdata produces plausible, reproducible CRM sample records.
package mockdata

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Counts is how many records of each kind to generate
type Counts struct {
	Customers     int
	Leads         int
	Opportunities int
	Activities    int
}

// Dataset is one generated, referentially consistent set of CRM records
type Dataset struct {
	Customers     []crm.Customer
	Leads         []crm.Lead
	Opportunities []crm.Opportunity
	Activities    []crm.Activity
}

// Generator draws every value from a single PCG stream, so the same seed
// and reference time always yield the same dataset.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a generator. Dates are spread around now.
func NewGenerator(seed uint64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now.Truncate(time.Second),
	}
}

// Generate produces a dataset. Opportunities reference generated customers;
// activities reference any generated record.
func (g *Generator) Generate(c Counts) Dataset {
	var ds Dataset
	for range c.Customers {
		ds.Customers = append(ds.Customers, g.customer())
	}
	for range c.Leads {
		ds.Leads = append(ds.Leads, g.lead(ds.Customers))
	}
	if len(ds.Customers) > 0 {
		for range c.Opportunities {
			ds.Opportunities = append(ds.Opportunities, g.opportunity(ds.Customers))
		}
	}
	for range c.Activities {
		if a, ok := g.activity(ds); ok {
			ds.Activities = append(ds.Activities, a)
		}
	}
	return ds
}

func (g *Generator) customer() crm.Customer {
	first, last := pick(g.rng, firstNames), pick(g.rng, lastNames)
	company := g.company()
	loc := pick(g.rng, cities)
	created := g.pastDate(540)

	c := crm.Customer{
		BaseAggregateRoot: g.root(created),
		Name:              first + " " + last,
		Company:           company,
		Email:             g.email(first, last, company),
		Phone:             g.phone(),
		Industry:          pick(g.rng, industries),
		Status:            weighted(g.rng, []crm.CustomerStatus{crm.CustomerStatusActive, crm.CustomerStatusProspect, crm.CustomerStatusInactive, crm.CustomerStatusChurned}, []int{55, 25, 12, 8}),
		Tier:              weighted(g.rng, []crm.CustomerTier{crm.CustomerTierStandard, crm.CustomerTierPremium, crm.CustomerTierEnterprise}, []int{60, 28, 12}),
		AssignedTo:        pick(g.rng, owners),
		Address:           fmt.Sprintf("%d %s", 1+g.rng.IntN(400), pick(g.rng, streets)),
		City:              loc.City,
		State:             loc.State,
		PostalCode:        fmt.Sprintf("%05d", g.rng.IntN(100000)),
		Country:           loc.Country,
		TotalRevenue:      g.money(0, 250000),
		Tags:              g.tags(),
	}
	if c.Status == crm.CustomerStatusProspect {
		c.TotalRevenue = decimal.Zero
	}
	if g.rng.IntN(4) > 0 {
		at := g.between(created, g.now)
		c.LastContactAt = &at
	}
	return c
}

func (g *Generator) lead(customers []crm.Customer) crm.Lead {
	first, last := pick(g.rng, firstNames), pick(g.rng, lastNames)
	company := g.company()
	created := g.pastDate(180)

	l := crm.Lead{
		BaseAggregateRoot: g.root(created),
		FirstName:         first,
		LastName:          last,
		Company:           company,
		Title:             pick(g.rng, titles),
		Email:             g.email(first, last, company),
		Phone:             g.phone(),
		Source:            pick(g.rng, crm.LeadSources),
		Status:            weighted(g.rng, crm.LeadStatuses, []int{25, 25, 18, 10, 12, 10}),
		Score:             g.rng.IntN(101),
		EstimatedValue:    g.money(1000, 80000),
		AssignedTo:        pick(g.rng, owners),
	}
	if l.Status == crm.LeadStatusConverted {
		if len(customers) == 0 {
			l.Status = crm.LeadStatusQualified
		} else {
			id := pick(g.rng, customers).ID
			at := g.between(created, g.now)
			l.ConvertedCustomerID = &id
			l.ConvertedAt = &at
		}
	}
	return l
}

func (g *Generator) opportunity(customers []crm.Customer) crm.Opportunity {
	customer := pick(g.rng, customers)
	created := g.pastDate(365)
	stage := weighted(g.rng, crm.OpportunityStages, []int{20, 18, 18, 14, 18, 12})

	o := crm.Opportunity{
		BaseAggregateRoot: g.root(created),
		Name:              customer.Company + " - " + pick(g.rng, dealNames),
		CustomerID:        customer.ID,
		Stage:             stage,
		Probability:       stage.Probability(),
		Value:             g.money(500, 150000),
		AssignedTo:        customer.AssignedTo,
	}
	expected := created.AddDate(0, 0, 14+g.rng.IntN(120))
	o.ExpectedCloseDate = &expected
	if stage.IsClosed() {
		closed := g.between(created, g.now)
		o.ActualCloseDate = &closed
	}
	return o
}

func (g *Generator) activity(ds Dataset) (crm.Activity, bool) {
	type target struct {
		kind crm.RelatedType
		id   uuid.UUID
	}
	var targets []target
	if len(ds.Customers) > 0 {
		targets = append(targets, target{crm.RelatedCustomer, pick(g.rng, ds.Customers).ID})
	}
	if len(ds.Leads) > 0 {
		targets = append(targets, target{crm.RelatedLead, pick(g.rng, ds.Leads).ID})
	}
	if len(ds.Opportunities) > 0 {
		targets = append(targets, target{crm.RelatedOpportunity, pick(g.rng, ds.Opportunities).ID})
	}
	if len(targets) == 0 {
		return crm.Activity{}, false
	}
	t := pick(g.rng, targets)

	kind := weighted(g.rng,
		[]crm.ActivityType{crm.ActivityTypeCall, crm.ActivityTypeEmail, crm.ActivityTypeMeeting, crm.ActivityTypeTask, crm.ActivityTypeNote},
		[]int{30, 25, 20, 15, 10})
	created := g.pastDate(90)
	due := created.Add(time.Duration(g.rng.IntN(30*24)) * time.Hour)

	a := crm.Activity{
		BaseAggregateRoot: g.root(created),
		Type:              kind,
		Subject:           pick(g.rng, activitySubjects[string(kind)]),
		Status:            crm.ActivityStatusPlanned,
		Priority:          weighted(g.rng, []crm.ActivityPriority{crm.PriorityLow, crm.PriorityMedium, crm.PriorityHigh}, []int{30, 50, 20}),
		DueDate:           &due,
		RelatedType:       t.kind,
		RelatedID:         t.id,
		AssignedTo:        pick(g.rng, owners),
	}
	switch {
	case due.Before(g.now) && g.rng.IntN(5) > 0:
		a.Status = crm.ActivityStatusCompleted
		done := due
		a.CompletedAt = &done
	case g.rng.IntN(12) == 0:
		a.Status = crm.ActivityStatusCancelled
	}
	return a, true
}

func (g *Generator) root(created time.Time) shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{
		ID:        g.uuid(),
		CreatedAt: created,
		UpdatedAt: g.between(created, g.now),
	}}
}

// uuid builds a version 4 UUID from the generator stream
func (g *Generator) uuid() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], g.rng.Uint64())
	binary.BigEndian.PutUint64(u[8:], g.rng.Uint64())
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

func (g *Generator) company() string {
	return pick(g.rng, companyPrefixes) + " " + pick(g.rng, companySuffixes)
}

func (g *Generator) email(first, last, company string) string {
	domain := strings.ToLower(strings.ReplaceAll(company, " ", "")) + ".example.com"
	return strings.ToLower(first+"."+last) + "@" + domain
}

func (g *Generator) phone() string {
	return fmt.Sprintf("+1 (%03d) %03d-%04d", 200+g.rng.IntN(800), g.rng.IntN(1000), g.rng.IntN(10000))
}

func (g *Generator) tags() []string {
	out := []string{}
	for _, t := range tags {
		if g.rng.IntN(5) == 0 {
			out = append(out, t)
		}
	}
	return out
}

// money returns a whole-cent amount in [lo, hi)
func (g *Generator) money(lo, hi int64) decimal.Decimal {
	cents := lo*100 + g.rng.Int64N((hi-lo)*100)
	return decimal.New(cents, -2)
}

func (g *Generator) pastDate(maxDays int) time.Time {
	return g.now.Add(-time.Duration(g.rng.Int64N(int64(maxDays) * int64(24*time.Hour))))
}

func (g *Generator) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.rng.Int64N(int64(span)))).Truncate(time.Second)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func weighted[T any](rng *rand.Rand, items []T, weights []int) T {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return items[i]
		}
		n -= w
	}
	return items[len(items)-1]
}
