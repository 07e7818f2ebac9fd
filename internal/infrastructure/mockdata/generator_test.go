package mockdata

import (
	"context"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/bizconsole/backend/internal/infrastructure/persistence/crmstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42, refTime).Generate(DefaultCounts)
	b := NewGenerator(42, refTime).Generate(DefaultCounts)
	assert.Equal(t, a, b)

	c := NewGenerator(43, refTime).Generate(DefaultCounts)
	assert.NotEqual(t, a.Customers[0].ID, c.Customers[0].ID)
}

func TestGenerator_ReferentialIntegrity(t *testing.T) {
	ds := NewGenerator(7, refTime).Generate(DefaultCounts)
	require.Len(t, ds.Customers, DefaultCounts.Customers)
	require.Len(t, ds.Leads, DefaultCounts.Leads)
	require.Len(t, ds.Opportunities, DefaultCounts.Opportunities)
	require.Len(t, ds.Activities, DefaultCounts.Activities)

	ids := map[crm.RelatedType]map[uuid.UUID]bool{
		crm.RelatedCustomer:    {},
		crm.RelatedLead:        {},
		crm.RelatedOpportunity: {},
	}
	for _, c := range ds.Customers {
		assert.Equal(t, uuid.Version(4), c.ID.Version())
		assert.True(t, c.Status.IsValid())
		assert.False(t, c.TotalRevenue.IsNegative())
		ids[crm.RelatedCustomer][c.ID] = true
	}
	for _, l := range ds.Leads {
		assert.True(t, l.Status.IsValid())
		assert.True(t, l.Score >= 0 && l.Score <= 100)
		if l.Status == crm.LeadStatusConverted {
			require.NotNil(t, l.ConvertedCustomerID)
			assert.True(t, ids[crm.RelatedCustomer][*l.ConvertedCustomerID])
		}
		ids[crm.RelatedLead][l.ID] = true
	}
	for _, o := range ds.Opportunities {
		assert.True(t, ids[crm.RelatedCustomer][o.CustomerID], "opportunity %s references unknown customer", o.ID)
		assert.Equal(t, o.Stage.Probability(), o.Probability)
		assert.Equal(t, o.Stage.IsClosed(), o.ActualCloseDate != nil)
		ids[crm.RelatedOpportunity][o.ID] = true
	}
	for _, a := range ds.Activities {
		assert.True(t, ids[a.RelatedType][a.RelatedID], "activity %s references unknown %s", a.ID, a.RelatedType)
		assert.Equal(t, a.Status == crm.ActivityStatusCompleted, a.CompletedAt != nil)
		assert.False(t, a.CreatedAt.After(refTime))
	}
}

func TestGenerator_NoCustomers(t *testing.T) {
	ds := NewGenerator(1, refTime).Generate(Counts{Leads: 5, Opportunities: 5, Activities: 5})
	assert.Empty(t, ds.Opportunities)
	assert.Len(t, ds.Activities, 5)
	for _, l := range ds.Leads {
		assert.NotEqual(t, crm.LeadStatusConverted, l.Status)
	}
	for _, a := range ds.Activities {
		assert.Equal(t, crm.RelatedLead, a.RelatedType)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	counts := Counts{Customers: 5, Leads: 4, Opportunities: 6, Activities: 8}

	res, err := Seed(ctx, store, SeedOptions{Seed: 9, Counts: counts, Now: refTime}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Written[crm.KeyCustomers])
	assert.Empty(t, res.Skipped)

	customers, err := crmstore.NewCustomerRepository(store).All(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 5)

	t.Run("populated keys are skipped", func(t *testing.T) {
		res, err := Seed(ctx, store, SeedOptions{Seed: 10, Counts: Counts{Customers: 2}, Now: refTime}, nil)
		require.NoError(t, err)
		assert.Contains(t, res.Skipped, crm.KeyCustomers)
		assert.NotContains(t, res.Written, crm.KeyCustomers)

		customers, err := crmstore.NewCustomerRepository(store).All(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 5)
	})

	t.Run("force replaces data", func(t *testing.T) {
		_, err := Seed(ctx, store, SeedOptions{Seed: 10, Counts: Counts{Customers: 2}, Force: true, Now: refTime}, nil)
		require.NoError(t, err)

		customers, err := crmstore.NewCustomerRepository(store).All(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 2)
		opps, err := crmstore.NewOpportunityRepository(store).All(ctx)
		require.NoError(t, err)
		assert.Empty(t, opps)
	})
}
