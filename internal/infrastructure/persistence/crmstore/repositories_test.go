package crmstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/kvstore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCustomer(t *testing.T, name, city string) *crm.Customer {
	t.Helper()
	c, err := crm.NewCustomer(name, "")
	require.NoError(t, err)
	c.City = city
	return c
}

func TestCustomerRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewCustomerRepository(store)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	c := mustCustomer(t, "Acme", "Lisbon")
	c.TotalRevenue = decimal.RequireFromString("1200.50")
	require.NoError(t, repo.Save(ctx, c))

	raw, err := store.Get(ctx, crm.KeyCustomers)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalRevenue":"1200.5"`)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.True(t, c.TotalRevenue.Equal(got.TotalRevenue))

	got.City = "Porto"
	require.NoError(t, repo.Save(ctx, got))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Porto", all[0].City)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), shared.ErrNotFound)
}

func TestCustomerRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(kvstore.NewMemoryStore())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Acme", "Globex", "Initech", "Acme Labs"} {
		c := mustCustomer(t, name, "Lisbon")
		c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(ctx, c))
	}

	t.Run("newest first by default", func(t *testing.T) {
		page, err := repo.List(ctx, query.New())
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		assert.Equal(t, "Acme Labs", page.Items[0].Name)
	})

	t.Run("search uses customer fields", func(t *testing.T) {
		page, err := repo.List(ctx, query.Query{Search: "acme", SortBy: "name"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Acme", page.Items[0].Name)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := repo.List(ctx, query.Query{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})
}

func TestActivityRepository_Related(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(kvstore.NewMemoryStore())
	customerID := uuid.New()

	for i := range 3 {
		a, err := crm.NewActivity(crm.ActivityTypeCall, "call", crm.RelatedCustomer, customerID)
		require.NoError(t, err)
		a.CreatedAt = a.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, a))
	}
	other, _ := crm.NewActivity(crm.ActivityTypeNote, "note", crm.RelatedLead, customerID)
	require.NoError(t, repo.Save(ctx, other))

	related, err := repo.FindByRelated(ctx, crm.RelatedCustomer, customerID)
	require.NoError(t, err)
	require.Len(t, related, 3)
	assert.True(t, related[0].CreatedAt.After(related[2].CreatedAt))

	n, err := repo.DeleteByRelated(ctx, crm.RelatedCustomer, customerID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, _ := repo.All(ctx)
	assert.Len(t, all, 1)
}

func TestOpportunityRepository_DeleteByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewOpportunityRepository(kvstore.NewMemoryStore())
	keep, drop := uuid.New(), uuid.New()

	for _, id := range []uuid.UUID{keep, drop, drop} {
		o, err := crm.NewOpportunity("deal", id, crm.StageProposal, decimal.NewFromInt(100), nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))
	}

	n, err := repo.DeleteByCustomer(ctx, drop)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, _ := repo.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].CustomerID)
}

func TestLeadRepository_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository(kvstore.NewMemoryStore())

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := crm.NewLead("Ada", "Lovelace", "", crm.LeadSourceWebsite)
			if assert.NoError(t, err) {
				assert.NoError(t, repo.Save(ctx, l))
			}
		}()
	}
	wg.Wait()

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 25)
}

func TestCollection_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, crm.KeyLeads, []byte("{not json")))

	_, err := NewLeadRepository(store).All(ctx)
	assert.ErrorContains(t, err, "decode crm_leads")
}
