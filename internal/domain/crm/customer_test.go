package crm

import (
	"errors"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates prospect with defaults", func(t *testing.T) {
		c, err := NewCustomer("Acme Corp", "sales@acme.io")

		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, CustomerStatusProspect, c.Status)
		assert.Equal(t, CustomerTierStandard, c.Tier)
		assert.True(t, c.TotalRevenue.IsZero())
		assert.NotNil(t, c.Tags)
		assert.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCustomerCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		c, err := NewCustomer("  ", "")

		assert.Nil(t, c)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_NAME", de.Code)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewCustomer("Acme", "not-an-email")
		assert.ErrorContains(t, err, "Invalid email")
	})
}

func TestCustomer_Apply(t *testing.T) {
	c, err := NewCustomer("Acme", "")
	require.NoError(t, err)
	c.ClearDomainEvents()

	t.Run("only set fields change", func(t *testing.T) {
		city := "Lisbon"
		tier := CustomerTierPremium
		require.NoError(t, c.Apply(CustomerPatch{City: &city, Tier: &tier, Tags: []string{"vip"}}))

		assert.Equal(t, "Acme", c.Name)
		assert.Equal(t, "Lisbon", c.City)
		assert.Equal(t, CustomerTierPremium, c.Tier)
		assert.Equal(t, []string{"vip"}, c.Tags)
		assert.Empty(t, c.GetDomainEvents())
	})

	t.Run("invalid patch leaves customer untouched", func(t *testing.T) {
		city := "Porto"
		phone := "call me maybe"
		err := c.Apply(CustomerPatch{City: &city, Phone: &phone})

		assert.Error(t, err)
		assert.Equal(t, "Lisbon", c.City)
	})

	t.Run("status change raises event", func(t *testing.T) {
		status := CustomerStatusActive
		require.NoError(t, c.Apply(CustomerPatch{Status: &status}))

		assert.Equal(t, CustomerStatusActive, c.Status)
		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*CustomerStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, CustomerStatusProspect, ev.OldStatus)
		assert.Equal(t, CustomerStatusActive, ev.NewStatus)
	})

	t.Run("rejects negative revenue", func(t *testing.T) {
		neg := decimal.NewFromInt(-1)
		assert.Error(t, c.Apply(CustomerPatch{TotalRevenue: &neg}))
	})
}

func TestCustomer_ChangeStatus(t *testing.T) {
	c, _ := NewCustomer("Acme", "")

	assert.Error(t, c.ChangeStatus("gone"))
	require.NoError(t, c.ChangeStatus(CustomerStatusChurned))
	assert.Equal(t, CustomerStatusChurned, c.Status)
}

func TestCustomer_RecordRevenue(t *testing.T) {
	c, _ := NewCustomer("Acme", "")

	c.RecordRevenue(decimal.NewFromInt(1500))
	c.RecordRevenue(decimal.RequireFromString("250.50"))

	assert.True(t, decimal.RequireFromString("1750.50").Equal(c.TotalRevenue))
	assert.Equal(t, CustomerStatusActive, c.Status)
}

func TestCustomer_MarkContacted(t *testing.T) {
	c, _ := NewCustomer("Acme", "")
	later := time.Now()
	earlier := later.Add(-time.Hour)

	c.MarkContacted(later)
	c.MarkContacted(earlier)

	require.NotNil(t, c.LastContactAt)
	assert.True(t, c.LastContactAt.Equal(later))
}

func TestCustomer_Field(t *testing.T) {
	c, _ := NewCustomer("Acme", "a@acme.io")
	c.Tags = []string{"vip"}

	v, ok := c.Field("email")
	assert.True(t, ok)
	assert.Equal(t, "a@acme.io", v)

	v, ok = c.Field("id")
	assert.True(t, ok)
	assert.Equal(t, c.ID, v)

	_, ok = c.Field("unknown")
	assert.False(t, ok)
}
