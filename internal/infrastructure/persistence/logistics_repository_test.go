package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))

	p, err := logistics.NewProduct("ab-100", "Anchor bolt", decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Save(ctx, p))

	t.Run("find by sku ignores case", func(t *testing.T) {
		got, err := repos.Products.FindBySKU(ctx, " ab-100 ")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.True(t, p.UnitPrice.Equal(got.UnitPrice))
	})

	t.Run("duplicate sku", func(t *testing.T) {
		dup, err := logistics.NewProduct("AB-100", "Other", decimal.Zero)
		require.NoError(t, err)
		err = repos.Products.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("update in place", func(t *testing.T) {
		name := "Anchor bolt M10"
		require.NoError(t, p.Apply(logistics.ProductPatch{Name: &name}))
		require.NoError(t, repos.Products.Save(ctx, p))

		got, err := repos.Products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repos.Products.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repos.Products.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Products.Delete(ctx, p.ID))
		_, err := repos.Products.FindBySKU(ctx, "AB-100")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderRepository_ItemsFollowTheOrder(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))

	order, err := logistics.NewOrder("", uuid.New(), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	first, err := order.AddItem(uuid.New(), 2, decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	firstID := first.ID
	_, err = order.AddItem(uuid.New(), 1, decimal.NewFromInt(4))
	require.NoError(t, err)
	require.NoError(t, repos.Orders.Save(ctx, order))

	loaded, err := repos.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "25", loaded.TotalAmount.String())

	require.NoError(t, loaded.RemoveItem(firstID))
	require.NoError(t, repos.Orders.Save(ctx, loaded))

	items, err := repos.Orders.FindItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEqual(t, firstID, items[0].ID)

	reloaded, err := repos.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", reloaded.TotalAmount.String())

	require.NoError(t, repos.Orders.Delete(ctx, order.ID))
	_, err = repos.Orders.FindItems(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var orphans int64
	require.NoError(t, repos.Orders.DB(ctx).Model(&logistics.OrderItem{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestOrderRepository_ListOmitsItems(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))

	for _, number := range []string{"ord-a", "ord-b"} {
		o, err := logistics.NewOrder(number, uuid.New(), time.Now())
		require.NoError(t, err)
		require.NoError(t, repos.Orders.Save(ctx, o))
	}

	page, err := repos.Orders.List(ctx, query.Query{Search: "ORD-B"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "ORD-B", page.Items[0].OrderNumber)
	assert.Empty(t, page.Items[0].Items)
}

func newStockedItem(t *testing.T, repos *LogisticsRepositories, onHand, reserved, reorder int) *logistics.InventoryItem {
	t.Helper()
	item, err := logistics.NewInventoryItem(uuid.New(), uuid.New(), reorder)
	require.NoError(t, err)
	item.QuantityOnHand = onHand
	item.QuantityReserved = reserved
	require.NoError(t, repos.InventoryItems.Save(context.Background(), item))
	return item
}

func TestInventoryItemDetailRepository_RecordAndRevert(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))
	item := newStockedItem(t, repos, 10, 4, 2)

	in, err := logistics.NewInventoryItemDetail(item, 5, "restock", nil)
	require.NoError(t, err)
	updated, err := repos.InventoryItemDetails.Record(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.QuantityOnHand)

	out, err := logistics.NewInventoryItemDetail(item, -12, "damaged", nil)
	require.NoError(t, err)
	_, err = repos.InventoryItemDetails.Record(ctx, out)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

	_, err = repos.InventoryItemDetails.FindByID(ctx, out.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "rejected movement must not be stored")

	stored, err := repos.InventoryItems.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.QuantityOnHand)

	require.NoError(t, repos.InventoryItemDetails.Delete(ctx, in.ID))
	stored, err = repos.InventoryItems.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.QuantityOnHand)

	_, err = repos.InventoryItemDetails.Revert(ctx, in.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryItemDetailRepository_UnknownItem(t *testing.T) {
	repos := NewLogisticsRepositories(newTestDB(t))
	ghost := &logistics.InventoryItem{ProductID: uuid.New(), FacilityID: uuid.New()}
	ghost.ID = uuid.New()

	detail, err := logistics.NewInventoryItemDetail(ghost, 1, "", nil)
	require.NoError(t, err)
	_, err = repos.InventoryItemDetails.Record(context.Background(), detail)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryItemRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))

	low := newStockedItem(t, repos, 5, 3, 2) // available 2
	healthy := newStockedItem(t, repos, 50, 0, 10)
	empty := newStockedItem(t, repos, 0, 0, 0) // available 0

	t.Run("low stock", func(t *testing.T) {
		page, err := repos.InventoryItems.FindLowStock(ctx, query.New())
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		got := []uuid.UUID{page.Items[0].ID, page.Items[1].ID}
		assert.ElementsMatch(t, []uuid.UUID{low.ID, empty.ID}, got)
	})

	t.Run("low stock honours filters", func(t *testing.T) {
		q := query.New().Where("facilityId", low.FacilityID.String())
		page, err := repos.InventoryItems.FindLowStock(ctx, q)
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, low.ID, page.Items[0].ID)
	})

	t.Run("find by product and facility", func(t *testing.T) {
		got, err := repos.InventoryItems.FindByProductAndFacility(ctx, healthy.ProductID, healthy.FacilityID)
		require.NoError(t, err)
		assert.Equal(t, healthy.ID, got.ID)

		_, err = repos.InventoryItems.FindByProductAndFacility(ctx, healthy.ProductID, low.FacilityID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("one record per product and facility", func(t *testing.T) {
		dup, err := logistics.NewInventoryItem(healthy.ProductID, healthy.FacilityID, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, repos.InventoryItems.Save(ctx, dup), shared.ErrAlreadyExists)
	})
}

func TestInventoryItemRepository_SearchesProductAndFacility(t *testing.T) {
	ctx := context.Background()
	repos := NewLogisticsRepositories(newTestDB(t))

	bolt, err := logistics.NewProduct("BLT-10", "Anchor bolt", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Save(ctx, bolt))
	nut, err := logistics.NewProduct("NUT-10", "Hex nut", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Save(ctx, nut))
	north, err := logistics.NewFacility("wh-north", "North depot", logistics.FacilityWarehouse)
	require.NoError(t, err)
	require.NoError(t, repos.Facilities.Save(ctx, north))
	south, err := logistics.NewFacility("wh-south", "South depot", logistics.FacilityWarehouse)
	require.NoError(t, err)
	require.NoError(t, repos.Facilities.Save(ctx, south))

	stock := func(p *logistics.Product, f *logistics.Facility, reorder int) *logistics.InventoryItem {
		item, err := logistics.NewInventoryItem(p.ID, f.ID, reorder)
		require.NoError(t, err)
		require.NoError(t, repos.InventoryItems.Save(ctx, item))
		return item
	}
	boltNorth := stock(bolt, north, 0)
	nutNorth := stock(nut, north, 5)
	boltSouth := stock(bolt, south, 5)

	ids := func(page query.Page[logistics.InventoryItem]) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(page.Items))
		for _, it := range page.Items {
			out = append(out, it.ID)
		}
		return out
	}

	tests := []struct {
		name string
		q    query.Query
		want []uuid.UUID
	}{
		{"product sku", query.New().Where(query.SearchKey, "blt"), []uuid.UUID{boltNorth.ID, boltSouth.ID}},
		{"product name", query.Query{Search: "HEX", Page: 1, Limit: 10}, []uuid.UUID{nutNorth.ID}},
		{"facility name", query.New().Where(query.SearchKey, "south"), []uuid.UUID{boltSouth.ID}},
		{"combined with a filter", query.New().Where(query.SearchKey, "depot").Where("facilityId", north.ID.String()), []uuid.UUID{boltNorth.ID, nutNorth.ID}},
		{"like wildcards are literal", query.New().Where(query.SearchKey, "%"), []uuid.UUID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repos.InventoryItems.List(ctx, tt.q)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(page))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}

	t.Run("low stock applies the same search", func(t *testing.T) {
		page, err := repos.InventoryItems.FindLowStock(ctx, query.New().Where(query.SearchKey, "nut"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{nutNorth.ID}, ids(page))
	})
}
