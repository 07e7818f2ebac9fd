package persistence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/persistence"
	"github.com/bizconsole/backend/internal/testutil/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogisticsRepositories_Postgres runs the repositories against the
// migrated postgres schema rather than sqlite's AutoMigrate.
func TestLogisticsRepositories_Postgres(t *testing.T) {
	db := pgtest.Open(t)
	repos := persistence.NewLogisticsRepositories(db.DB)
	ctx := context.Background()

	product, err := logistics.NewProduct("pg-100", "Pallet jack", decimal.RequireFromString("249.90"))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Save(ctx, product))
	facility, err := logistics.NewFacility("wh-pg", "Postgres warehouse", logistics.FacilityWarehouse)
	require.NoError(t, err)
	require.NoError(t, repos.Facilities.Save(ctx, facility))

	t.Run("sku lookup and search", func(t *testing.T) {
		got, err := repos.Products.FindBySKU(ctx, "PG-100")
		require.NoError(t, err)
		assert.Equal(t, product.ID, got.ID)
		assert.True(t, product.UnitPrice.Equal(got.UnitPrice))

		page, err := repos.Products.List(ctx, query.New().Where(query.SearchKey, "PALLET"))
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, product.ID, page.Items[0].ID)
	})

	t.Run("duplicate sku is translated", func(t *testing.T) {
		dup, err := logistics.NewProduct("PG-100", "Other", decimal.Zero)
		require.NoError(t, err)
		assert.ErrorIs(t, repos.Products.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("concurrent movements serialize on the item row", func(t *testing.T) {
		item, err := logistics.NewInventoryItem(product.ID, facility.ID, 5)
		require.NoError(t, err)
		require.NoError(t, repos.InventoryItems.Save(ctx, item))

		const writers = 20
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				detail, err := logistics.NewInventoryItemDetail(item, 1, "restock", nil)
				if err != nil {
					errs <- err
					return
				}
				_, err = repos.InventoryItemDetails.Record(ctx, detail)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		stored, err := repos.InventoryItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, writers, stored.QuantityOnHand)

		details, err := repos.InventoryItemDetails.List(ctx, query.New().Where("inventoryItemId", item.ID.String()))
		require.NoError(t, err)
		assert.Equal(t, writers, details.Total)

		t.Run("overdraw rolls back", func(t *testing.T) {
			out, err := logistics.NewInventoryItemDetail(stored, -(writers + 1), "damaged", nil)
			require.NoError(t, err)
			_, err = repos.InventoryItemDetails.Record(ctx, out)
			require.Error(t, err)

			_, err = repos.InventoryItemDetails.FindByID(ctx, out.ID)
			assert.ErrorIs(t, err, shared.ErrNotFound)
			again, err := repos.InventoryItems.FindByID(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, writers, again.QuantityOnHand)
		})
	})
}
