package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(t *testing.T, repo *GormProductRepository) []logistics.Product {
	t.Helper()
	category := uuid.New()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := []struct {
		sku, name, desc string
		price           string
		status          logistics.ProductStatus
		category        bool
	}{
		{"WID-001", "Widget", "blue steel widget", "12.50", logistics.ProductStatusActive, true},
		{"GAD-002", "gadget pro", "", "99.00", logistics.ProductStatusActive, false},
		{"BOL-003", "Bolt 10% off", "zinc bolt", "0.40", logistics.ProductStatusInactive, true},
		{"NUT-004", "Nut_M8", "hex nut", "0.15", logistics.ProductStatusDiscontinued, false},
		{"CAB-005", "Cable reel", "copper cable", "45.00", logistics.ProductStatusActive, true},
	}

	out := make([]logistics.Product, 0, len(rows))
	for i, r := range rows {
		p, err := logistics.NewProduct(r.sku, r.name, decimal.RequireFromString(r.price))
		require.NoError(t, err)
		p.Description = r.desc
		p.Status = r.status
		p.CreatedAt = base.AddDate(0, 0, i)
		p.UpdatedAt = p.CreatedAt
		if r.category {
			p.CategoryID = &category
		}
		require.NoError(t, repo.Save(context.Background(), p))
		out = append(out, *p)
	}
	return out
}

func productIDs(items []logistics.Product) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

// The SQL translation must agree with the in-memory engine
func TestGormQuery_MatchesInMemoryEngine(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	products := seedProducts(t, repo)
	fields := logistics.SearchFields[logistics.ResourceProducts]

	tests := []struct {
		name  string
		query query.Query
	}{
		{"default sort is newest first", query.New()},
		{"search folds case", query.Query{Search: "WIDGET"}},
		{"search over description", query.Query{Search: "copper"}},
		{"search treats percent literally", query.Query{Search: "10%"}},
		{"search treats underscore literally", query.Query{Search: "t_m"}},
		{"exact match folds case", query.New().Where("status", "ACTIVE")},
		{"membership", query.New().Where("status", []string{"inactive", "discontinued"})},
		{"numeric range", query.New().Where("minUnitPrice", 0.4).Where("maxUnitPrice", "45")},
		{"date from", query.New().Where("createdAtFrom", "2024-03-03")},
		{"date to covers whole day", query.New().Where("createdAtTo", "2024-03-02")},
		{"unknown field matches nothing", query.New().Where("color", "red")},
		{"unparsable bound matches nothing", query.New().Where("minUnitPrice", "cheap")},
		{"sort by name folds case", query.New().OrderBy("name", query.Asc)},
		{"sort by price desc", query.New().OrderBy("unitPrice", query.Desc)},
		{"nulls last ascending", query.New().OrderBy("categoryId", query.Asc).Where("status", "active")},
		{"second page", query.Query{SortBy: "sku", SortOrder: query.Asc, Page: 2, Limit: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(context.Background(), tt.query)
			require.NoError(t, err)

			want := query.Apply(products, tt.query.WithDefaultSort("createdAt", query.Desc), fields...)
			assert.Equal(t, want.Total, got.Total)
			assert.Equal(t, want.TotalPages, got.TotalPages)
			assert.Equal(t, want.HasNext, got.HasNext)
			if tt.name == "nulls last ascending" {
				// equal category ids tie, only the null placement is compared
				require.Len(t, got.Items, 3)
				assert.Nil(t, got.Items[2].CategoryID)
				return
			}
			if diff := cmp.Diff(productIDs(want.Items), productIDs(got.Items)); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGormQuery_SearchWithoutFields(t *testing.T) {
	db := newTestDB(t)
	products := seedProducts(t, NewGormProductRepository(db))

	t.Run("term is ignored", func(t *testing.T) {
		repo := NewGormRepository[logistics.Product](db, "Product")
		page, err := repo.List(context.Background(), query.Query{Search: "no such text"})
		require.NoError(t, err)
		assert.Equal(t, len(products), page.Total)
		assert.Equal(t, query.Apply(products, query.Query{Search: "no such text"}).Total, page.Total)
	})

	t.Run("fields without columns match nothing", func(t *testing.T) {
		repo := NewGormRepository[logistics.Product](db, "Product", "color")
		page, err := repo.List(context.Background(), query.Query{Search: "widget"})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})
}

func TestGormQuery_PageBeyondEnd(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	seedProducts(t, repo)

	page, err := repo.List(context.Background(), query.Query{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.True(t, page.HasPrev)
}

func TestGormQuery_PostgresSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormRepository[logistics.Shipment](db, "Shipment", "carrier")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments" WHERE .*LOWER\("carrier"\) LIKE \$1 ESCAPE '\\'.* AND LOWER\("status"\) IN \(\$2,\$3\)`).
		WithArgs("%dh\\_l%", "pending", "in_transit").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	q := query.Query{Search: "DH_L"}.Where("status", []string{"PENDING", "in_transit"})
	page, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormQuery_PostgresSortAndPaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormRepository[logistics.Facility](db, "Facility")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "facilities" WHERE "capacity" >= $1`)).
		WithArgs(float64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "facilities" WHERE "capacity" >= $1 ORDER BY CASE WHEN "name" IS NULL THEN 1 ELSE 0 END,LOWER("name") ASC,"id" LIMIT $2 OFFSET $3`)).
		WithArgs(float64(100), 5, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).AddRow(uuid.New().String(), "North hub", "NH"))

	q := query.Query{SortBy: "name", SortOrder: query.Asc, Page: 3, Limit: 5}.Where("minCapacity", 100)
	page, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "North hub", page.Items[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
