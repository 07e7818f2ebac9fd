package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/bizconsole/backend/internal/application/export"
	logisticsapp "github.com/bizconsole/backend/internal/application/logistics"
	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/infrastructure/persistence"
	"github.com/bizconsole/backend/internal/infrastructure/storage"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/bizconsole/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logisticsAPI = "/logistics/api/v1/"

func newLogisticsEngine(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	r := persistence.NewLogisticsRepositories(db)
	services := logisticsapp.NewServices(logisticsapp.Repositories{
		Products:             r.Products,
		Categories:           r.Categories,
		Facilities:           r.Facilities,
		Suppliers:            r.Suppliers,
		Customers:            r.Customers,
		Addresses:            r.Addresses,
		Orders:               r.Orders,
		Shipments:            r.Shipments,
		InventoryItems:       r.InventoryItems,
		InventoryItemDetails: r.InventoryItemDetails,
	})
	objects, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	h := NewLogisticsHandler(services, export.NewExporter(objects))

	engine := gin.New()
	g := engine.Group(strings.TrimSuffix(logisticsAPI, "/"))
	for _, res := range h.Resources() {
		rg := g.Group("/" + res.Name)
		rg.GET("/search", res.Search)
		rg.GET("/search/:id", res.Get)
		rg.POST("/create", res.Create)
		rg.PATCH("/update/:id", res.Update)
		rg.DELETE("/delete/:id", res.Delete)
		rg.GET("/export", res.Export)
	}
	g.GET("/orders/search/:id/items", h.OrderItems)
	g.POST("/orders/:id/items", h.AddOrderItem)
	g.PATCH("/orders/:id/items/:itemId", h.UpdateOrderItem)
	g.DELETE("/orders/:id/items/:itemId", h.RemoveOrderItem)
	g.GET("/inventory-items/low-stock", h.LowStock)
	return engine
}

// create posts to {resource}/create and returns the decoded entity
func create[T any](t *testing.T, engine *gin.Engine, resource string, body any) T {
	t.Helper()
	w := do(t, engine, http.MethodPost, logisticsAPI+resource+"/create", body)
	requireStatus(t, w, http.StatusCreated)
	env := decode[logisticsBody](t, w)
	require.Equal(t, http.StatusCreated, env.Code)
	require.Equal(t, dto.StatusSuccess, env.Status)
	return data[T](t, env.Data)
}

func TestLogisticsHandler_ProductCRUD(t *testing.T) {
	engine := newLogisticsEngine(t)

	category := create[logistics.Category](t, engine, logistics.ResourceCategories, map[string]any{"name": "Fasteners"})
	bolt := create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{
		"sku": "bolt-8", "name": "Hex bolt M8", "unitPrice": "0.40", "categoryId": category.ID,
	})
	assert.Equal(t, "BOLT-8", bolt.SKU)
	create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "nut-8", "name": "Hex nut M8", "unitPrice": "0.10"})

	w := do(t, engine, http.MethodGet, logisticsAPI+"products/search?search=bolt", nil)
	requireStatus(t, w, http.StatusOK)
	list := data[dto.ListData[logistics.Product]](t, decode[logisticsBody](t, w).Data)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, bolt.ID, list.Items[0].ID)

	w = do(t, engine, http.MethodGet, logisticsAPI+"products/search?sortBy=sku&sortOrder=desc&limit=1", nil)
	requireStatus(t, w, http.StatusOK)
	list = data[dto.ListData[logistics.Product]](t, decode[logisticsBody](t, w).Data)
	assert.Equal(t, 2, list.Total)
	assert.True(t, list.HasNext)
	assert.Equal(t, "NUT-8", list.Items[0].SKU)

	w = do(t, engine, http.MethodPatch, logisticsAPI+"products/update/"+bolt.ID.String(), map[string]any{"unitPrice": "0.45"})
	requireStatus(t, w, http.StatusOK)
	updated := data[logistics.Product](t, decode[logisticsBody](t, w).Data)
	assert.Equal(t, "0.45", updated.UnitPrice.String())

	w = do(t, engine, http.MethodDelete, logisticsAPI+"products/delete/"+bolt.ID.String(), nil)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"id":"`+bolt.ID.String()+`"}`, string(decode[logisticsBody](t, w).Data))

	w = do(t, engine, http.MethodGet, logisticsAPI+"products/search/"+bolt.ID.String(), nil)
	requireStatus(t, w, http.StatusNotFound)
	env := decode[logisticsBody](t, w)
	assert.Equal(t, http.StatusNotFound, env.Code)
	assert.Equal(t, dto.StatusError, env.Status)
	assert.NotEmpty(t, env.Message)
	assert.Empty(t, env.Data)
}

func TestLogisticsHandler_Errors(t *testing.T) {
	engine := newLogisticsEngine(t)
	create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "A1", "name": "Anchor"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"duplicate sku", http.MethodPost, "products/create", map[string]any{"sku": "a1", "name": "Again"}, http.StatusConflict},
		{"missing required", http.MethodPost, "products/create", map[string]any{"name": "No SKU"}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "categories/create", `{`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "facilities/search/abc", nil, http.StatusBadRequest},
		{"unknown id", http.MethodDelete, "suppliers/delete/" + uuid.NewString(), nil, http.StatusNotFound},
		{"dangling reference", http.MethodPost, "orders/create", map[string]any{"customerId": uuid.NewString()}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, engine, tt.method, logisticsAPI+tt.path, tt.body)
			requireStatus(t, w, tt.status)
			env := decode[logisticsBody](t, w)
			assert.Equal(t, tt.status, env.Code)
			assert.Equal(t, dto.StatusError, env.Status)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestLogisticsHandler_OrderItems(t *testing.T) {
	engine := newLogisticsEngine(t)
	customer := create[logistics.Customer](t, engine, logistics.ResourceCustomers, map[string]any{"name": "Harbor BV"})
	bolt := create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "BOLT", "name": "Bolt", "unitPrice": "2.50"})
	nut := create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "NUT", "name": "Nut", "unitPrice": "0.75"})

	order := create[logistics.Order](t, engine, logistics.ResourceOrders, map[string]any{
		"customerId": customer.ID,
		"items":      []map[string]any{{"productId": bolt.ID, "quantity": 4}},
	})
	assert.Equal(t, "10", order.TotalAmount.String())

	base := logisticsAPI + "orders/" + order.ID.String() + "/items"
	w := do(t, engine, http.MethodPost, base, map[string]any{"productId": nut.ID, "quantity": 2})
	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, "11.5", data[logistics.Order](t, decode[logisticsBody](t, w).Data).TotalAmount.String())

	w = do(t, engine, http.MethodGet, logisticsAPI+"orders/search/"+order.ID.String()+"/items", nil)
	requireStatus(t, w, http.StatusOK)
	items := data[[]logistics.OrderItem](t, decode[logisticsBody](t, w).Data)
	require.Len(t, items, 2)
	nutLine := items[0]
	if nutLine.ProductID != nut.ID {
		nutLine = items[1]
	}

	w = do(t, engine, http.MethodPatch, base+"/"+nutLine.ID.String(), map[string]any{"quantity": 4})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "13", data[logistics.Order](t, decode[logisticsBody](t, w).Data).TotalAmount.String())

	w = do(t, engine, http.MethodDelete, base+"/"+nutLine.ID.String(), nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "10", data[logistics.Order](t, decode[logisticsBody](t, w).Data).TotalAmount.String())

	w = do(t, engine, http.MethodDelete, base+"/not-a-uuid", nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestLogisticsHandler_LowStockAndExport(t *testing.T) {
	engine := newLogisticsEngine(t)
	facility := create[logistics.Facility](t, engine, logistics.ResourceFacilities, map[string]any{"code": "rtm-1", "name": "Rotterdam DC"})
	bolt := create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "BOLT", "name": "Bolt"})
	nut := create[logistics.Product](t, engine, logistics.ResourceProducts, map[string]any{"sku": "NUT", "name": "Nut"})

	low := create[logistics.InventoryItem](t, engine, logistics.ResourceInventoryItems, map[string]any{
		"productId": bolt.ID, "facilityId": facility.ID, "reorderLevel": 10,
	})
	stocked := create[logistics.InventoryItem](t, engine, logistics.ResourceInventoryItems, map[string]any{
		"productId": nut.ID, "facilityId": facility.ID, "reorderLevel": 10,
	})
	create[logistics.InventoryItemDetail](t, engine, logistics.ResourceInventoryItemDetails, map[string]any{
		"inventoryItemId": stocked.ID, "quantityDiff": 50, "reason": "receipt",
	})

	w := do(t, engine, http.MethodGet, logisticsAPI+"inventory-items/low-stock", nil)
	requireStatus(t, w, http.StatusOK)
	list := data[dto.ListData[logistics.InventoryItem]](t, decode[logisticsBody](t, w).Data)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, low.ID, list.Items[0].ID)

	w = do(t, engine, http.MethodPost, logisticsAPI+"inventory-item-details/create", map[string]any{
		"inventoryItemId": low.ID, "quantityDiff": -1,
	})
	requireStatus(t, w, http.StatusUnprocessableEntity)

	w = do(t, engine, http.MethodGet, logisticsAPI+"products/export", nil)
	requireStatus(t, w, http.StatusOK)
	res := data[export.Result](t, decode[logisticsBody](t, w).Data)
	assert.Equal(t, 2, res.Rows)
	assert.True(t, strings.HasPrefix(res.Key, "logistics/products/"), res.Key)
}
