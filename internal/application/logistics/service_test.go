package logistics

import (
	"context"
	"errors"
	"testing"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newServices(t *testing.T) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.Models()...))

	r := persistence.NewLogisticsRepositories(db)
	return NewServices(Repositories{
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
}

func code(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	return domainErr.Code
}

func ptr[T any](v T) *T { return &v }

func TestProductService(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	_, err := svc.Products.Create(ctx, CreateProductRequest{SKU: "x-1", Name: "X", CategoryID: ptr(uuid.New())})
	assert.Equal(t, "INVALID_CATEGORY", code(t, err))

	category, err := svc.Categories.Create(ctx, CreateCategoryRequest{Name: "Fasteners"})
	require.NoError(t, err)

	p, err := svc.Products.Create(ctx, CreateProductRequest{
		SKU:        "x-1",
		Name:       "Hex bolt",
		CategoryID: &category.ID,
		UnitPrice:  decimal.NewFromFloat(1.25),
	})
	require.NoError(t, err)
	assert.Equal(t, "X-1", p.SKU)
	assert.Equal(t, "each", p.UnitOfMeasure)

	_, err = svc.Products.Create(ctx, CreateProductRequest{SKU: "X-1", Name: "Dup"})
	assert.Equal(t, "ALREADY_EXISTS", code(t, err))

	other, err := svc.Products.Create(ctx, CreateProductRequest{SKU: "x-2", Name: "Nut"})
	require.NoError(t, err)
	_, err = svc.Products.Update(ctx, other.ID, UpdateProductRequest{SKU: ptr("x-1")})
	assert.Equal(t, "ALREADY_EXISTS", code(t, err))

	updated, err := svc.Products.Update(ctx, p.ID, UpdateProductRequest{SKU: ptr("x-1"), Status: ptr("inactive")})
	require.NoError(t, err)
	assert.Equal(t, logistics.ProductStatusInactive, updated.Status)
}

func TestCategoryService_RejectsCycles(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)

	root, err := svc.Categories.Create(ctx, CreateCategoryRequest{Name: "Root"})
	require.NoError(t, err)
	child, err := svc.Categories.Create(ctx, CreateCategoryRequest{Name: "Child", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Categories.Create(ctx, CreateCategoryRequest{Name: "Grandchild", ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.Categories.Update(ctx, root.ID, UpdateCategoryRequest{ParentID: &grandchild.ID})
	assert.Equal(t, "INVALID_PARENT", code(t, err))

	_, err = svc.Categories.Update(ctx, grandchild.ID, UpdateCategoryRequest{ParentID: &root.ID})
	require.NoError(t, err)
}

type fixture struct {
	customer *logistics.Customer
	facility *logistics.Facility
	bolt     *logistics.Product
	nut      *logistics.Product
}

func newFixture(t *testing.T, svc *Services) fixture {
	t.Helper()
	ctx := context.Background()
	addr, err := svc.Addresses.Create(ctx, AddressRequest{Line1: ptr("1 Dock Rd"), City: ptr("Rotterdam"), Country: ptr("NL")})
	require.NoError(t, err)
	customer, err := svc.Customers.Create(ctx, ContactRequest{Name: ptr("Harbor BV"), Email: ptr("ops@harbor.example"), AddressID: &addr.ID})
	require.NoError(t, err)
	facility, err := svc.Facilities.Create(ctx, FacilityRequest{Code: ptr("rtm-1"), Name: ptr("Rotterdam DC"), Type: ptr("distribution_center")})
	require.NoError(t, err)
	bolt, err := svc.Products.Create(ctx, CreateProductRequest{SKU: "BOLT", Name: "Bolt", UnitPrice: decimal.RequireFromString("2.50")})
	require.NoError(t, err)
	nut, err := svc.Products.Create(ctx, CreateProductRequest{SKU: "NUT", Name: "Nut", UnitPrice: decimal.RequireFromString("0.75")})
	require.NoError(t, err)
	return fixture{customer: customer, facility: facility, bolt: bolt, nut: nut}
}

func TestOrderService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := newFixture(t, svc)

	_, err := svc.Orders.Create(ctx, CreateOrderRequest{CustomerID: uuid.New()})
	assert.Equal(t, "INVALID_CUSTOMER", code(t, err))

	order, err := svc.Orders.Create(ctx, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: f.bolt.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "10", order.TotalAmount.String(), "price defaults to the product price")

	order, err = svc.Orders.AddItem(ctx, order.ID, OrderItemRequest{ProductID: f.nut.ID, Quantity: 2, UnitPrice: ptr(decimal.NewFromInt(1))})
	require.NoError(t, err)
	assert.Equal(t, "12", order.TotalAmount.String())

	items, err := svc.Orders.Items(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	boltLine := items[0].ID
	if items[0].ProductID != f.bolt.ID {
		boltLine = items[1].ID
	}
	order, err = svc.Orders.UpdateItem(ctx, order.ID, boltLine, UpdateOrderItemRequest{Quantity: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "4.5", order.TotalAmount.String())

	_, err = svc.Orders.AddItem(ctx, order.ID, OrderItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.Equal(t, "INVALID_PRODUCT", code(t, err))

	for _, status := range []string{"confirmed", "processing"} {
		order, err = svc.Orders.Update(ctx, order.ID, UpdateOrderRequest{Status: ptr(status)})
		require.NoError(t, err)
	}
	_, err = svc.Orders.AddItem(ctx, order.ID, OrderItemRequest{ProductID: f.nut.ID, Quantity: 1})
	assert.Equal(t, "INVALID_STATE", code(t, err))

	_, err = svc.Orders.Update(ctx, order.ID, UpdateOrderRequest{Status: ptr("pending")})
	assert.Equal(t, "INVALID_STATE", code(t, err))

	stored, err := svc.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, logistics.OrderStatusProcessing, stored.Status)
	assert.Equal(t, "4.5", stored.TotalAmount.String())
}

func TestShipmentService_AdvancesOrder(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := newFixture(t, svc)

	order, err := svc.Orders.Create(ctx, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: f.bolt.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	for _, status := range []string{"confirmed", "processing"} {
		_, err = svc.Orders.Update(ctx, order.ID, UpdateOrderRequest{Status: ptr(status)})
		require.NoError(t, err)
	}

	_, err = svc.Shipments.Create(ctx, CreateShipmentRequest{OrderID: order.ID, FacilityID: uuid.New()})
	assert.Equal(t, "INVALID_FACILITY", code(t, err))

	shipment, err := svc.Shipments.Create(ctx, CreateShipmentRequest{OrderID: order.ID, FacilityID: f.facility.ID, Carrier: "DHL"})
	require.NoError(t, err)
	assert.Equal(t, logistics.ShipmentStatusPending, shipment.Status)

	shipment, err = svc.Shipments.Update(ctx, shipment.ID, UpdateShipmentRequest{Status: ptr("in_transit")})
	require.NoError(t, err)
	assert.NotNil(t, shipment.ShippedAt)
	stored, err := svc.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, logistics.OrderStatusShipped, stored.Status)

	_, err = svc.Shipments.Update(ctx, shipment.ID, UpdateShipmentRequest{Status: ptr("delivered")})
	require.NoError(t, err)
	stored, err = svc.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, logistics.OrderStatusDelivered, stored.Status)

	_, err = svc.Shipments.Create(ctx, CreateShipmentRequest{OrderID: order.ID, FacilityID: f.facility.ID})
	assert.Equal(t, "INVALID_STATE", code(t, err))
}

func TestInventoryServices(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	f := newFixture(t, svc)

	item, err := svc.InventoryItems.Create(ctx, CreateInventoryItemRequest{ProductID: f.bolt.ID, FacilityID: f.facility.ID, ReorderLevel: 5})
	require.NoError(t, err)
	_, err = svc.InventoryItems.Create(ctx, CreateInventoryItemRequest{ProductID: f.bolt.ID, FacilityID: f.facility.ID})
	assert.Equal(t, "ALREADY_EXISTS", code(t, err))

	low, err := svc.InventoryItems.LowStock(ctx, query.New())
	require.NoError(t, err)
	assert.Equal(t, 1, low.Total)

	receipt, err := svc.InventoryItemDetails.Create(ctx, CreateInventoryItemDetailRequest{InventoryItemID: item.ID, QuantityDiff: 20, Reason: "receipt"})
	require.NoError(t, err)
	assert.Equal(t, f.bolt.ID, receipt.ProductID)

	item, err = svc.InventoryItems.Update(ctx, item.ID, UpdateInventoryItemRequest{QuantityReserved: ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, 12, item.Available())

	_, err = svc.InventoryItemDetails.Create(ctx, CreateInventoryItemDetailRequest{InventoryItemID: item.ID, QuantityDiff: -15})
	assert.Equal(t, "INSUFFICIENT_STOCK", code(t, err))

	low, err = svc.InventoryItems.LowStock(ctx, query.New())
	require.NoError(t, err)
	assert.Zero(t, low.Total)

	_, err = svc.InventoryItemDetails.Update(ctx, receipt.ID, UpdateInventoryItemDetailRequest{Reason: ptr("receipt PO-7")})
	require.NoError(t, err)

	// removing the receipt would leave less stock than reserved
	err = svc.InventoryItemDetails.Delete(ctx, receipt.ID)
	assert.Equal(t, "INSUFFICIENT_STOCK", code(t, err))

	_, err = svc.InventoryItems.Update(ctx, item.ID, UpdateInventoryItemRequest{QuantityReserved: ptr(0)})
	require.NoError(t, err)
	require.NoError(t, svc.InventoryItemDetails.Delete(ctx, receipt.ID))

	item, err = svc.InventoryItems.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, item.QuantityOnHand)
}
