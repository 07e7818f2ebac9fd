package handler

import (
	"context"
	"net/http"

	"github.com/bizconsole/backend/internal/application/export"
	logisticsapp "github.com/bizconsole/backend/internal/application/logistics"
	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// crudService is the surface every logistics resource service offers
type crudService[T, C, U any] interface {
	List(ctx context.Context, q query.Query) (query.Page[T], error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, req C) (*T, error)
	Update(ctx context.Context, id uuid.UUID, req U) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceEndpoints are the handlers of one logistics resource, mounted as
// {name}/search, {name}/search/:id, {name}/create, {name}/update/:id,
// {name}/delete/:id and {name}/export
type ResourceEndpoints struct {
	Name   string
	Search gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
	Export gin.HandlerFunc
}

// LogisticsHandler serves the logistics REST API
type LogisticsHandler struct {
	LogisticsBase
	services  *logisticsapp.Services
	exporter  *export.Exporter
	resources []ResourceEndpoints
}

// NewLogisticsHandler creates a new LogisticsHandler. A nil exporter disables
// the export endpoints.
func NewLogisticsHandler(services *logisticsapp.Services, exporter *export.Exporter) *LogisticsHandler {
	h := &LogisticsHandler{services: services, exporter: exporter}
	h.resources = []ResourceEndpoints{
		resource[logistics.Product, logisticsapp.CreateProductRequest, logisticsapp.UpdateProductRequest](h, logistics.ResourceProducts, services.Products),
		resource[logistics.Category, logisticsapp.CreateCategoryRequest, logisticsapp.UpdateCategoryRequest](h, logistics.ResourceCategories, services.Categories),
		resource[logistics.Facility, logisticsapp.FacilityRequest, logisticsapp.FacilityRequest](h, logistics.ResourceFacilities, services.Facilities),
		resource[logistics.Supplier, logisticsapp.ContactRequest, logisticsapp.ContactRequest](h, logistics.ResourceSuppliers, services.Suppliers),
		resource[logistics.Customer, logisticsapp.ContactRequest, logisticsapp.ContactRequest](h, logistics.ResourceCustomers, services.Customers),
		resource[logistics.Order, logisticsapp.CreateOrderRequest, logisticsapp.UpdateOrderRequest](h, logistics.ResourceOrders, services.Orders),
		resource[logistics.Shipment, logisticsapp.CreateShipmentRequest, logisticsapp.UpdateShipmentRequest](h, logistics.ResourceShipments, services.Shipments),
		resource[logistics.InventoryItem, logisticsapp.CreateInventoryItemRequest, logisticsapp.UpdateInventoryItemRequest](h, logistics.ResourceInventoryItems, services.InventoryItems),
		resource[logistics.InventoryItemDetail, logisticsapp.CreateInventoryItemDetailRequest, logisticsapp.UpdateInventoryItemDetailRequest](h, logistics.ResourceInventoryItemDetails, services.InventoryItemDetails),
		resource[logistics.Address, logisticsapp.AddressRequest, logisticsapp.AddressRequest](h, logistics.ResourceAddresses, services.Addresses),
	}
	return h
}

// Resources lists the endpoints of every resource
func (h *LogisticsHandler) Resources() []ResourceEndpoints {
	return h.resources
}

func resource[T, C, U any](h *LogisticsHandler, name string, svc crudService[T, C, U]) ResourceEndpoints {
	return ResourceEndpoints{
		Name: name,
		Search: func(c *gin.Context) {
			page, err := svc.List(c.Request.Context(), listQuery(c))
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusOK, dto.NewListData(page))
		},
		Get: func(c *gin.Context) {
			id, ok := parseID(c, h, "id")
			if !ok {
				return
			}
			v, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusOK, v)
		},
		Create: func(c *gin.Context) {
			var req C
			if !bindJSON(c, h, &req) {
				return
			}
			v, err := svc.Create(c.Request.Context(), req)
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusCreated, v)
		},
		Update: func(c *gin.Context) {
			id, ok := parseID(c, h, "id")
			if !ok {
				return
			}
			var req U
			if !bindJSON(c, h, &req) {
				return
			}
			v, err := svc.Update(c.Request.Context(), id, req)
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusOK, v)
		},
		Delete: func(c *gin.Context) {
			id, ok := parseID(c, h, "id")
			if !ok {
				return
			}
			if err := svc.Delete(c.Request.Context(), id); err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusOK, gin.H{"id": id})
		},
		Export: func(c *gin.Context) {
			if h.exporter == nil {
				h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Export is not configured")
				return
			}
			res, err := export.Run[T](c.Request.Context(), h.exporter, "logistics", name, svc.List, listQuery(c))
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.OK(c, http.StatusOK, res)
		},
	}
}

// OrderItems returns the lines of an order
func (h *LogisticsHandler) OrderItems(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	items, err := h.services.Orders.Items(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []logistics.OrderItem{}
	}
	h.OK(c, http.StatusOK, items)
}

// AddOrderItem appends a line and returns the recalculated order
func (h *LogisticsHandler) AddOrderItem(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req logisticsapp.OrderItemRequest
	if !bindJSON(c, h, &req) {
		return
	}
	order, err := h.services.Orders.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, http.StatusCreated, order)
}

// UpdateOrderItem changes quantity or price of a line
func (h *LogisticsHandler) UpdateOrderItem(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, h, "itemId")
	if !ok {
		return
	}
	var req logisticsapp.UpdateOrderItemRequest
	if !bindJSON(c, h, &req) {
		return
	}
	order, err := h.services.Orders.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, http.StatusOK, order)
}

// RemoveOrderItem drops a line
func (h *LogisticsHandler) RemoveOrderItem(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, h, "itemId")
	if !ok {
		return
	}
	order, err := h.services.Orders.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, http.StatusOK, order)
}

// LowStock lists inventory items at or below their reorder level
func (h *LogisticsHandler) LowStock(c *gin.Context) {
	page, err := h.services.InventoryItems.LowStock(c.Request.Context(), listQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, http.StatusOK, dto.NewListData(page))
}
