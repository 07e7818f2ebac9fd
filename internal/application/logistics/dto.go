package logistics

import (
	"time"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Catalog DTOs
// =============================================================================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
}

func (r UpdateCategoryRequest) patch() logistics.CategoryPatch {
	return logistics.CategoryPatch{Name: r.Name, Description: r.Description, ParentID: r.ParentID}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU           string           `json:"sku" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	UnitPrice     decimal.Decimal  `json:"unitPrice" binding:"decimal_gte0"`
	Weight        *decimal.Decimal `json:"weight" binding:"omitempty,decimal_gte0"`
	UnitOfMeasure string           `json:"unitOfMeasure" binding:"max=20"`
	Status        string           `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

func (r CreateProductRequest) patch() logistics.ProductPatch {
	p := logistics.ProductPatch{Description: &r.Description, CategoryID: r.CategoryID, Weight: r.Weight}
	if r.UnitOfMeasure != "" {
		p.UnitOfMeasure = &r.UnitOfMeasure
	}
	if r.Status != "" {
		s := logistics.ProductStatus(r.Status)
		p.Status = &s
	}
	return p
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	SKU           *string          `json:"sku" binding:"omitempty,min=1,max=50"`
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"categoryId"`
	UnitPrice     *decimal.Decimal `json:"unitPrice" binding:"omitempty,decimal_gte0"`
	Weight        *decimal.Decimal `json:"weight" binding:"omitempty,decimal_gte0"`
	UnitOfMeasure *string          `json:"unitOfMeasure" binding:"omitempty,max=20"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

func (r UpdateProductRequest) patch() logistics.ProductPatch {
	p := logistics.ProductPatch{
		SKU:           r.SKU,
		Name:          r.Name,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		UnitPrice:     r.UnitPrice,
		Weight:        r.Weight,
		UnitOfMeasure: r.UnitOfMeasure,
	}
	if r.Status != nil {
		s := logistics.ProductStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// =============================================================================
// Party DTOs
// =============================================================================

// AddressRequest creates an address; on update every field is optional
type AddressRequest struct {
	Line1      *string `json:"line1" binding:"omitempty,max=200"`
	Line2      *string `json:"line2" binding:"omitempty,max=200"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	State      *string `json:"state" binding:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" binding:"omitempty,max=20"`
	Country    *string `json:"country" binding:"omitempty,max=100"`
}

func (r AddressRequest) patch() logistics.AddressPatch {
	return logistics.AddressPatch{
		Line1: r.Line1, Line2: r.Line2, City: r.City,
		State: r.State, PostalCode: r.PostalCode, Country: r.Country,
	}
}

// ContactRequest creates or updates a supplier or logistics customer
type ContactRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName *string    `json:"contactName" binding:"omitempty,max=100"`
	Email       *string    `json:"email" binding:"omitempty,email,max=200"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	AddressID   *uuid.UUID `json:"addressId"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r ContactRequest) patch() logistics.ContactPatch {
	p := logistics.ContactPatch{Name: r.Name, Email: r.Email, Phone: r.Phone, AddressID: r.AddressID}
	if r.Status != nil {
		s := logistics.PartyStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// FacilityRequest creates or updates a facility
type FacilityRequest struct {
	Name      *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Code      *string    `json:"code" binding:"omitempty,min=1,max=50"`
	Type      *string    `json:"type" binding:"omitempty,oneof=warehouse distribution_center store"`
	AddressID *uuid.UUID `json:"addressId"`
	Capacity  *int       `json:"capacity" binding:"omitempty,gte=0"`
	Status    *string    `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r FacilityRequest) patch() logistics.FacilityPatch {
	p := logistics.FacilityPatch{Name: r.Name, Code: r.Code, AddressID: r.AddressID, Capacity: r.Capacity}
	if r.Type != nil {
		t := logistics.FacilityType(*r.Type)
		p.Type = &t
	}
	if r.Status != nil {
		s := logistics.PartyStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// =============================================================================
// Order DTOs
// =============================================================================

// OrderItemRequest adds a line to an order. A missing unit price takes the
// product's current price.
type OrderItemRequest struct {
	ProductID uuid.UUID        `json:"productId" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" binding:"omitempty,decimal_gte0"`
}

// UpdateOrderItemRequest changes quantity and/or price of a line
type UpdateOrderItemRequest struct {
	Quantity  *int             `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" binding:"omitempty,decimal_gte0"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	OrderNumber string             `json:"orderNumber" binding:"max=50"`
	CustomerID  uuid.UUID          `json:"customerId" binding:"required"`
	OrderDate   *time.Time         `json:"orderDate"`
	Notes       string             `json:"notes"`
	Items       []OrderItemRequest `json:"items" binding:"dive"`
}

// UpdateOrderRequest represents a partial order update
type UpdateOrderRequest struct {
	CustomerID *uuid.UUID `json:"customerId"`
	Status     *string    `json:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	OrderDate  *time.Time `json:"orderDate"`
	Notes      *string    `json:"notes"`
}

func (r UpdateOrderRequest) patch() logistics.OrderPatch {
	p := logistics.OrderPatch{CustomerID: r.CustomerID, OrderDate: r.OrderDate, Notes: r.Notes}
	if r.Status != nil {
		s := logistics.OrderStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// CreateShipmentRequest represents a request to create a shipment
type CreateShipmentRequest struct {
	ShipmentNumber string    `json:"shipmentNumber" binding:"max=50"`
	OrderID        uuid.UUID `json:"orderId" binding:"required"`
	FacilityID     uuid.UUID `json:"facilityId" binding:"required"`
	Carrier        string    `json:"carrier" binding:"max=100"`
	TrackingNumber string    `json:"trackingNumber" binding:"max=100"`
}

// UpdateShipmentRequest represents a partial shipment update
type UpdateShipmentRequest struct {
	FacilityID     *uuid.UUID `json:"facilityId"`
	Carrier        *string    `json:"carrier" binding:"omitempty,max=100"`
	TrackingNumber *string    `json:"trackingNumber" binding:"omitempty,max=100"`
	Status         *string    `json:"status" binding:"omitempty,oneof=pending in_transit delivered returned cancelled"`
}

func (r UpdateShipmentRequest) patch() logistics.ShipmentPatch {
	p := logistics.ShipmentPatch{FacilityID: r.FacilityID, Carrier: r.Carrier, TrackingNumber: r.TrackingNumber}
	if r.Status != nil {
		s := logistics.ShipmentStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// =============================================================================
// Inventory DTOs
// =============================================================================

// CreateInventoryItemRequest opens a stock record for a product at a facility
type CreateInventoryItemRequest struct {
	ProductID        uuid.UUID `json:"productId" binding:"required"`
	FacilityID       uuid.UUID `json:"facilityId" binding:"required"`
	ReorderLevel     int       `json:"reorderLevel" binding:"gte=0"`
	QuantityReserved int       `json:"quantityReserved" binding:"gte=0"`
}

// UpdateInventoryItemRequest represents a partial inventory item update
type UpdateInventoryItemRequest struct {
	QuantityReserved *int `json:"quantityReserved" binding:"omitempty,gte=0"`
	ReorderLevel     *int `json:"reorderLevel" binding:"omitempty,gte=0"`
}

func (r UpdateInventoryItemRequest) patch() logistics.InventoryItemPatch {
	return logistics.InventoryItemPatch{QuantityReserved: r.QuantityReserved, ReorderLevel: r.ReorderLevel}
}

// CreateInventoryItemDetailRequest records a stock movement
type CreateInventoryItemDetailRequest struct {
	InventoryItemID uuid.UUID  `json:"inventoryItemId" binding:"required"`
	QuantityDiff    int        `json:"quantityDiff" binding:"required,ne=0"`
	Reason          string     `json:"reason" binding:"max=200"`
	ShipmentID      *uuid.UUID `json:"shipmentId"`
}

// UpdateInventoryItemDetailRequest changes the annotations of a movement
type UpdateInventoryItemDetailRequest struct {
	Reason     *string    `json:"reason" binding:"omitempty,max=200"`
	ShipmentID *uuid.UUID `json:"shipmentId"`
}

func (r UpdateInventoryItemDetailRequest) patch() logistics.InventoryItemDetailPatch {
	return logistics.InventoryItemDetailPatch{Reason: r.Reason, ShipmentID: r.ShipmentID}
}
