package logistics

import (
	"fmt"
	"slices"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

// Order is a customer order. TotalAmount always equals the sum of the
// item line totals.
type Order struct {
	shared.BaseEntity
	OrderNumber string          `json:"orderNumber" gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID  uuid.UUID       `json:"customerId" gorm:"not null;index"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderDate   time.Time       `json:"orderDate" gorm:"not null;index"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `json:"notes" gorm:"type:text"`
	Items       []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one product line of an order
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `json:"orderId" gorm:"not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `json:"lineTotal" gorm:"type:decimal(18,4);not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// NewOrder creates a pending order. An empty number is generated from the order date.
func NewOrder(orderNumber string, customerID uuid.UUID, orderDate time.Time) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Order must reference a customer")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	o := &Order{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		Status:      OrderStatusPending,
		OrderDate:   orderDate,
		TotalAmount: decimal.Zero,
		Items:       []OrderItem{},
	}
	if orderNumber == "" {
		orderNumber = fmt.Sprintf("ORD-%s-%s", orderDate.Format("20060102"), o.ID.String()[:8])
	}
	if err := shared.RequireString("order_number", orderNumber, 50); err != nil {
		return nil, err
	}
	o.OrderNumber = normalizeCode(orderNumber)
	return o, nil
}

// IsEditable reports whether items may still change
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// AddItem appends a line and recomputes the total
func (o *Order) AddItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if !o.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only change while the order is pending or confirmed")
	}
	if err := validateLine(productID, quantity, unitPrice); err != nil {
		return nil, err
	}
	item := OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	item.recompute()
	o.Items = append(o.Items, item)
	o.Recalculate()
	return &o.Items[len(o.Items)-1], nil
}

// UpdateItem changes quantity and/or price of a line
func (o *Order) UpdateItem(itemID uuid.UUID, quantity *int, unitPrice *decimal.Decimal) (*OrderItem, error) {
	if !o.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only change while the order is pending or confirmed")
	}
	i := o.itemIndex(itemID)
	if i < 0 {
		return nil, shared.NotFound("Order item")
	}
	item := o.Items[i]
	if quantity != nil {
		item.Quantity = *quantity
	}
	if unitPrice != nil {
		item.UnitPrice = *unitPrice
	}
	if err := validateLine(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
		return nil, err
	}
	item.recompute()
	item.Touch()
	o.Items[i] = item
	o.Recalculate()
	return &o.Items[i], nil
}

// RemoveItem drops a line
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if !o.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Items can only change while the order is pending or confirmed")
	}
	i := o.itemIndex(itemID)
	if i < 0 {
		return shared.NotFound("Order item")
	}
	o.Items = slices.Delete(o.Items, i, i+1)
	o.Recalculate()
	return nil
}

// Recalculate restores lineTotal = quantity * unitPrice on every item and
// totalAmount = sum of line totals
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].recompute()
		total = total.Add(o.Items[i].LineTotal)
	}
	o.TotalAmount = total
	o.Touch()
}

// ChangeStatus moves the order along its lifecycle
func (o *Order) ChangeStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}
	if status == o.Status {
		return nil
	}
	if !o.Status.CanTransitionTo(status) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, status))
	}
	if status == OrderStatusConfirmed && len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm an order without items")
	}
	o.Status = status
	o.Touch()
	return nil
}

// OrderPatch carries a partial update; nil fields are left unchanged
type OrderPatch struct {
	CustomerID *uuid.UUID
	Status     *OrderStatus
	OrderDate  *time.Time
	Notes      *string
}

// Apply validates and applies a partial update
func (o *Order) Apply(p OrderPatch) error {
	if p.CustomerID != nil {
		if *p.CustomerID == uuid.Nil {
			return shared.NewDomainError("INVALID_CUSTOMER", "Order must reference a customer")
		}
		o.CustomerID = *p.CustomerID
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}
	set(&o.Notes, p.Notes)
	if p.Status != nil {
		if err := o.ChangeStatus(*p.Status); err != nil {
			return err
		}
	}
	o.Touch()
	return nil
}

func (o *Order) itemIndex(id uuid.UUID) int {
	return slices.IndexFunc(o.Items, func(it OrderItem) bool { return it.ID == id })
}

func (it *OrderItem) recompute() {
	it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func validateLine(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Order item must reference a product")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}
