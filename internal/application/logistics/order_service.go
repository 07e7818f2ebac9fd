package logistics

import (
	"context"
	"errors"
	"time"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderService handles orders and their items
type OrderService struct {
	store[logistics.Order]
	repos Repositories
}

// Create creates a pending order, optionally with items
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*logistics.Order, error) {
	if err := mustExist(ctx, s.repos.Customers, &req.CustomerID, "CUSTOMER", "Customer"); err != nil {
		return nil, err
	}
	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := logistics.NewOrder(req.OrderNumber, req.CustomerID, orderDate)
	if err != nil {
		return nil, err
	}
	order.Notes = req.Notes
	for _, item := range req.Items {
		if err := s.addItem(ctx, order, item); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, order)
}

// Update applies a partial update, including status changes
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*logistics.Order, error) {
	if err := mustExist(ctx, s.repos.Customers, req.CustomerID, "CUSTOMER", "Customer"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(o *logistics.Order) error {
		return o.Apply(req.patch())
	})
}

// Items returns the lines of an order
func (s *OrderService) Items(ctx context.Context, id uuid.UUID) ([]logistics.OrderItem, error) {
	return s.repos.Orders.FindItems(ctx, id)
}

// AddItem appends a line and returns the order with its new total
func (s *OrderService) AddItem(ctx context.Context, id uuid.UUID, req OrderItemRequest) (*logistics.Order, error) {
	return s.update(ctx, id, func(o *logistics.Order) error {
		return s.addItem(ctx, o, req)
	})
}

// UpdateItem changes quantity and/or price of a line
func (s *OrderService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req UpdateOrderItemRequest) (*logistics.Order, error) {
	return s.update(ctx, id, func(o *logistics.Order) error {
		_, err := o.UpdateItem(itemID, req.Quantity, req.UnitPrice)
		return err
	})
}

// RemoveItem drops a line
func (s *OrderService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*logistics.Order, error) {
	return s.update(ctx, id, func(o *logistics.Order) error {
		return o.RemoveItem(itemID)
	})
}

func (s *OrderService) addItem(ctx context.Context, o *logistics.Order, req OrderItemRequest) error {
	product, err := s.repos.Products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PRODUCT", "Product "+req.ProductID.String()+" does not exist")
		}
		return err
	}
	if product.Status == logistics.ProductStatusDiscontinued {
		return shared.NewDomainError("INVALID_PRODUCT", "Product "+product.SKU+" is discontinued")
	}
	price := product.UnitPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	_, err = o.AddItem(product.ID, req.Quantity, price)
	return err
}

// ShipmentService handles shipments. Shipment progress advances the order
// it belongs to.
type ShipmentService struct {
	store[logistics.Shipment]
	repos Repositories
}

// Create creates a pending shipment for an open order
func (s *ShipmentService) Create(ctx context.Context, req CreateShipmentRequest) (*logistics.Shipment, error) {
	order, err := s.repos.Orders.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order "+req.OrderID.String()+" does not exist")
		}
		return nil, err
	}
	if order.Status == logistics.OrderStatusCancelled || order.Status == logistics.OrderStatusDelivered {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot ship a "+string(order.Status)+" order")
	}
	if err := mustExist(ctx, s.repos.Facilities, &req.FacilityID, "FACILITY", "Facility"); err != nil {
		return nil, err
	}

	shipment, err := logistics.NewShipment(req.ShipmentNumber, req.OrderID, req.FacilityID)
	if err != nil {
		return nil, err
	}
	shipment.Carrier = req.Carrier
	shipment.TrackingNumber = req.TrackingNumber
	return s.create(ctx, shipment)
}

// Update applies a partial update. A shipment leaving or reaching its
// destination moves a processing or shipped order along with it.
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, req UpdateShipmentRequest) (*logistics.Shipment, error) {
	if err := mustExist(ctx, s.repos.Facilities, req.FacilityID, "FACILITY", "Facility"); err != nil {
		return nil, err
	}
	shipment, err := s.update(ctx, id, func(sh *logistics.Shipment) error {
		return sh.Apply(req.patch())
	})
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := s.advanceOrder(ctx, shipment); err != nil {
			return nil, err
		}
	}
	return shipment, nil
}

func (s *ShipmentService) advanceOrder(ctx context.Context, shipment *logistics.Shipment) error {
	var next logistics.OrderStatus
	switch shipment.Status {
	case logistics.ShipmentStatusInTransit:
		next = logistics.OrderStatusShipped
	case logistics.ShipmentStatusDelivered:
		next = logistics.OrderStatusDelivered
	default:
		return nil
	}
	order, err := s.repos.Orders.FindByID(ctx, shipment.OrderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil
	}
	if err := order.ChangeStatus(next); err != nil {
		return err
	}
	return s.repos.Orders.Save(ctx, order)
}
