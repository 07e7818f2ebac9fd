package logistics

import (
	"fmt"
	"slices"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentStatus is the transport status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusReturned  ShipmentStatus = "returned"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPending:   {ShipmentStatusInTransit, ShipmentStatusCancelled},
	ShipmentStatusInTransit: {ShipmentStatusDelivered, ShipmentStatusReturned},
	ShipmentStatusDelivered: {ShipmentStatusReturned},
	ShipmentStatusReturned:  {},
	ShipmentStatusCancelled: {},
}

// IsValid reports whether s is a known status
func (s ShipmentStatus) IsValid() bool {
	_, ok := shipmentTransitions[s]
	return ok
}

// Shipment moves (part of) an order out of a facility
type Shipment struct {
	shared.BaseEntity
	ShipmentNumber string         `json:"shipmentNumber" gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID        uuid.UUID      `json:"orderId" gorm:"not null;index"`
	FacilityID     uuid.UUID      `json:"facilityId" gorm:"not null;index"`
	Carrier        string         `json:"carrier" gorm:"type:varchar(100)"`
	TrackingNumber string         `json:"trackingNumber" gorm:"type:varchar(100);index"`
	Status         ShipmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippedAt      *time.Time     `json:"shippedAt"`
	DeliveredAt    *time.Time     `json:"deliveredAt"`
}

func (Shipment) TableName() string { return "shipments" }

// NewShipment creates a pending shipment. An empty number is generated.
func NewShipment(shipmentNumber string, orderID, facilityID uuid.UUID) (*Shipment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Shipment must reference an order")
	}
	if facilityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FACILITY", "Shipment must reference a facility")
	}
	s := &Shipment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		FacilityID: facilityID,
		Status:     ShipmentStatusPending,
	}
	if shipmentNumber == "" {
		shipmentNumber = fmt.Sprintf("SHP-%s-%s", s.CreatedAt.Format("20060102"), s.ID.String()[:8])
	}
	if err := shared.RequireString("shipment_number", shipmentNumber, 50); err != nil {
		return nil, err
	}
	s.ShipmentNumber = normalizeCode(shipmentNumber)
	return s, nil
}

// ChangeStatus moves the shipment and stamps shippedAt / deliveredAt
func (s *Shipment) ChangeStatus(status ShipmentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid shipment status")
	}
	if status == s.Status {
		return nil
	}
	if !slices.Contains(shipmentTransitions[s.Status], status) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change shipment status from %s to %s", s.Status, status))
	}
	now := time.Now()
	switch status {
	case ShipmentStatusInTransit:
		s.ShippedAt = &now
	case ShipmentStatusDelivered:
		s.DeliveredAt = &now
	}
	s.Status = status
	s.Touch()
	return nil
}

// ShipmentPatch carries a partial update; nil fields are left unchanged
type ShipmentPatch struct {
	FacilityID     *uuid.UUID
	Carrier        *string
	TrackingNumber *string
	Status         *ShipmentStatus
}

// Apply validates and applies a partial update
func (s *Shipment) Apply(p ShipmentPatch) error {
	if p.FacilityID != nil {
		if *p.FacilityID == uuid.Nil {
			return shared.NewDomainError("INVALID_FACILITY", "Shipment must reference a facility")
		}
		s.FacilityID = *p.FacilityID
	}
	set(&s.Carrier, p.Carrier)
	set(&s.TrackingNumber, p.TrackingNumber)
	if p.Status != nil {
		if err := s.ChangeStatus(*p.Status); err != nil {
			return err
		}
	}
	s.Touch()
	return nil
}
