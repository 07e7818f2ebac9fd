package logistics

import (
	"strings"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is a postal address referenced by facilities, suppliers and customers
type Address struct {
	shared.BaseEntity
	Line1      string `json:"line1" gorm:"type:varchar(200);not null"`
	Line2      string `json:"line2" gorm:"type:varchar(200)"`
	City       string `json:"city" gorm:"type:varchar(100);not null;index"`
	State      string `json:"state" gorm:"type:varchar(100)"`
	PostalCode string `json:"postalCode" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(100);not null"`
}

func (Address) TableName() string { return "addresses" }

// NewAddress creates an address
func NewAddress(line1, city, country string) (*Address, error) {
	a := &Address{BaseEntity: shared.NewBaseEntity(), Line1: line1, City: city, Country: country}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Address) validate() error {
	if err := shared.RequireString("line1", a.Line1, 200); err != nil {
		return err
	}
	if err := shared.RequireString("city", a.City, 100); err != nil {
		return err
	}
	return shared.RequireString("country", a.Country, 100)
}

// AddressPatch carries a partial update; nil fields are left unchanged
type AddressPatch struct {
	Line1, Line2, City, State, PostalCode, Country *string
}

// Apply validates and applies a partial update
func (a *Address) Apply(p AddressPatch) error {
	next := *a
	set(&next.Line1, p.Line1)
	set(&next.Line2, p.Line2)
	set(&next.City, p.City)
	set(&next.State, p.State)
	set(&next.PostalCode, p.PostalCode)
	set(&next.Country, p.Country)
	if err := next.validate(); err != nil {
		return err
	}
	*a = next
	a.Touch()
	return nil
}

// PartyStatus is the status of suppliers, customers and facilities
type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "active"
	PartyStatusInactive PartyStatus = "inactive"
)

// IsValid reports whether s is a known status
func (s PartyStatus) IsValid() bool {
	return s == PartyStatusActive || s == PartyStatusInactive
}

// Contact holds the fields shared by suppliers and logistics customers
type Contact struct {
	Name      string      `json:"name" gorm:"type:varchar(200);not null"`
	Email     string      `json:"email" gorm:"type:varchar(200);index"`
	Phone     string      `json:"phone" gorm:"type:varchar(50)"`
	AddressID *uuid.UUID  `json:"addressId" gorm:"index"`
	Status    PartyStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
}

func newContact(name, email, phone string) (Contact, error) {
	c := Contact{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Phone: phone, Status: PartyStatusActive}
	return c, c.validate()
}

func (c *Contact) validate() error {
	if err := shared.RequireString("name", c.Name, 200); err != nil {
		return err
	}
	if err := shared.CheckEmail(c.Email); err != nil {
		return err
	}
	if err := shared.CheckPhone(c.Phone); err != nil {
		return err
	}
	if !c.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be active or inactive")
	}
	return nil
}

// ContactPatch carries a partial update; nil fields are left unchanged
type ContactPatch struct {
	Name      *string
	Email     *string
	Phone     *string
	AddressID *uuid.UUID
	Status    *PartyStatus
}

func (c *Contact) apply(p ContactPatch) error {
	next := *c
	set(&next.Name, p.Name)
	set(&next.Email, p.Email)
	set(&next.Phone, p.Phone)
	if p.AddressID != nil {
		id := *p.AddressID
		next.AddressID = &id
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if err := next.validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Supplier provides products
type Supplier struct {
	shared.BaseEntity
	Contact
	ContactName string `json:"contactName" gorm:"type:varchar(100)"`
}

func (Supplier) TableName() string { return "suppliers" }

// NewSupplier creates an active supplier
func NewSupplier(name, contactName, email, phone string) (*Supplier, error) {
	c, err := newContact(name, email, phone)
	if err != nil {
		return nil, err
	}
	if err := shared.CheckLength("contact_name", contactName, 100); err != nil {
		return nil, err
	}
	return &Supplier{BaseEntity: shared.NewBaseEntity(), Contact: c, ContactName: contactName}, nil
}

// Apply validates and applies a partial update
func (s *Supplier) Apply(p ContactPatch, contactName *string) error {
	if contactName != nil {
		if err := shared.CheckLength("contact_name", *contactName, 100); err != nil {
			return err
		}
	}
	if err := s.Contact.apply(p); err != nil {
		return err
	}
	set(&s.ContactName, contactName)
	s.Touch()
	return nil
}

// Customer is a ship-to party of logistics orders. It is unrelated to the
// CRM customer.
type Customer struct {
	shared.BaseEntity
	Contact
}

func (Customer) TableName() string { return "logistics_customers" }

// NewCustomer creates an active logistics customer
func NewCustomer(name, email, phone string) (*Customer, error) {
	c, err := newContact(name, email, phone)
	if err != nil {
		return nil, err
	}
	return &Customer{BaseEntity: shared.NewBaseEntity(), Contact: c}, nil
}

// Apply validates and applies a partial update
func (c *Customer) Apply(p ContactPatch) error {
	if err := c.Contact.apply(p); err != nil {
		return err
	}
	c.Touch()
	return nil
}

// FacilityType is the role of a facility in the network
type FacilityType string

const (
	FacilityWarehouse          FacilityType = "warehouse"
	FacilityDistributionCenter FacilityType = "distribution_center"
	FacilityStore              FacilityType = "store"
)

// IsValid reports whether t is a known facility type
func (t FacilityType) IsValid() bool {
	switch t {
	case FacilityWarehouse, FacilityDistributionCenter, FacilityStore:
		return true
	}
	return false
}

// Facility is a place that stores or ships stock
type Facility struct {
	shared.BaseEntity
	Name      string       `json:"name" gorm:"type:varchar(200);not null"`
	Code      string       `json:"code" gorm:"type:varchar(50);not null;uniqueIndex"`
	Type      FacilityType `json:"type" gorm:"type:varchar(30);not null;default:'warehouse'"`
	AddressID *uuid.UUID   `json:"addressId" gorm:"index"`
	Capacity  int          `json:"capacity" gorm:"not null;default:0"`
	Status    PartyStatus  `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
}

func (Facility) TableName() string { return "facilities" }

// NewFacility creates an active facility. The code is stored upper-cased.
func NewFacility(code, name string, facilityType FacilityType) (*Facility, error) {
	if facilityType == "" {
		facilityType = FacilityWarehouse
	}
	f := &Facility{
		BaseEntity: shared.NewBaseEntity(),
		Code:       normalizeCode(code),
		Name:       strings.TrimSpace(name),
		Type:       facilityType,
		Status:     PartyStatusActive,
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Facility) validate() error {
	if err := shared.RequireString("code", f.Code, 50); err != nil {
		return err
	}
	if err := shared.RequireString("name", f.Name, 200); err != nil {
		return err
	}
	if !f.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid facility type")
	}
	if f.Capacity < 0 {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity cannot be negative")
	}
	if !f.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be active or inactive")
	}
	return nil
}

// FacilityPatch carries a partial update; nil fields are left unchanged
type FacilityPatch struct {
	Name      *string
	Code      *string
	Type      *FacilityType
	AddressID *uuid.UUID
	Capacity  *int
	Status    *PartyStatus
}

// Apply validates and applies a partial update
func (f *Facility) Apply(p FacilityPatch) error {
	next := *f
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Code != nil {
		next.Code = normalizeCode(*p.Code)
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.AddressID != nil {
		id := *p.AddressID
		next.AddressID = &id
	}
	if p.Capacity != nil {
		next.Capacity = *p.Capacity
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if err := next.validate(); err != nil {
		return err
	}
	*f = next
	f.Touch()
	return nil
}
