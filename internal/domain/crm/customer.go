package crm

import (
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the lifecycle status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusProspect CustomerStatus = "prospect"
	CustomerStatusChurned  CustomerStatus = "churned"
)

// CustomerStatuses lists every valid customer status
var CustomerStatuses = []CustomerStatus{
	CustomerStatusActive, CustomerStatusInactive, CustomerStatusProspect, CustomerStatusChurned,
}

// IsValid reports whether s is a known status
func (s CustomerStatus) IsValid() bool {
	for _, v := range CustomerStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CustomerTier is the commercial segment of a customer
type CustomerTier string

const (
	CustomerTierStandard   CustomerTier = "standard"
	CustomerTierPremium    CustomerTier = "premium"
	CustomerTierEnterprise CustomerTier = "enterprise"
)

// IsValid reports whether t is a known tier
func (t CustomerTier) IsValid() bool {
	switch t {
	case CustomerTierStandard, CustomerTierPremium, CustomerTierEnterprise:
		return true
	}
	return false
}

// CustomerSearchFields are matched by the free-text search of customer lists
var CustomerSearchFields = []string{"name", "company", "email", "phone", "industry", "city"}

// Customer is a CRM account
type Customer struct {
	shared.BaseAggregateRoot
	Name          string          `json:"name"`
	Company       string          `json:"company"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Industry      string          `json:"industry"`
	Status        CustomerStatus  `json:"status"`
	Tier          CustomerTier    `json:"tier"`
	AssignedTo    string          `json:"assignedTo"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	PostalCode    string          `json:"postalCode"`
	Country       string          `json:"country"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	LastContactAt *time.Time      `json:"lastContactAt"`
	Tags          []string        `json:"tags"`
	Notes         string          `json:"notes"`
}

// Field implements query.Record
func (c Customer) Field(name string) (any, bool) {
	return query.StructField(c, name)
}

// NewCustomer creates a customer with required fields
func NewCustomer(name, email string) (*Customer, error) {
	if err := validateRequired("name", name, 200); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Status:            CustomerStatusProspect,
		Tier:              CustomerTierStandard,
		TotalRevenue:      decimal.Zero,
		Tags:              []string{},
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// CustomerPatch carries a partial update; nil fields are left unchanged
type CustomerPatch struct {
	Name          *string
	Company       *string
	Email         *string
	Phone         *string
	Industry      *string
	Status        *CustomerStatus
	Tier          *CustomerTier
	AssignedTo    *string
	Address       *string
	City          *string
	State         *string
	PostalCode    *string
	Country       *string
	TotalRevenue  *decimal.Decimal
	LastContactAt *time.Time
	Tags          []string
	Notes         *string
}

// Apply validates and applies a partial update
func (c *Customer) Apply(p CustomerPatch) error {
	if p.Name != nil {
		if err := validateRequired("name", *p.Name, 200); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.Phone != nil {
		if err := validatePhone(*p.Phone); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid customer status")
	}
	if p.Tier != nil && !p.Tier.IsValid() {
		return shared.NewDomainError("INVALID_TIER", "Invalid customer tier")
	}
	if p.TotalRevenue != nil && p.TotalRevenue.IsNegative() {
		return shared.NewDomainError("INVALID_REVENUE", "Total revenue cannot be negative")
	}

	setString(&c.Name, p.Name)
	setString(&c.Company, p.Company)
	setString(&c.Email, p.Email)
	setString(&c.Phone, p.Phone)
	setString(&c.Industry, p.Industry)
	setString(&c.AssignedTo, p.AssignedTo)
	setString(&c.Address, p.Address)
	setString(&c.City, p.City)
	setString(&c.State, p.State)
	setString(&c.PostalCode, p.PostalCode)
	setString(&c.Country, p.Country)
	setString(&c.Notes, p.Notes)
	if p.Tier != nil {
		c.Tier = *p.Tier
	}
	if p.TotalRevenue != nil {
		c.TotalRevenue = *p.TotalRevenue
	}
	if p.LastContactAt != nil {
		t := *p.LastContactAt
		c.LastContactAt = &t
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
	if p.Status != nil && *p.Status != c.Status {
		return c.ChangeStatus(*p.Status)
	}
	c.Touch()
	return nil
}

// ChangeStatus moves the customer to another status
func (c *Customer) ChangeStatus(status CustomerStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid customer status")
	}
	old := c.Status
	c.Status = status
	c.Touch()
	if old != status {
		c.AddDomainEvent(NewCustomerStatusChangedEvent(c, old, status))
	}
	return nil
}

// RecordRevenue adds won business to the customer's lifetime revenue
func (c *Customer) RecordRevenue(amount decimal.Decimal) {
	c.TotalRevenue = c.TotalRevenue.Add(amount)
	if c.Status == CustomerStatusProspect {
		c.Status = CustomerStatusActive
	}
	c.Touch()
}

// MarkContacted records the most recent interaction
func (c *Customer) MarkContacted(at time.Time) {
	if c.LastContactAt == nil || at.After(*c.LastContactAt) {
		c.LastContactAt = &at
		c.Touch()
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
