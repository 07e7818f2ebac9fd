package crm

import (
	"strings"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadSource is where a lead came from
type LeadSource string

const (
	LeadSourceWebsite       LeadSource = "website"
	LeadSourceReferral      LeadSource = "referral"
	LeadSourceSocial        LeadSource = "social"
	LeadSourceEvent         LeadSource = "event"
	LeadSourceColdCall      LeadSource = "cold_call"
	LeadSourceAdvertisement LeadSource = "advertisement"
	LeadSourceOther         LeadSource = "other"
)

// LeadSources lists every valid source
var LeadSources = []LeadSource{
	LeadSourceWebsite, LeadSourceReferral, LeadSourceSocial, LeadSourceEvent,
	LeadSourceColdCall, LeadSourceAdvertisement, LeadSourceOther,
}

// IsValid reports whether s is a known source
func (s LeadSource) IsValid() bool {
	for _, v := range LeadSources {
		if v == s {
			return true
		}
	}
	return false
}

// LeadStatus is the qualification status of a lead
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusUnqualified LeadStatus = "unqualified"
	LeadStatusConverted   LeadStatus = "converted"
	LeadStatusLost        LeadStatus = "lost"
)

// LeadStatuses lists every valid lead status
var LeadStatuses = []LeadStatus{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
	LeadStatusUnqualified, LeadStatusConverted, LeadStatusLost,
}

// IsValid reports whether s is a known status
func (s LeadStatus) IsValid() bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// suggestedTransitions is advisory only; any valid status may be set.
var suggestedTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusNew:         {LeadStatusContacted, LeadStatusUnqualified, LeadStatusLost},
	LeadStatusContacted:   {LeadStatusQualified, LeadStatusUnqualified, LeadStatusLost},
	LeadStatusQualified:   {LeadStatusConverted, LeadStatusLost},
	LeadStatusUnqualified: {LeadStatusContacted, LeadStatusLost},
	LeadStatusConverted:   {},
	LeadStatusLost:        {LeadStatusNew},
}

// SuggestedNextStatuses returns the conventional next steps from status
func SuggestedNextStatuses(status LeadStatus) []LeadStatus {
	return append([]LeadStatus{}, suggestedTransitions[status]...)
}

// LeadSearchFields are matched by the free-text search of lead lists
var LeadSearchFields = []string{"firstName", "lastName", "fullName", "company", "email", "phone"}

// Lead is a prospective customer not yet qualified into an account
type Lead struct {
	shared.BaseAggregateRoot
	FirstName           string          `json:"firstName"`
	LastName            string          `json:"lastName"`
	Company             string          `json:"company"`
	Title               string          `json:"title"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Source              LeadSource      `json:"source"`
	Status              LeadStatus      `json:"status"`
	Score               int             `json:"score"`
	EstimatedValue      decimal.Decimal `json:"estimatedValue"`
	AssignedTo          string          `json:"assignedTo"`
	Notes               string          `json:"notes"`
	ConvertedCustomerID *uuid.UUID      `json:"convertedCustomerId"`
	ConvertedAt         *time.Time      `json:"convertedAt"`
}

// Field implements query.Record
func (l Lead) Field(name string) (any, bool) {
	if name == "fullName" {
		return l.FullName(), true
	}
	return query.StructField(l, name)
}

// FullName joins first and last name
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// NewLead creates a lead in status new
func NewLead(firstName, lastName, email string, source LeadSource) (*Lead, error) {
	if err := validateRequired("first_name", firstName, 100); err != nil {
		return nil, err
	}
	if err := validateRequired("last_name", lastName, 100); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if source == "" {
		source = LeadSourceOther
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid lead source")
	}

	l := &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		Source:            source,
		Status:            LeadStatusNew,
		EstimatedValue:    decimal.Zero,
	}
	return l, nil
}

// LeadPatch carries a partial update; nil fields are left unchanged
type LeadPatch struct {
	FirstName      *string
	LastName       *string
	Company        *string
	Title          *string
	Email          *string
	Phone          *string
	Source         *LeadSource
	Status         *LeadStatus
	Score          *int
	EstimatedValue *decimal.Decimal
	AssignedTo     *string
	Notes          *string
}

// Apply validates and applies a partial update
func (l *Lead) Apply(p LeadPatch) error {
	if p.FirstName != nil {
		if err := validateRequired("first_name", *p.FirstName, 100); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := validateRequired("last_name", *p.LastName, 100); err != nil {
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
	if p.Source != nil && !p.Source.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", "Invalid lead source")
	}
	if p.Score != nil {
		if err := validateScore(*p.Score); err != nil {
			return err
		}
	}
	if p.EstimatedValue != nil && p.EstimatedValue.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Estimated value cannot be negative")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid lead status")
	}

	setString(&l.FirstName, p.FirstName)
	setString(&l.LastName, p.LastName)
	setString(&l.Company, p.Company)
	setString(&l.Title, p.Title)
	setString(&l.Email, p.Email)
	setString(&l.Phone, p.Phone)
	setString(&l.AssignedTo, p.AssignedTo)
	setString(&l.Notes, p.Notes)
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Score != nil {
		l.Score = *p.Score
	}
	if p.EstimatedValue != nil {
		l.EstimatedValue = *p.EstimatedValue
	}
	if p.Status != nil {
		return l.ChangeStatus(*p.Status)
	}
	l.Touch()
	return nil
}

// ChangeStatus sets any valid status. Transitions are not enforced.
func (l *Lead) ChangeStatus(status LeadStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid lead status")
	}
	old := l.Status
	l.Status = status
	if status != LeadStatusConverted {
		l.ConvertedCustomerID = nil
		l.ConvertedAt = nil
	}
	l.Touch()
	if old != status {
		l.AddDomainEvent(NewLeadStatusChangedEvent(l, old, status))
	}
	return nil
}

// MarkConverted links the lead to the customer created from it
func (l *Lead) MarkConverted(customerID uuid.UUID, opportunityID *uuid.UUID) error {
	if l.Status == LeadStatusConverted {
		return shared.NewDomainError("ALREADY_CONVERTED", "Lead is already converted")
	}
	now := time.Now()
	old := l.Status
	l.Status = LeadStatusConverted
	l.ConvertedCustomerID = &customerID
	l.ConvertedAt = &now
	l.Touch()
	l.AddDomainEvent(NewLeadStatusChangedEvent(l, old, LeadStatusConverted))
	l.AddDomainEvent(NewLeadConvertedEvent(l, customerID, opportunityID))
	return nil
}

// IsConverted reports whether the lead has become a customer
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

func validateScore(score int) error {
	if score < 0 || score > 100 {
		return shared.NewDomainError("INVALID_SCORE", "Score must be between 0 and 100")
	}
	return nil
}
