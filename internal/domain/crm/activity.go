package crm

import (
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
)

// ActivityType is the kind of interaction
type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeTask    ActivityType = "task"
	ActivityTypeNote    ActivityType = "note"
)

// IsValid reports whether t is a known activity type
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeMeeting, ActivityTypeTask, ActivityTypeNote:
		return true
	}
	return false
}

// ActivityStatus is the completion state of an activity
type ActivityStatus string

const (
	ActivityStatusPlanned   ActivityStatus = "planned"
	ActivityStatusCompleted ActivityStatus = "completed"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// ActivityStatuses lists every valid activity status
var ActivityStatuses = []ActivityStatus{ActivityStatusPlanned, ActivityStatusCompleted, ActivityStatusCancelled}

// IsValid reports whether s is a known status
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusPlanned, ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	}
	return false
}

// ActivityPriority ranks activities
type ActivityPriority string

const (
	PriorityLow    ActivityPriority = "low"
	PriorityMedium ActivityPriority = "medium"
	PriorityHigh   ActivityPriority = "high"
)

// IsValid reports whether p is a known priority
func (p ActivityPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// RelatedType names the entity an activity is attached to
type RelatedType string

const (
	RelatedCustomer    RelatedType = "customer"
	RelatedLead        RelatedType = "lead"
	RelatedOpportunity RelatedType = "opportunity"
)

// IsValid reports whether r is a known related type
func (r RelatedType) IsValid() bool {
	switch r {
	case RelatedCustomer, RelatedLead, RelatedOpportunity:
		return true
	}
	return false
}

// ActivitySearchFields are matched by the free-text search of activity lists
var ActivitySearchFields = []string{"subject", "description", "assignedTo"}

// Activity is a call, email, meeting, task or note tied to a CRM record
type Activity struct {
	shared.BaseAggregateRoot
	Type        ActivityType     `json:"type"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	Status      ActivityStatus   `json:"status"`
	Priority    ActivityPriority `json:"priority"`
	DueDate     *time.Time       `json:"dueDate"`
	CompletedAt *time.Time       `json:"completedAt"`
	RelatedType RelatedType      `json:"relatedType"`
	RelatedID   uuid.UUID        `json:"relatedId"`
	AssignedTo  string           `json:"assignedTo"`
	Outcome     string           `json:"outcome"`
}

// Field implements query.Record
func (a Activity) Field(name string) (any, bool) {
	return query.StructField(a, name)
}

// NewActivity creates a planned activity attached to a CRM record
func NewActivity(activityType ActivityType, subject string, relatedType RelatedType, relatedID uuid.UUID) (*Activity, error) {
	if !activityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invalid activity type")
	}
	if err := validateRequired("subject", subject, 200); err != nil {
		return nil, err
	}
	if !relatedType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RELATED_TYPE", "Related type must be customer, lead or opportunity")
	}
	if relatedID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RELATED_ID", "Activity must reference a record")
	}

	return &Activity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              activityType,
		Subject:           subject,
		Status:            ActivityStatusPlanned,
		Priority:          PriorityMedium,
		RelatedType:       relatedType,
		RelatedID:         relatedID,
	}, nil
}

// ActivityPatch carries a partial update; nil fields are left unchanged
type ActivityPatch struct {
	Type        *ActivityType
	Subject     *string
	Description *string
	Priority    *ActivityPriority
	DueDate     *time.Time
	AssignedTo  *string
	Status      *ActivityStatus
}

// Apply validates and applies a partial update
func (a *Activity) Apply(p ActivityPatch) error {
	if p.Type != nil && !p.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid activity type")
	}
	if p.Subject != nil {
		if err := validateRequired("subject", *p.Subject, 200); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid activity priority")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid activity status")
	}

	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	setString(&a.Subject, p.Subject)
	setString(&a.Description, p.Description)
	setString(&a.AssignedTo, p.AssignedTo)
	if p.DueDate != nil {
		t := *p.DueDate
		a.DueDate = &t
	}
	if p.Status != nil && *p.Status != a.Status {
		switch *p.Status {
		case ActivityStatusCompleted:
			return a.Complete("")
		case ActivityStatusCancelled:
			return a.Cancel()
		default:
			a.Status = ActivityStatusPlanned
			a.CompletedAt = nil
		}
	}
	a.Touch()
	return nil
}

// Complete marks the activity done
func (a *Activity) Complete(outcome string) error {
	if a.Status == ActivityStatusCompleted {
		return shared.NewDomainError("ALREADY_COMPLETED", "Activity is already completed")
	}
	if a.Status == ActivityStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled activity cannot be completed")
	}
	now := time.Now()
	a.Status = ActivityStatusCompleted
	a.CompletedAt = &now
	if outcome != "" {
		a.Outcome = outcome
	}
	a.Touch()
	a.AddDomainEvent(NewActivityCompletedEvent(a))
	return nil
}

// Cancel calls the activity off
func (a *Activity) Cancel() error {
	if a.Status == ActivityStatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Activity is already cancelled")
	}
	if a.Status == ActivityStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Completed activity cannot be cancelled")
	}
	a.Status = ActivityStatusCancelled
	a.Touch()
	return nil
}

// IsUpcoming reports a planned activity due within [now, now+window]
func (a *Activity) IsUpcoming(now time.Time, window time.Duration) bool {
	if a.Status != ActivityStatusPlanned || a.DueDate == nil {
		return false
	}
	return !a.DueDate.Before(now) && !a.DueDate.After(now.Add(window))
}

// IsOverdue reports a planned activity whose due date has passed
func (a *Activity) IsOverdue(now time.Time) bool {
	return a.Status == ActivityStatusPlanned && a.DueDate != nil && a.DueDate.Before(now)
}
