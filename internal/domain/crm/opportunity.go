package crm

import (
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityStage is the position of a deal in the sales pipeline
type OpportunityStage string

const (
	StageProspecting   OpportunityStage = "prospecting"
	StageQualification OpportunityStage = "qualification"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed_won"
	StageClosedLost    OpportunityStage = "closed_lost"
)

// OpportunityStages lists the stages in pipeline order
var OpportunityStages = []OpportunityStage{
	StageProspecting, StageQualification, StageProposal,
	StageNegotiation, StageClosedWon, StageClosedLost,
}

var stageProbability = map[OpportunityStage]int{
	StageProspecting:   10,
	StageQualification: 25,
	StageProposal:      50,
	StageNegotiation:   75,
	StageClosedWon:     100,
	StageClosedLost:    0,
}

// IsValid reports whether s is a known stage
func (s OpportunityStage) IsValid() bool {
	_, ok := stageProbability[s]
	return ok
}

// IsClosed reports whether the deal is finished, won or lost
func (s OpportunityStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Probability returns the default win probability (percent) of the stage
func (s OpportunityStage) Probability() int {
	return stageProbability[s]
}

// OpportunitySearchFields are matched by the free-text search of opportunity lists
var OpportunitySearchFields = []string{"name", "description", "assignedTo"}

// Opportunity is a potential deal with a customer
type Opportunity struct {
	shared.BaseAggregateRoot
	Name              string           `json:"name"`
	CustomerID        uuid.UUID        `json:"customerId"`
	Stage             OpportunityStage `json:"stage"`
	Probability       int              `json:"probability"`
	Value             decimal.Decimal  `json:"value"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate"`
	ActualCloseDate   *time.Time       `json:"actualCloseDate"`
	AssignedTo        string           `json:"assignedTo"`
	Description       string           `json:"description"`
	LeadID            *uuid.UUID       `json:"leadId"`

	// RevenueCredit is what winning the deal added to a customer's revenue;
	// reopening takes back exactly this amount
	RevenueCredit *RevenueCredit `json:"revenueCredit,omitempty"`
}

// RevenueCredit is an amount booked to a customer's total revenue
type RevenueCredit struct {
	CustomerID uuid.UUID       `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
}

// Field implements query.Record
func (o Opportunity) Field(name string) (any, bool) {
	if name == "weightedValue" {
		return o.WeightedValue(), true
	}
	return query.StructField(o, name)
}

// NewOpportunity creates an opportunity. A nil probability derives it from the stage.
func NewOpportunity(name string, customerID uuid.UUID, stage OpportunityStage, value decimal.Decimal, probability *int) (*Opportunity, error) {
	if err := validateRequired("name", name, 200); err != nil {
		return nil, err
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Opportunity must reference a customer")
	}
	if stage == "" {
		stage = StageProspecting
	}
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", "Invalid opportunity stage")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Opportunity value cannot be negative")
	}

	o := &Opportunity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CustomerID:        customerID,
		Stage:             stage,
		Probability:       stage.Probability(),
		Value:             value,
	}
	if probability != nil {
		if err := validateProbability(*probability); err != nil {
			return nil, err
		}
		o.Probability = *probability
	}
	if stage.IsClosed() {
		now := time.Now()
		o.ActualCloseDate = &now
	}
	return o, nil
}

// OpportunityPatch carries a partial update; nil fields are left unchanged
type OpportunityPatch struct {
	Name              *string
	CustomerID        *uuid.UUID
	Stage             *OpportunityStage
	Probability       *int
	Value             *decimal.Decimal
	ExpectedCloseDate *time.Time
	AssignedTo        *string
	Description       *string
}

// Apply validates and applies a partial update. A stage change without an
// explicit probability re-derives the probability from the stage.
func (o *Opportunity) Apply(p OpportunityPatch) error {
	if p.Name != nil {
		if err := validateRequired("name", *p.Name, 200); err != nil {
			return err
		}
	}
	if p.CustomerID != nil && *p.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Opportunity must reference a customer")
	}
	if p.Stage != nil && !p.Stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", "Invalid opportunity stage")
	}
	if p.Probability != nil {
		if err := validateProbability(*p.Probability); err != nil {
			return err
		}
	}
	if p.Value != nil && p.Value.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Opportunity value cannot be negative")
	}

	setString(&o.Name, p.Name)
	setString(&o.AssignedTo, p.AssignedTo)
	setString(&o.Description, p.Description)
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
	if p.Value != nil {
		o.Value = *p.Value
	}
	if p.ExpectedCloseDate != nil {
		t := *p.ExpectedCloseDate
		o.ExpectedCloseDate = &t
	}
	if p.Stage != nil && *p.Stage != o.Stage {
		if err := o.ChangeStage(*p.Stage); err != nil {
			return err
		}
	}
	if p.Probability != nil {
		o.Probability = *p.Probability
	}
	o.Touch()
	return nil
}

// ChangeStage moves the deal, re-derives its probability and stamps the
// actual close date when the deal closes.
func (o *Opportunity) ChangeStage(stage OpportunityStage) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", "Invalid opportunity stage")
	}
	old := o.Stage
	o.Stage = stage
	o.Probability = stage.Probability()
	if stage.IsClosed() {
		if o.ActualCloseDate == nil || !old.IsClosed() {
			now := time.Now()
			o.ActualCloseDate = &now
		}
	} else {
		o.ActualCloseDate = nil
	}
	o.Touch()
	if old == stage {
		return nil
	}

	var adjustment *RevenueCredit
	switch {
	case stage == StageClosedWon:
		credit := RevenueCredit{CustomerID: o.CustomerID, Amount: o.Value}
		o.RevenueCredit = &credit
		adjustment = &RevenueCredit{CustomerID: credit.CustomerID, Amount: credit.Amount}
	case old == StageClosedWon && o.RevenueCredit != nil:
		adjustment = &RevenueCredit{CustomerID: o.RevenueCredit.CustomerID, Amount: o.RevenueCredit.Amount.Neg()}
		o.RevenueCredit = nil
	}
	o.AddDomainEvent(NewOpportunityStageChangedEvent(o, old, stage, adjustment))
	return nil
}

// WeightedValue is value * probability / 100
func (o *Opportunity) WeightedValue() decimal.Decimal {
	return o.Value.Mul(decimal.NewFromInt(int64(o.Probability))).Div(decimal.NewFromInt(100))
}

func validateProbability(p int) error {
	if p < 0 || p > 100 {
		return shared.NewDomainError("INVALID_PROBABILITY", "Probability must be between 0 and 100")
	}
	return nil
}
