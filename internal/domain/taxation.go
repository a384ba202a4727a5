package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/incometax/taxcalc/pkg/money"
)

// RecordKey identifies the single taxation record an employee may hold per
// organisation and financial year.
type RecordKey struct {
	EmployeeID     string  `json:"employee_id"`
	OrganisationID string  `json:"organisation_id"`
	TaxYear        TaxYear `json:"tax_year"`
}

func (k RecordKey) Validate() error {
	if strings.TrimSpace(k.EmployeeID) == "" {
		return invalid("employee_id", "is required")
	}
	if strings.TrimSpace(k.OrganisationID) == "" {
		return invalid("organisation_id", "is required")
	}
	if k.TaxYear.IsZero() {
		return invalid("tax_year", "is required")
	}
	return nil
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.OrganisationID, k.EmployeeID, k.TaxYear)
}

// RecordStatus tracks a taxation record through draft, computed and finalized.
type RecordStatus string

const (
	StatusDraft     RecordStatus = "draft"
	StatusComputed  RecordStatus = "computed"
	StatusFinalized RecordStatus = "finalized"
)

// IncomeSet is every income head attached to a record. Nil heads are absent.
type IncomeSet struct {
	Salary        *SalaryIncome
	Perquisites   money.Money
	HouseProperty *HousePropertyIncome
	CapitalGains  []CapitalGainsIncome
	Retirement    *RetirementBenefits
	Other         *OtherIncome
}

// clone copies every head so the result shares nothing with s.
func (s IncomeSet) clone() IncomeSet {
	out := s
	if s.Salary != nil {
		v := *s.Salary
		out.Salary = &v
	}
	if s.HouseProperty != nil {
		v := *s.HouseProperty
		out.HouseProperty = &v
	}
	if s.Retirement != nil {
		v := *s.Retirement
		out.Retirement = &v
	}
	if s.Other != nil {
		v := *s.Other
		out.Other = &v
	}
	if s.CapitalGains != nil {
		out.CapitalGains = append([]CapitalGainsIncome(nil), s.CapitalGains...)
	}
	return out
}

// TaxationReader is the read-only view of a record handed to calculators.
type TaxationReader interface {
	ID() uuid.UUID
	Key() RecordKey
	Regime() Regime
	Status() RecordStatus
	Income() IncomeSet
	Computation() (TaxComputation, bool)
}

// TaxationRecord aggregates one employee's income for one year and guards its
// lifecycle. Once finalized it rejects every mutation.
type TaxationRecord struct {
	id          uuid.UUID
	key         RecordKey
	regime      Regime
	income      IncomeSet
	status      RecordStatus
	computation *TaxComputation
	createdAt   time.Time
	updatedAt   time.Time
	finalizedAt time.Time
}

var _ TaxationReader = (*TaxationRecord)(nil)

func NewTaxationRecord(key RecordKey, regime Regime) (*TaxationRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if !regime.Valid() {
		return nil, invalid("regime", "%q must be 'old' or 'new'", regime)
	}
	ts := now()
	return &TaxationRecord{
		id:        uuid.New(),
		key:       key,
		regime:    regime,
		status:    StatusDraft,
		createdAt: ts,
		updatedAt: ts,
	}, nil
}

func (r *TaxationRecord) ID() uuid.UUID          { return r.id }
func (r *TaxationRecord) Key() RecordKey         { return r.key }
func (r *TaxationRecord) Regime() Regime         { return r.regime }
func (r *TaxationRecord) Status() RecordStatus   { return r.status }
func (r *TaxationRecord) Income() IncomeSet      { return r.income.clone() }
func (r *TaxationRecord) CreatedAt() time.Time   { return r.createdAt }
func (r *TaxationRecord) UpdatedAt() time.Time   { return r.updatedAt }
func (r *TaxationRecord) FinalizedAt() time.Time { return r.finalizedAt }
func (r *TaxationRecord) IsFinalized() bool      { return r.status == StatusFinalized }

func (r *TaxationRecord) Computation() (TaxComputation, bool) {
	if r.computation == nil {
		return TaxComputation{}, false
	}
	return *r.computation, true
}

// mutate applies fn unless the record is finalized. Any income change drops a
// stale computation and returns the record to draft.
func (r *TaxationRecord) mutate(fn func()) error {
	if r.status == StatusFinalized {
		return fmt.Errorf("%s: %w", r.key, ErrFinalizedRecord)
	}
	fn()
	r.status = StatusDraft
	r.computation = nil
	r.updatedAt = now()
	return nil
}

func (r *TaxationRecord) SetSalary(s SalaryIncome) error {
	return r.mutate(func() { r.income.Salary = &s })
}

func (r *TaxationRecord) SetPerquisites(m money.Money) error {
	return r.mutate(func() { r.income.Perquisites = m })
}

func (r *TaxationRecord) SetHouseProperty(h HousePropertyIncome) error {
	return r.mutate(func() { r.income.HouseProperty = &h })
}

func (r *TaxationRecord) AddCapitalGain(c CapitalGainsIncome) error {
	return r.mutate(func() { r.income.CapitalGains = append(r.income.CapitalGains, c) })
}

func (r *TaxationRecord) ClearCapitalGains() error {
	return r.mutate(func() { r.income.CapitalGains = nil })
}

func (r *TaxationRecord) SetRetirementBenefits(b RetirementBenefits) error {
	return r.mutate(func() { r.income.Retirement = &b })
}

func (r *TaxationRecord) SetOtherIncome(o OtherIncome) error {
	return r.mutate(func() { r.income.Other = &o })
}

// ReplaceIncome swaps every income head at once.
func (r *TaxationRecord) ReplaceIncome(s IncomeSet) error {
	return r.mutate(func() { r.income = s.clone() })
}

// ChangeRegime switches regime and reports the change. Switching to the current
// regime is a no-op and returns nil.
func (r *TaxationRecord) ChangeRegime(to Regime) (*TaxRegimeChanged, error) {
	if !to.Valid() {
		return nil, invalid("regime", "%q must be 'old' or 'new'", to)
	}
	if r.status == StatusFinalized {
		return nil, fmt.Errorf("%s: %w", r.key, ErrFinalizedRecord)
	}
	if to == r.regime {
		return nil, nil
	}
	from := r.regime
	if err := r.mutate(func() { r.regime = to }); err != nil {
		return nil, err
	}
	return &TaxRegimeChanged{
		EmployeeID:     r.key.EmployeeID,
		OrganisationID: r.key.OrganisationID,
		TaxYear:        r.key.TaxYear,
		From:           from,
		To:             to,
		At:             r.updatedAt,
	}, nil
}

// RecordComputation stores a result computed for this record's year and regime.
func (r *TaxationRecord) RecordComputation(c TaxComputation) error {
	if r.status == StatusFinalized {
		return fmt.Errorf("%s: %w", r.key, ErrFinalizedRecord)
	}
	if c.TaxYear != r.key.TaxYear || c.Regime != r.regime {
		return invalid("computation", "computed for %s/%s, record is %s/%s", c.TaxYear, c.Regime, r.key.TaxYear, r.regime)
	}
	r.computation = &c
	r.status = StatusComputed
	r.updatedAt = now()
	return nil
}

// Finalize locks a computed record.
func (r *TaxationRecord) Finalize() error {
	switch r.status {
	case StatusFinalized:
		return fmt.Errorf("%s: %w", r.key, ErrFinalizedRecord)
	case StatusComputed:
	default:
		return fmt.Errorf("%s: finalize from %s: %w", r.key, r.status, ErrInvalidTransition)
	}
	ts := now()
	r.status = StatusFinalized
	r.finalizedAt = ts
	r.updatedAt = ts
	return nil
}
