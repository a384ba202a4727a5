package domain

import (
	"time"

	"github.com/incometax/taxcalc/pkg/money"
)

// Event is a domain occurrence published after a successful state change.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

type TaxationCalculated struct {
	EmployeeID     string      `json:"employee_id"`
	OrganisationID string      `json:"organisation_id"`
	TaxYear        TaxYear     `json:"tax_year"`
	Regime         Regime      `json:"regime"`
	TaxableIncome  money.Money `json:"taxable_income"`
	TotalTax       money.Money `json:"total_tax"`
	At             time.Time   `json:"at"`
}

func (e TaxationCalculated) EventName() string     { return "taxation.calculated" }
func (e TaxationCalculated) OccurredAt() time.Time { return e.At }

type TaxRegimeChanged struct {
	EmployeeID     string    `json:"employee_id"`
	OrganisationID string    `json:"organisation_id"`
	TaxYear        TaxYear   `json:"tax_year"`
	From           Regime    `json:"from"`
	To             Regime    `json:"to"`
	At             time.Time `json:"at"`
}

func (e TaxRegimeChanged) EventName() string     { return "taxation.regime_changed" }
func (e TaxRegimeChanged) OccurredAt() time.Time { return e.At }

type PayoutCalculated struct {
	EmployeeID     string      `json:"employee_id"`
	OrganisationID string      `json:"organisation_id"`
	TaxYear        TaxYear     `json:"tax_year"`
	Year           int         `json:"year"`
	Month          time.Month  `json:"month"`
	GrossPay       money.Money `json:"gross_pay"`
	TDS            money.Money `json:"tds"`
	NetPay         money.Money `json:"net_pay"`
	At             time.Time   `json:"at"`
}

func (e PayoutCalculated) EventName() string     { return "payroll.payout_calculated" }
func (e PayoutCalculated) OccurredAt() time.Time { return e.At }
