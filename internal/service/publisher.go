package service

import (
	"context"
	"sync"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/logger"
	"github.com/rs/zerolog"
)

// Publisher receives domain events after the state change they describe has
// been stored.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// LogPublisher writes events as structured log lines. Employee identifiers
// are hashed.
type LogPublisher struct {
	Log zerolog.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{Log: logger.Log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, ev domain.Event) error {
	e := p.Log.Info().
		Str("event", ev.EventName()).
		Time("occurred_at", ev.OccurredAt())

	switch v := ev.(type) {
	case domain.TaxationCalculated:
		e = e.Str("employee", logger.HashEmployeeID(v.EmployeeID)).
			Str("organisation_id", v.OrganisationID).
			Str("tax_year", v.TaxYear.String()).
			Str("regime", string(v.Regime)).
			Str("taxable_income", v.TaxableIncome.String()).
			Str("total_tax", v.TotalTax.String())
	case domain.TaxRegimeChanged:
		e = e.Str("employee", logger.HashEmployeeID(v.EmployeeID)).
			Str("organisation_id", v.OrganisationID).
			Str("tax_year", v.TaxYear.String()).
			Str("from", string(v.From)).
			Str("to", string(v.To))
	case domain.PayoutCalculated:
		e = e.Str("employee", logger.HashEmployeeID(v.EmployeeID)).
			Str("organisation_id", v.OrganisationID).
			Int("year", v.Year).
			Int("month", int(v.Month)).
			Str("gross_pay", v.GrossPay.String()).
			Str("tds", v.TDS.String()).
			Str("net_pay", v.NetPay.String())
	}
	e.Msg("domain event")
	return nil
}

// RecordingPublisher keeps every event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (p *RecordingPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}
