package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
)

// MemoryStore keeps JSON documents in maps. Callers never share a pointer
// with the store: every read decodes a fresh value.
type MemoryStore struct {
	mu       sync.Mutex
	taxation map[string][]byte
	payroll  map[string][]byte
	locks    map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		taxation: make(map[string][]byte),
		payroll:  make(map[string][]byte),
		locks:    make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex serialising updates to one document.
func (s *MemoryStore) keyLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func taxationID(k domain.RecordKey) string { return "tax:" + k.String() }
func payrollID(k domain.PayrollKey) string { return "pay:" + k.String() }

func decodeTaxation(data []byte) (*domain.TaxationRecord, error) {
	var doc domain.TaxationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode taxation document: %w", err)
	}
	return domain.TaxationFromDocument(doc)
}

func decodeMonthlySalary(data []byte) (*domain.MonthlySalary, error) {
	var doc domain.MonthlySalaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode monthly salary document: %w", err)
	}
	return domain.MonthlySalaryFromDocument(doc)
}

func (s *MemoryStore) CreateTaxation(ctx context.Context, rec *domain.TaxationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec.ToDocument())
	if err != nil {
		return err
	}
	id := taxationID(rec.Key())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taxation[id]; ok {
		return fmt.Errorf("%s: %w", rec.Key(), domain.ErrDuplicateRecord)
	}
	s.taxation[id] = data
	return nil
}

func (s *MemoryStore) GetTaxation(ctx context.Context, key domain.RecordKey) (*domain.TaxationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	data, ok := s.taxation[taxationID(key)]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("taxation %s: %w", key, ErrNotFound)
	}
	return decodeTaxation(data)
}

func (s *MemoryStore) UpdateTaxation(ctx context.Context, key domain.RecordKey, fn func(*domain.TaxationRecord) error) (*domain.TaxationRecord, error) {
	l := s.keyLock(taxationID(key))
	l.Lock()
	defer l.Unlock()

	rec, err := s.GetTaxation(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec.ToDocument())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.taxation[taxationID(key)] = data
	s.mu.Unlock()
	return rec, nil
}

func (s *MemoryStore) ListTaxations(ctx context.Context, organisationID string, year domain.TaxYear) ([]*domain.TaxationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	docs := make([][]byte, 0, len(s.taxation))
	for _, data := range s.taxation {
		docs = append(docs, data)
	}
	s.mu.Unlock()

	var out []*domain.TaxationRecord
	for _, data := range docs {
		rec, err := decodeTaxation(data)
		if err != nil {
			return nil, err
		}
		k := rec.Key()
		if k.OrganisationID == organisationID && k.TaxYear == year {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().EmployeeID < out[j].Key().EmployeeID })
	return out, nil
}

func (s *MemoryStore) SaveMonthlySalary(ctx context.Context, ms *domain.MonthlySalary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ms.ToDocument())
	if err != nil {
		return err
	}
	id := payrollID(ms.Key())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payroll[id]; ok {
		return fmt.Errorf("%s: %w", ms.Key(), domain.ErrDuplicateRecord)
	}
	s.payroll[id] = data
	return nil
}

func (s *MemoryStore) GetMonthlySalary(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	data, ok := s.payroll[payrollID(key)]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("monthly salary %s: %w", key, ErrNotFound)
	}
	return decodeMonthlySalary(data)
}

func (s *MemoryStore) UpdateMonthlySalary(ctx context.Context, key domain.PayrollKey, fn func(*domain.MonthlySalary) error) (*domain.MonthlySalary, error) {
	l := s.keyLock(payrollID(key))
	l.Lock()
	defer l.Unlock()

	ms, err := s.GetMonthlySalary(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(ms); err != nil {
		return nil, err
	}
	data, err := json.Marshal(ms.ToDocument())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.payroll[payrollID(key)] = data
	s.mu.Unlock()
	return ms, nil
}

func (s *MemoryStore) ReplaceMonthlySalary(ctx context.Context, ms *domain.MonthlySalary, guard func(*domain.MonthlySalary) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ms.ToDocument())
	if err != nil {
		return err
	}
	id := payrollID(ms.Key())
	l := s.keyLock(id)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	existing, ok := s.payroll[id]
	s.mu.Unlock()
	if ok {
		stored, err := decodeMonthlySalary(existing)
		if err != nil {
			return err
		}
		if err := guard(stored); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.payroll[id] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListMonthlySalaries(ctx context.Context, organisationID string, year int, month time.Month) ([]*domain.MonthlySalary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	docs := make([][]byte, 0, len(s.payroll))
	for _, data := range s.payroll {
		docs = append(docs, data)
	}
	s.mu.Unlock()

	var out []*domain.MonthlySalary
	for _, data := range docs {
		ms, err := decodeMonthlySalary(data)
		if err != nil {
			return nil, err
		}
		k := ms.Key()
		if k.OrganisationID == organisationID && k.Year == year && k.Month == month {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().EmployeeID < out[j].Key().EmployeeID })
	return out, nil
}

func (s *MemoryStore) DeleteMonthlySalary(ctx context.Context, key domain.PayrollKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := payrollID(key)
	if _, ok := s.payroll[id]; !ok {
		return fmt.Errorf("monthly salary %s: %w", key, ErrNotFound)
	}
	delete(s.payroll, id)
	return nil
}
