package persist

import (
	"context"
	"sort"
	"sync"

	"github.com/akoval/fleetops/internal/fleet"
)

// Memory is an in-memory Mirror. It backs tests and the database-less
// deployment mode, where the "mirror" lives only as long as the process.
type Memory struct {
	mu       sync.Mutex
	trucks   map[string]fleet.Truck
	trailers map[string]fleet.Trailer
	cases    map[string]fleet.CaseItem
	ledger   map[string]fleet.LedgerEntry
}

// NewMemory creates an empty in-memory mirror.
func NewMemory() *Memory {
	return &Memory{
		trucks:   make(map[string]fleet.Truck),
		trailers: make(map[string]fleet.Trailer),
		cases:    make(map[string]fleet.CaseItem),
		ledger:   make(map[string]fleet.LedgerEntry),
	}
}

var _ Mirror = (*Memory)(nil)

func sortedValues[E any](m map[string]E) []E {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (m *Memory) ListTrucks(ctx context.Context) ([]fleet.Truck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.trucks), nil
}

func (m *Memory) UpsertTrucks(ctx context.Context, trucks []fleet.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range trucks {
		m.trucks[t.ID] = t
	}
	return nil
}

func (m *Memory) UpsertTruck(ctx context.Context, t fleet.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trucks[t.ID] = t
	return nil
}

func (m *Memory) DeleteTruck(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trucks, id)
	return nil
}

func (m *Memory) ListTrailers(ctx context.Context) ([]fleet.Trailer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.trailers), nil
}

func (m *Memory) UpsertTrailers(ctx context.Context, trailers []fleet.Trailer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range trailers {
		m.trailers[t.ID] = t
	}
	return nil
}

func (m *Memory) UpsertTrailer(ctx context.Context, t fleet.Trailer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trailers[t.ID] = t
	return nil
}

func (m *Memory) DeleteTrailer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trailers, id)
	return nil
}

func (m *Memory) ListCases(ctx context.Context) ([]fleet.CaseItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.cases), nil
}

func (m *Memory) UpsertCases(ctx context.Context, cases []fleet.CaseItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cases {
		m.cases[c.ID] = c
	}
	return nil
}

func (m *Memory) UpsertCase(ctx context.Context, c fleet.CaseItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.ID] = c
	return nil
}

func (m *Memory) DeleteCase(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cases, id)
	return nil
}

func (m *Memory) ListLedger(ctx context.Context) ([]fleet.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.ledger), nil
}

func (m *Memory) UpsertLedger(ctx context.Context, entries []fleet.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.ledger[e.ID] = e
	}
	return nil
}

func (m *Memory) UpsertLedgerEntry(ctx context.Context, e fleet.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger[e.ID] = e
	return nil
}

func (m *Memory) DeleteLedgerEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledger, id)
	return nil
}

func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trucks = make(map[string]fleet.Truck)
	m.trailers = make(map[string]fleet.Trailer)
	m.cases = make(map[string]fleet.CaseItem)
	m.ledger = make(map[string]fleet.LedgerEntry)
	return nil
}
