// Package persist is the durable mirror of the in-memory store.
//
// The mirror is never the source of truth at runtime: the store hydrates
// from it at startup and writes to it fire-and-forget after mutations. A
// mirror failure is reported to the caller but never rolls back the
// in-memory state.
package persist

import (
	"context"

	"github.com/akoval/fleetops/internal/fleet"
)

// Mirror is the per-type persistence contract: list everything (ordered
// by id ascending), upsert one or many full records, delete by id. Every
// operation is fallible and returns a descriptive error.
type Mirror interface {
	ListTrucks(ctx context.Context) ([]fleet.Truck, error)
	UpsertTrucks(ctx context.Context, trucks []fleet.Truck) error
	UpsertTruck(ctx context.Context, t fleet.Truck) error
	DeleteTruck(ctx context.Context, id string) error

	ListTrailers(ctx context.Context) ([]fleet.Trailer, error)
	UpsertTrailers(ctx context.Context, trailers []fleet.Trailer) error
	UpsertTrailer(ctx context.Context, t fleet.Trailer) error
	DeleteTrailer(ctx context.Context, id string) error

	ListCases(ctx context.Context) ([]fleet.CaseItem, error)
	UpsertCases(ctx context.Context, cases []fleet.CaseItem) error
	UpsertCase(ctx context.Context, c fleet.CaseItem) error
	DeleteCase(ctx context.Context, id string) error

	ListLedger(ctx context.Context) ([]fleet.LedgerEntry, error)
	UpsertLedger(ctx context.Context, entries []fleet.LedgerEntry) error
	UpsertLedgerEntry(ctx context.Context, e fleet.LedgerEntry) error
	DeleteLedgerEntry(ctx context.Context, id string) error

	// Reset empties all four collections. Used for data wipes and for
	// rebuilding the mirror after a snapshot import.
	Reset(ctx context.Context) error
}

// WriteAll rebuilds the mirror from the store's current state: a reset
// followed by a full upsert of every collection.
func WriteAll(ctx context.Context, m Mirror, store *fleet.Store) error {
	if err := m.Reset(ctx); err != nil {
		return err
	}
	if err := m.UpsertTrucks(ctx, store.Trucks()); err != nil {
		return err
	}
	if err := m.UpsertTrailers(ctx, store.Trailers()); err != nil {
		return err
	}
	if err := m.UpsertCases(ctx, store.Cases()); err != nil {
		return err
	}
	return m.UpsertLedger(ctx, store.Ledger())
}

// Hydrate loads every collection from the mirror into the store. Used
// once at startup; the store stays authoritative afterwards.
func Hydrate(ctx context.Context, m Mirror, store *fleet.Store) error {
	trucks, err := m.ListTrucks(ctx)
	if err != nil {
		return err
	}
	trailers, err := m.ListTrailers(ctx)
	if err != nil {
		return err
	}
	cases, err := m.ListCases(ctx)
	if err != nil {
		return err
	}
	ledger, err := m.ListLedger(ctx)
	if err != nil {
		return err
	}
	store.ImportSnapshot(fleet.Snapshot{
		Trucks:   trucks,
		Trailers: trailers,
		Cases:    cases,
		Ledger:   ledger,
	})
	return nil
}
