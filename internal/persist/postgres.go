package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akoval/fleetops/internal/fleet"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres mirrors the store into four tables keyed by entity id.
// Structured fields (location, timeline, invoice) are stored as jsonb;
// ledger amounts are stored as text to round-trip decimals exactly.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres mirror on the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Mirror = (*Postgres)(nil)

// EnsureSchema creates the mirror tables when they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trucks (
			id text PRIMARY KEY,
			vin text NOT NULL DEFAULT '',
			make text NOT NULL DEFAULT '',
			plate text NOT NULL DEFAULT '',
			name text NOT NULL DEFAULT '',
			odo double precision,
			status text NOT NULL DEFAULT '',
			last_seen text NOT NULL DEFAULT '',
			location jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS trailers (
			id text PRIMARY KEY,
			owner text NOT NULL DEFAULT '',
			ext_code text NOT NULL DEFAULT '',
			type text NOT NULL DEFAULT '',
			status text NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS cases (
			id text PRIMARY KEY,
			title text NOT NULL,
			asset_id text NOT NULL DEFAULT '',
			type text NOT NULL DEFAULT '',
			severity text NOT NULL DEFAULT '',
			stage text NOT NULL DEFAULT '',
			opened_at text NOT NULL DEFAULT '',
			until_at text NOT NULL DEFAULT '',
			until_id text NOT NULL DEFAULT '',
			timeline jsonb NOT NULL DEFAULT '[]',
			invoice jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS ledger (
			id text PRIMARY KEY,
			date text NOT NULL DEFAULT '',
			amount text NOT NULL,
			currency text NOT NULL DEFAULT '',
			type text NOT NULL DEFAULT '',
			kind text NOT NULL DEFAULT '',
			category text NOT NULL DEFAULT '',
			note text NOT NULL DEFAULT '',
			ref text NOT NULL DEFAULT '',
			case_id text NOT NULL DEFAULT '',
			asset_id text NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ============================================================================
// Trucks
// ============================================================================

const truckUpsertSQL = `
	INSERT INTO trucks (id, vin, make, plate, name, odo, status, last_seen, location)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		vin = EXCLUDED.vin, make = EXCLUDED.make, plate = EXCLUDED.plate,
		name = EXCLUDED.name, odo = EXCLUDED.odo, status = EXCLUDED.status,
		last_seen = EXCLUDED.last_seen, location = EXCLUDED.location`

func truckArgs(t fleet.Truck) ([]any, error) {
	loc, err := marshalOrNil(t.Location)
	if err != nil {
		return nil, fmt.Errorf("encode truck %s location: %w", t.ID, err)
	}
	return []any{t.ID, t.VIN, t.Make, t.Plate, t.Name, t.Odo, t.Status, t.LastSeen, loc}, nil
}

// ListTrucks returns all mirrored trucks ordered by id ascending.
func (p *Postgres) ListTrucks(ctx context.Context) ([]fleet.Truck, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, vin, make, plate, name, odo, status, last_seen, location
		FROM trucks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	defer rows.Close()

	var out []fleet.Truck
	for rows.Next() {
		var t fleet.Truck
		var loc []byte
		if err := rows.Scan(&t.ID, &t.VIN, &t.Make, &t.Plate, &t.Name, &t.Odo, &t.Status, &t.LastSeen, &loc); err != nil {
			return nil, fmt.Errorf("scan truck: %w", err)
		}
		if len(loc) > 0 {
			t.Location = &fleet.Location{}
			if err := json.Unmarshal(loc, t.Location); err != nil {
				return nil, fmt.Errorf("decode truck %s location: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	return out, nil
}

// UpsertTrucks writes the given trucks in one batch.
func (p *Postgres) UpsertTrucks(ctx context.Context, trucks []fleet.Truck) error {
	batch := &pgx.Batch{}
	for _, t := range trucks {
		args, err := truckArgs(t)
		if err != nil {
			return err
		}
		batch.Queue(truckUpsertSQL, args...)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d trucks: %w", len(trucks), err)
	}
	return nil
}

// UpsertTruck writes a single truck.
func (p *Postgres) UpsertTruck(ctx context.Context, t fleet.Truck) error {
	args, err := truckArgs(t)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, truckUpsertSQL, args...); err != nil {
		return fmt.Errorf("upsert truck %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTruck removes a mirrored truck.
func (p *Postgres) DeleteTruck(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM trucks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete truck %s: %w", id, err)
	}
	return nil
}

// ============================================================================
// Trailers
// ============================================================================

const trailerUpsertSQL = `
	INSERT INTO trailers (id, owner, ext_code, type, status)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		owner = EXCLUDED.owner, ext_code = EXCLUDED.ext_code,
		type = EXCLUDED.type, status = EXCLUDED.status`

// ListTrailers returns all mirrored trailers ordered by id ascending.
func (p *Postgres) ListTrailers(ctx context.Context) ([]fleet.Trailer, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, owner, ext_code, type, status FROM trailers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list trailers: %w", err)
	}
	defer rows.Close()

	var out []fleet.Trailer
	for rows.Next() {
		var t fleet.Trailer
		if err := rows.Scan(&t.ID, &t.Owner, &t.ExtCode, &t.Type, &t.Status); err != nil {
			return nil, fmt.Errorf("scan trailer: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trailers: %w", err)
	}
	return out, nil
}

// UpsertTrailers writes the given trailers in one batch.
func (p *Postgres) UpsertTrailers(ctx context.Context, trailers []fleet.Trailer) error {
	batch := &pgx.Batch{}
	for _, t := range trailers {
		batch.Queue(trailerUpsertSQL, t.ID, t.Owner, t.ExtCode, t.Type, t.Status)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d trailers: %w", len(trailers), err)
	}
	return nil
}

// UpsertTrailer writes a single trailer.
func (p *Postgres) UpsertTrailer(ctx context.Context, t fleet.Trailer) error {
	if _, err := p.pool.Exec(ctx, trailerUpsertSQL, t.ID, t.Owner, t.ExtCode, t.Type, t.Status); err != nil {
		return fmt.Errorf("upsert trailer %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTrailer removes a mirrored trailer.
func (p *Postgres) DeleteTrailer(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM trailers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete trailer %s: %w", id, err)
	}
	return nil
}

// ============================================================================
// Cases
// ============================================================================

const caseUpsertSQL = `
	INSERT INTO cases (id, title, asset_id, type, severity, stage, opened_at, until_at, until_id, timeline, invoice)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title, asset_id = EXCLUDED.asset_id, type = EXCLUDED.type,
		severity = EXCLUDED.severity, stage = EXCLUDED.stage, opened_at = EXCLUDED.opened_at,
		until_at = EXCLUDED.until_at, until_id = EXCLUDED.until_id,
		timeline = EXCLUDED.timeline, invoice = EXCLUDED.invoice`

func caseArgs(c fleet.CaseItem) ([]any, error) {
	tl, err := json.Marshal(c.Timeline)
	if err != nil {
		return nil, fmt.Errorf("encode case %s timeline: %w", c.ID, err)
	}
	inv, err := marshalOrNil(c.Invoice)
	if err != nil {
		return nil, fmt.Errorf("encode case %s invoice: %w", c.ID, err)
	}
	return []any{c.ID, c.Title, c.AssetID, c.Type, string(c.Severity), string(c.Stage),
		c.OpenedAt, c.Until, c.UntilID, tl, inv}, nil
}

// ListCases returns all mirrored cases ordered by id ascending.
func (p *Postgres) ListCases(ctx context.Context) ([]fleet.CaseItem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, asset_id, type, severity, stage, opened_at, until_at, until_id, timeline, invoice
		FROM cases ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []fleet.CaseItem
	for rows.Next() {
		var c fleet.CaseItem
		var severity, stage string
		var tl, inv []byte
		if err := rows.Scan(&c.ID, &c.Title, &c.AssetID, &c.Type, &severity, &stage,
			&c.OpenedAt, &c.Until, &c.UntilID, &tl, &inv); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		c.Severity = fleet.Severity(severity)
		c.Stage = fleet.Stage(stage)
		if err := json.Unmarshal(tl, &c.Timeline); err != nil {
			return nil, fmt.Errorf("decode case %s timeline: %w", c.ID, err)
		}
		if len(inv) > 0 {
			c.Invoice = &fleet.InvoiceFile{}
			if err := json.Unmarshal(inv, c.Invoice); err != nil {
				return nil, fmt.Errorf("decode case %s invoice: %w", c.ID, err)
			}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return out, nil
}

// UpsertCases writes the given cases in one batch.
func (p *Postgres) UpsertCases(ctx context.Context, cases []fleet.CaseItem) error {
	batch := &pgx.Batch{}
	for _, c := range cases {
		args, err := caseArgs(c)
		if err != nil {
			return err
		}
		batch.Queue(caseUpsertSQL, args...)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d cases: %w", len(cases), err)
	}
	return nil
}

// UpsertCase writes a single case.
func (p *Postgres) UpsertCase(ctx context.Context, c fleet.CaseItem) error {
	args, err := caseArgs(c)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, caseUpsertSQL, args...); err != nil {
		return fmt.Errorf("upsert case %s: %w", c.ID, err)
	}
	return nil
}

// DeleteCase removes a mirrored case.
func (p *Postgres) DeleteCase(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete case %s: %w", id, err)
	}
	return nil
}

// ============================================================================
// Ledger
// ============================================================================

const ledgerUpsertSQL = `
	INSERT INTO ledger (id, date, amount, currency, type, kind, category, note, ref, case_id, asset_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		date = EXCLUDED.date, amount = EXCLUDED.amount, currency = EXCLUDED.currency,
		type = EXCLUDED.type, kind = EXCLUDED.kind, category = EXCLUDED.category,
		note = EXCLUDED.note, ref = EXCLUDED.ref,
		case_id = EXCLUDED.case_id, asset_id = EXCLUDED.asset_id`

func ledgerArgs(e fleet.LedgerEntry) []any {
	return []any{e.ID, e.Date, e.Amount.String(), e.Currency, e.Type, e.Kind,
		e.Category, e.Note, e.Ref, e.CaseID, e.AssetID}
}

// ListLedger returns all mirrored ledger entries ordered by id ascending.
func (p *Postgres) ListLedger(ctx context.Context) ([]fleet.LedgerEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, date, amount, currency, type, kind, category, note, ref, case_id, asset_id
		FROM ledger ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []fleet.LedgerEntry
	for rows.Next() {
		var e fleet.LedgerEntry
		var amount string
		if err := rows.Scan(&e.ID, &e.Date, &amount, &e.Currency, &e.Type, &e.Kind,
			&e.Category, &e.Note, &e.Ref, &e.CaseID, &e.AssetID); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("decode ledger %s amount %q: %w", e.ID, amount, err)
		}
		e.Amount = amt
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return out, nil
}

// UpsertLedger writes the given entries in one batch.
func (p *Postgres) UpsertLedger(ctx context.Context, entries []fleet.LedgerEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(ledgerUpsertSQL, ledgerArgs(e)...)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d ledger entries: %w", len(entries), err)
	}
	return nil
}

// UpsertLedgerEntry writes a single ledger entry.
func (p *Postgres) UpsertLedgerEntry(ctx context.Context, e fleet.LedgerEntry) error {
	if _, err := p.pool.Exec(ctx, ledgerUpsertSQL, ledgerArgs(e)...); err != nil {
		return fmt.Errorf("upsert ledger entry %s: %w", e.ID, err)
	}
	return nil
}

// DeleteLedgerEntry removes a mirrored ledger entry.
func (p *Postgres) DeleteLedgerEntry(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM ledger WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete ledger entry %s: %w", id, err)
	}
	return nil
}

// Reset empties all four mirror tables.
func (p *Postgres) Reset(ctx context.Context) error {
	for _, table := range []string{"trucks", "trailers", "cases", "ledger"} {
		if _, err := p.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// marshalOrNil encodes v as JSON, passing nil pointers through as SQL
// NULL.
func marshalOrNil[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
