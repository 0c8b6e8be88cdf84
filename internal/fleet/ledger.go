package fleet

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddLedger inserts a ledger entry, filling in whatever the caller left
// out:
//
//   - id: generated as "L-<uuid>" when absent
//   - date: explicit date wins, else derived from the YYYY-MM-DD ref
//     field, else the current time
//   - type: derived from the legacy kind field (lower-cased) when absent
//
// Amount is required; a zero amount is treated as missing.
func (s *Store) AddLedger(e LedgerEntry) (LedgerEntry, error) {
	if e.Amount.IsZero() {
		return LedgerEntry{}, ErrMissingAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = "L-" + uuid.NewString()
	}
	e.Date = s.resolveDate(e.Date, e.Ref)
	if e.Type == "" && e.Kind != "" {
		e.Type = strings.ToLower(e.Kind)
	}

	s.ledger = append(s.ledger, e)
	return e, nil
}

// resolveDate normalizes the entry date. Parseable inputs come back as
// RFC 3339 UTC; an unparseable explicit date is kept as given rather than
// dropped.
func (s *Store) resolveDate(date, ref string) string {
	if date != "" {
		if t, err := parseDate(date); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		return date
	}
	if ref != "" {
		if t, err := time.Parse("2006-01-02", ref); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return s.timestamp()
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// Ledger returns all ledger entries in insertion order.
func (s *Store) Ledger() []LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LedgerEntry, len(s.ledger))
	copy(out, s.ledger)
	return out
}
