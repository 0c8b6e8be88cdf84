package fleet

import (
	"fmt"
	"sort"
)

// cases.go implements the case collection and the lifecycle controller.
//
// The lifecycle is the ordered progression New → Diagnosing → Repair →
// QA → Closed. Every stage transition and every note lands as exactly one
// timeline entry, appended at the end. The timeline is the audit trail:
// entries are never mutated, reordered, or removed by any operation.

// AddCase opens a new case. ID and title are required; severity defaults
// to Low, stage to New, and openedAt to the current time. The timeline is
// seeded with a single "Case opened" event. A duplicate id is rejected;
// cases are never silently merged.
func (s *Store) AddCase(c CaseItem) error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Title == "" {
		return ErrMissingTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; ok {
		return ErrDuplicateCase
	}
	if c.Severity == "" {
		c.Severity = SeverityLow
	}
	if c.Stage == "" {
		c.Stage = StageNew
	}
	now := s.timestamp()
	c.OpenedAt = now
	c.Timeline = []TimelineEntry{{Text: "Case opened", At: now}}
	s.cases[c.ID] = c
	return nil
}

// UpdateCase shallow-merges patch onto the case. Unlike stage transitions
// this generates no timeline entry.
func (s *Store) UpdateCase(id string, patch CasePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return ErrNotFound
	}
	s.cases[id] = c.apply(patch)
	return nil
}

// DeleteCase removes a case. Idempotent.
func (s *Store) DeleteCase(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, id)
}

// AdvanceCase moves the case exactly one stage forward. At the terminal
// stage (Closed) the call is a no-op: closed cases are immutable
// endpoints, and no redundant timeline entry is appended when the stage
// does not change.
func (s *Store) AdvanceCase(id string) (CaseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return CaseItem{}, ErrNotFound
	}
	next := c.Stage.next()
	if next == c.Stage {
		return copyCase(c), nil
	}
	c.Stage = next
	c.Timeline = appendEntry(c.Timeline, TimelineEntry{
		Text: fmt.Sprintf("Stage → %s", next),
		At:   s.timestamp(),
	})
	s.cases[id] = c
	return copyCase(c), nil
}

// SetCaseStage sets the stage directly, bypassing the ordered
// progression. This is the escape hatch for corrections; it always logs
// the transition to the timeline.
func (s *Store) SetCaseStage(id string, stage Stage) (CaseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return CaseItem{}, ErrNotFound
	}
	c.Stage = stage
	c.Timeline = appendEntry(c.Timeline, TimelineEntry{
		Text: fmt.Sprintf("Stage → %s", stage),
		At:   s.timestamp(),
	})
	s.cases[id] = c
	return copyCase(c), nil
}

// AddCaseNote appends a "Note: <text>" timeline entry without changing
// the stage. Text is taken as given; callers pre-trim.
func (s *Store) AddCaseNote(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return ErrNotFound
	}
	c.Timeline = appendEntry(c.Timeline, TimelineEntry{
		Text: "Note: " + text,
		At:   s.timestamp(),
	})
	s.cases[id] = c
	return nil
}

// AttachInvoice replaces the case's single invoice slot. No timeline
// entry is generated.
func (s *Store) AttachInvoice(id string, invoice InvoiceFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[id]
	if !ok {
		return ErrNotFound
	}
	c.Invoice = &invoice
	s.cases[id] = c
	return nil
}

// Case returns the case with the given id.
func (s *Store) Case(id string) (CaseItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return CaseItem{}, false
	}
	return copyCase(c), true
}

// Cases returns all cases ordered by id ascending.
func (s *Store) Cases() []CaseItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CaseItem, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, copyCase(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// appendEntry grows the timeline without sharing the old backing array,
// so snapshots handed out earlier never observe later appends.
func appendEntry(tl []TimelineEntry, e TimelineEntry) []TimelineEntry {
	out := make([]TimelineEntry, len(tl), len(tl)+1)
	copy(out, tl)
	return append(out, e)
}

// copyCase returns a copy whose timeline does not alias store memory.
func copyCase(c CaseItem) CaseItem {
	tl := make([]TimelineEntry, len(c.Timeline))
	copy(tl, c.Timeline)
	c.Timeline = tl
	return c
}
