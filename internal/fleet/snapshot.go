package fleet

// Snapshot is a serialized copy of the store's collections, used for file
// import/export. In a snapshot being imported, a nil collection means
// "leave the current one untouched" while a present collection, even an
// empty one, replaces the current one wholesale. Settings are
// merge-patched, never replaced.
type Snapshot struct {
	Trucks   []Truck        `json:"trucks"`
	Trailers []Trailer      `json:"trailers"`
	Cases    []CaseItem     `json:"cases"`
	Ledger   []LedgerEntry  `json:"ledger"`
	Settings *SettingsPatch `json:"settings,omitempty"`
}

// ImportSnapshot applies snap to the store. Collections present in the
// snapshot replace the current ones wholesale (no merge); absent
// collections are left untouched. Settings are merge-patched.
func (s *Store) ImportSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Trucks != nil {
		s.trucks = make(map[string]Truck, len(snap.Trucks))
		for _, t := range snap.Trucks {
			if t.ID == "" {
				continue
			}
			s.trucks[t.ID] = t
		}
	}
	if snap.Trailers != nil {
		s.trailers = make(map[string]Trailer, len(snap.Trailers))
		for _, t := range snap.Trailers {
			if t.ID == "" {
				continue
			}
			s.trailers[t.ID] = t
		}
	}
	if snap.Cases != nil {
		s.cases = make(map[string]CaseItem, len(snap.Cases))
		for _, c := range snap.Cases {
			if c.ID == "" {
				continue
			}
			s.cases[c.ID] = copyCase(c)
		}
	}
	if snap.Ledger != nil {
		s.ledger = make([]LedgerEntry, len(snap.Ledger))
		copy(s.ledger, snap.Ledger)
	}
	if snap.Settings != nil {
		s.settings = s.settings.apply(*snap.Settings)
	}
}

// ExportSnapshot returns a full copy of the four collections, trucks,
// trailers, and cases ordered by id ascending, ledger in insertion order.
// Settings are not part of the export: import merges rather than replaces
// them, so they are excluded from round-trip equality.
func (s *Store) ExportSnapshot() Snapshot {
	return Snapshot{
		Trucks:   s.Trucks(),
		Trailers: s.Trailers(),
		Cases:    s.Cases(),
		Ledger:   s.Ledger(),
	}
}

// ClearAll empties trucks, trailers, cases, and ledger. Settings are
// deliberately kept: a data wipe does not reset configuration.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks = make(map[string]Truck)
	s.trailers = make(map[string]Trailer)
	s.cases = make(map[string]CaseItem)
	s.ledger = nil
}
