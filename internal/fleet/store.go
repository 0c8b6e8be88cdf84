package fleet

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// Sentinel errors returned by store mutations. Missing-required-field
// errors signal caller bugs (the store does not validate beyond these);
// ErrNotFound signals an update against an unknown id.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrMissingID     = errors.New("entity id is required")
	ErrMissingTitle  = errors.New("case title is required")
	ErrDuplicateCase = errors.New("case id already exists")
	ErrMissingAmount = errors.New("ledger amount is required")
)

// Store owns the four entity collections and the settings object. All
// mutations are serialized behind one mutex; each is a single
// uninterrupted in-memory update. There is no rollback: persistence and
// telemetry failures never undo a mutation that already applied.
type Store struct {
	mu       sync.RWMutex
	trucks   map[string]Truck
	trailers map[string]Trailer
	cases    map[string]CaseItem
	ledger   []LedgerEntry
	settings Settings

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates an empty store with default settings.
func NewStore() *Store {
	return &Store{
		trucks:   make(map[string]Truck),
		trailers: make(map[string]Trailer),
		cases:    make(map[string]CaseItem),
		settings: defaultSettings(),
		now:      time.Now,
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// ============================================================================
// Trucks
// ============================================================================

// AddTruck inserts a truck, replacing any existing truck with the same id
// wholesale. Duplicate ids never persist.
func (s *Store) AddTruck(t Truck) error {
	if t.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks[t.ID] = t
	return nil
}

// UpdateTruck shallow-merges patch onto the existing truck.
func (s *Store) UpdateTruck(id string, patch TruckPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trucks[id]
	if !ok {
		return ErrNotFound
	}
	s.trucks[id] = t.apply(patch)
	return nil
}

// DeleteTruck removes a truck. Deleting an unknown id is not an error.
func (s *Store) DeleteTruck(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trucks, id)
}

// UpsertTruck merges the set fields of t onto the existing truck with the
// same id, or inserts t as new. Existing fields the incoming truck does
// not carry are preserved.
func (s *Store) UpsertTruck(t Truck) error {
	if t.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertTruckLocked(t)
	return nil
}

// UpsertTrucks applies UpsertTruck for every element in order. When two
// elements share an id, the later one wins field-by-field. Elements with
// an empty id are skipped.
func (s *Store) UpsertTrucks(list []Truck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range list {
		if t.ID == "" {
			continue
		}
		s.upsertTruckLocked(t)
	}
}

func (s *Store) upsertTruckLocked(t Truck) {
	if cur, ok := s.trucks[t.ID]; ok {
		s.trucks[t.ID] = cur.merge(t)
		return
	}
	s.trucks[t.ID] = t
}

// Truck returns the truck with the given id.
func (s *Store) Truck(id string) (Truck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trucks[id]
	return t, ok
}

// Trucks returns all trucks ordered by id ascending.
func (s *Store) Trucks() []Truck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================================
// Trailers
// ============================================================================

// AddTrailer inserts a trailer, replacing any existing trailer with the
// same id. An empty status defaults to "Ready".
func (s *Store) AddTrailer(t Trailer) error {
	if t.ID == "" {
		return ErrMissingID
	}
	if t.Status == "" {
		t.Status = "Ready"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailers[t.ID] = t
	return nil
}

// UpdateTrailer shallow-merges patch onto the existing trailer.
func (s *Store) UpdateTrailer(id string, patch TrailerPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trailers[id]
	if !ok {
		return ErrNotFound
	}
	s.trailers[id] = t.apply(patch)
	return nil
}

// DeleteTrailer removes a trailer. Idempotent.
func (s *Store) DeleteTrailer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trailers, id)
}

// UpsertTrailer merges the set fields of t onto the existing trailer, or
// inserts t as new.
func (s *Store) UpsertTrailer(t Trailer) error {
	if t.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertTrailerLocked(t)
	return nil
}

// UpsertTrailers applies UpsertTrailer in order; later elements win on a
// shared id.
func (s *Store) UpsertTrailers(list []Trailer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range list {
		if t.ID == "" {
			continue
		}
		s.upsertTrailerLocked(t)
	}
}

func (s *Store) upsertTrailerLocked(t Trailer) {
	if cur, ok := s.trailers[t.ID]; ok {
		s.trailers[t.ID] = cur.merge(t)
		return
	}
	s.trailers[t.ID] = t
}

// Trailer returns the trailer with the given id.
func (s *Store) Trailer(id string) (Trailer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trailers[id]
	return t, ok
}

// Trailers returns all trailers ordered by id ascending.
func (s *Store) Trailers() []Trailer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Trailer, 0, len(s.trailers))
	for _, t := range s.trailers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================================
// Settings
// ============================================================================

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings merge-patches the settings object. Settings are never
// replaced wholesale and survive ClearAll.
func (s *Store) SetSettings(patch SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.apply(patch)
	return s.settings
}
