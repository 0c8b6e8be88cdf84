package fleet

import (
	"testing"
	"time"
)

func newTestStore() *Store {
	s := NewStore()
	s.now = func() time.Time {
		return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestAddTruck_ReplacesExisting(t *testing.T) {
	s := newTestStore()

	if err := s.AddTruck(Truck{ID: "T1", VIN: "VIN-1", Make: "Volvo"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}
	if err := s.AddTruck(Truck{ID: "T1", Name: "Unit 1"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}

	got, ok := s.Truck("T1")
	if !ok {
		t.Fatal("truck T1 not found")
	}
	// Add is wholesale replacement, not a merge
	if got.VIN != "" {
		t.Errorf("VIN = %q, want empty after replacement", got.VIN)
	}
	if got.Name != "Unit 1" {
		t.Errorf("Name = %q, want %q", got.Name, "Unit 1")
	}
	if len(s.Trucks()) != 1 {
		t.Errorf("truck count = %d, want 1", len(s.Trucks()))
	}
}

func TestAddTruck_MissingID(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{Name: "no id"}); err != ErrMissingID {
		t.Fatalf("AddTruck error = %v, want ErrMissingID", err)
	}
}

func TestUpsertTruck_MergesFieldUnion(t *testing.T) {
	s := newTestStore()

	if err := s.UpsertTruck(Truck{ID: "T1", VIN: "VIN-1", Make: "Volvo"}); err != nil {
		t.Fatalf("UpsertTruck: %v", err)
	}
	if err := s.UpsertTruck(Truck{ID: "T1", Make: "Kenworth", Plate: "ABC123"}); err != nil {
		t.Fatalf("UpsertTruck: %v", err)
	}

	got, _ := s.Truck("T1")
	if got.VIN != "VIN-1" {
		t.Errorf("VIN = %q, want preserved %q", got.VIN, "VIN-1")
	}
	if got.Make != "Kenworth" {
		t.Errorf("Make = %q, want second write %q", got.Make, "Kenworth")
	}
	if got.Plate != "ABC123" {
		t.Errorf("Plate = %q, want %q", got.Plate, "ABC123")
	}
}

func TestUpsertTruck_AbsentFieldsPreserved(t *testing.T) {
	s := newTestStore()

	loc := &Location{Lat: 40.7, Lon: -74.0}
	if err := s.UpsertTruck(Truck{ID: "T1", Odo: floatPtr(5000), Location: loc}); err != nil {
		t.Fatalf("UpsertTruck: %v", err)
	}
	// Second sync carries no stats for this unit
	if err := s.UpsertTruck(Truck{ID: "T1", Name: "Unit 1"}); err != nil {
		t.Fatalf("UpsertTruck: %v", err)
	}

	got, _ := s.Truck("T1")
	if got.Odo == nil || *got.Odo != 5000 {
		t.Errorf("Odo = %v, want preserved 5000", got.Odo)
	}
	if got.Location == nil || got.Location.Lat != 40.7 {
		t.Errorf("Location = %v, want preserved %v", got.Location, loc)
	}
}

func TestUpsertTrucks_LaterElementWins(t *testing.T) {
	s := newTestStore()

	s.UpsertTrucks([]Truck{
		{ID: "T1", Make: "Volvo", VIN: "VIN-1"},
		{ID: "T1", Make: "Kenworth"},
	})

	got, _ := s.Truck("T1")
	if got.Make != "Kenworth" {
		t.Errorf("Make = %q, want later element's %q", got.Make, "Kenworth")
	}
	if got.VIN != "VIN-1" {
		t.Errorf("VIN = %q, want merged %q", got.VIN, "VIN-1")
	}
	if len(s.Trucks()) != 1 {
		t.Errorf("truck count = %d, want 1", len(s.Trucks()))
	}
}

func TestUpdateTruck_NotFound(t *testing.T) {
	s := newTestStore()
	if err := s.UpdateTruck("missing", TruckPatch{Name: strPtr("x")}); err != ErrNotFound {
		t.Fatalf("UpdateTruck error = %v, want ErrNotFound", err)
	}
}

func TestUpdateTruck_PatchAppliesSetFieldsOnly(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{ID: "T1", Make: "Volvo", Status: "Idle"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}

	if err := s.UpdateTruck("T1", TruckPatch{Status: strPtr("Engine On")}); err != nil {
		t.Fatalf("UpdateTruck: %v", err)
	}

	got, _ := s.Truck("T1")
	if got.Status != "Engine On" {
		t.Errorf("Status = %q, want %q", got.Status, "Engine On")
	}
	if got.Make != "Volvo" {
		t.Errorf("Make = %q, want untouched %q", got.Make, "Volvo")
	}
}

func TestDeleteTruck_Idempotent(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{ID: "T1"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}

	s.DeleteTruck("T1")
	s.DeleteTruck("T1") // second delete must not panic or error
	s.DeleteTruck("never-existed")

	if len(s.Trucks()) != 0 {
		t.Errorf("truck count = %d, want 0", len(s.Trucks()))
	}
}

func TestTrucks_OrderedByID(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"T3", "T1", "T2"} {
		if err := s.AddTruck(Truck{ID: id}); err != nil {
			t.Fatalf("AddTruck: %v", err)
		}
	}

	got := s.Trucks()
	want := []string{"T1", "T2", "T3"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("Trucks()[%d].ID = %q, want %q", i, got[i].ID, w)
		}
	}
}

func TestAddTrailer_DefaultsStatusReady(t *testing.T) {
	s := newTestStore()
	if err := s.AddTrailer(Trailer{ID: "TR1", Type: "Dry Van"}); err != nil {
		t.Fatalf("AddTrailer: %v", err)
	}

	got, _ := s.Trailer("TR1")
	if got.Status != "Ready" {
		t.Errorf("Status = %q, want default %q", got.Status, "Ready")
	}
}

func TestUpsertTrailers_LaterElementWins(t *testing.T) {
	s := newTestStore()
	s.UpsertTrailers([]Trailer{
		{ID: "TR1", Owner: "Acme", Type: "Reefer"},
		{ID: "TR1", Owner: "Initech"},
	})

	got, _ := s.Trailer("TR1")
	if got.Owner != "Initech" {
		t.Errorf("Owner = %q, want %q", got.Owner, "Initech")
	}
	if got.Type != "Reefer" {
		t.Errorf("Type = %q, want merged %q", got.Type, "Reefer")
	}
}

func TestSetSettings_MergePatch(t *testing.T) {
	s := newTestStore()

	got := s.SetSettings(SettingsPatch{CompanyName: strPtr("Haulage Co")})
	if got.CompanyName != "Haulage Co" {
		t.Errorf("CompanyName = %q, want %q", got.CompanyName, "Haulage Co")
	}
	// Untouched defaults survive the patch
	if got.SamsaraIDSource != "name" {
		t.Errorf("SamsaraIDSource = %q, want default %q", got.SamsaraIDSource, "name")
	}
	if got.Units != "imperial" {
		t.Errorf("Units = %q, want default %q", got.Units, "imperial")
	}
}
