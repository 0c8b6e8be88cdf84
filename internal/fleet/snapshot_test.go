package fleet

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestImportSnapshot_PresentCollectionReplacesWholesale(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{ID: "T1", Name: "old"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}
	if err := s.AddCase(CaseItem{ID: "C1", Title: "old"}); err != nil {
		t.Fatalf("AddCase: %v", err)
	}

	// Cases present but empty: wipe them. Trucks absent: keep them.
	var snap Snapshot
	if err := json.Unmarshal([]byte(`{"cases":[]}`), &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	s.ImportSnapshot(snap)

	if got := len(s.Cases()); got != 0 {
		t.Errorf("cases length = %d, want 0 after wholesale replace", got)
	}
	if got := len(s.Trucks()); got != 1 {
		t.Errorf("trucks length = %d, want 1 (absent collection untouched)", got)
	}
}

func TestImportSnapshot_SkipsEntriesWithoutID(t *testing.T) {
	s := newTestStore()

	s.ImportSnapshot(Snapshot{
		Trucks: []Truck{{Name: "no id"}, {ID: "T1", Name: "kept"}},
	})

	trucks := s.Trucks()
	if len(trucks) != 1 {
		t.Fatalf("trucks length = %d, want 1", len(trucks))
	}
	if trucks[0].ID != "T1" {
		t.Errorf("trucks[0].ID = %q, want T1", trucks[0].ID)
	}
}

func TestImportSnapshot_SettingsMergePatched(t *testing.T) {
	s := newTestStore()
	s.SetSettings(SettingsPatch{CompanyName: strPtr("Acme Haulage")})

	src := "licensePlate"
	s.ImportSnapshot(Snapshot{Settings: &SettingsPatch{SamsaraIDSource: &src}})

	got := s.Settings()
	if got.SamsaraIDSource != "licensePlate" {
		t.Errorf("SamsaraIDSource = %q, want licensePlate", got.SamsaraIDSource)
	}
	if got.CompanyName != "Acme Haulage" {
		t.Errorf("CompanyName = %q, want preserved Acme Haulage", got.CompanyName)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{ID: "T1", VIN: "VIN1", Name: "Truck A"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}
	if err := s.AddTrailer(Trailer{ID: "R1", Owner: "Acme"}); err != nil {
		t.Fatalf("AddTrailer: %v", err)
	}
	if err := s.AddCase(CaseItem{ID: "C1", Title: "Brakes", AssetID: "T1"}); err != nil {
		t.Fatalf("AddCase: %v", err)
	}
	if _, err := s.AddLedger(LedgerEntry{Amount: decimal.NewFromInt(250), Note: "pads"}); err != nil {
		t.Fatalf("AddLedger: %v", err)
	}

	exported := s.ExportSnapshot()
	data, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	other := newTestStore()
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	other.ImportSnapshot(snap)

	got := other.ExportSnapshot()
	if !reflect.DeepEqual(got.Trucks, exported.Trucks) {
		t.Errorf("trucks round-trip mismatch:\n got %+v\nwant %+v", got.Trucks, exported.Trucks)
	}
	if !reflect.DeepEqual(got.Trailers, exported.Trailers) {
		t.Errorf("trailers round-trip mismatch:\n got %+v\nwant %+v", got.Trailers, exported.Trailers)
	}
	if !reflect.DeepEqual(got.Cases, exported.Cases) {
		t.Errorf("cases round-trip mismatch:\n got %+v\nwant %+v", got.Cases, exported.Cases)
	}
	if len(got.Ledger) != 1 || !got.Ledger[0].Amount.Equal(exported.Ledger[0].Amount) {
		t.Errorf("ledger round-trip mismatch:\n got %+v\nwant %+v", got.Ledger, exported.Ledger)
	}
}

func TestClearAll_KeepsSettings(t *testing.T) {
	s := newTestStore()
	if err := s.AddTruck(Truck{ID: "T1"}); err != nil {
		t.Fatalf("AddTruck: %v", err)
	}
	if err := s.AddCase(CaseItem{ID: "C1", Title: "x"}); err != nil {
		t.Fatalf("AddCase: %v", err)
	}
	if _, err := s.AddLedger(LedgerEntry{Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("AddLedger: %v", err)
	}
	src := "licensePlate"
	s.SetSettings(SettingsPatch{SamsaraIDSource: &src})

	s.ClearAll()

	if got := len(s.Trucks()) + len(s.Trailers()) + len(s.Cases()) + len(s.Ledger()); got != 0 {
		t.Errorf("collections not empty after ClearAll, total %d entries", got)
	}
	if got := s.Settings().SamsaraIDSource; got != "licensePlate" {
		t.Errorf("SamsaraIDSource = %q, want preserved licensePlate", got)
	}
}
