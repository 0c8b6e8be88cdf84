package telemetry

import (
	"encoding/json"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalize_OdometerTakesLargerSource(t *testing.T) {
	vehicles := []Vehicle{{ID: "281474", Name: "Truck A"}}
	stats := []VehicleStat{{
		VehicleID:         "281474",
		OBDOdometerMeters: &OdometerReading{Value: floatPtr(1000)},
		GPSOdometerMeters: &OdometerReading{Value: floatPtr(1200)},
	}}

	trucks := Normalize(vehicles, stats, IDSourceName)
	if len(trucks) != 1 {
		t.Fatalf("trucks length = %d, want 1", len(trucks))
	}
	if trucks[0].Odo == nil || *trucks[0].Odo != 1200 {
		t.Errorf("Odo = %v, want 1200 (larger of the two sources)", trucks[0].Odo)
	}
}

func TestNormalize_OdometerSingleSource(t *testing.T) {
	stats := []VehicleStat{{
		VehicleID:         "1",
		OBDOdometerMeters: &OdometerReading{Value: floatPtr(500)},
	}}

	trucks := Normalize([]Vehicle{{ID: "1", Name: "A"}}, stats, IDSourceName)
	if trucks[0].Odo == nil || *trucks[0].Odo != 500 {
		t.Errorf("Odo = %v, want 500", trucks[0].Odo)
	}
}

func TestNormalize_IDSourceSelection(t *testing.T) {
	v := Vehicle{ID: "281474", Name: "Truck A", Plate: "ABC123", VIN: "VIN001"}

	tests := []struct {
		idSource string
		want     string
	}{
		{IDSourceName, "Truck A"},
		{IDSourcePlate, "ABC123"},
		{"", "Truck A"}, // unknown source falls back to name ordering
	}
	for _, tt := range tests {
		trucks := Normalize([]Vehicle{v}, nil, tt.idSource)
		if trucks[0].ID != tt.want {
			t.Errorf("idSource=%q: ID = %q, want %q", tt.idSource, trucks[0].ID, tt.want)
		}
	}
}

func TestNormalize_IDFallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		vehicle  Vehicle
		idSource string
		want     string
	}{
		{"plate source without plate uses name", Vehicle{ID: "9", Name: "Truck A"}, IDSourcePlate, "Truck A"},
		{"name source without name uses plate", Vehicle{ID: "9", Plate: "ABC123"}, IDSourceName, "ABC123"},
		{"vin when name and plate missing", Vehicle{ID: "9", VIN: "VIN001"}, IDSourceName, "VIN001"},
		{"raw provider id as last resort", Vehicle{ID: "9"}, IDSourceName, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trucks := Normalize([]Vehicle{tt.vehicle}, nil, tt.idSource)
			if trucks[0].ID != tt.want {
				t.Errorf("ID = %q, want %q", trucks[0].ID, tt.want)
			}
		})
	}
}

// The last-seen timestamp is a first-available pick in the fixed order
// GPS, OBD odometer, GPS odometer, engine state. It is not a maximum
// across sources: an older GPS time wins over a newer odometer time.
func TestNormalize_LastSeenFieldPriority(t *testing.T) {
	stats := []VehicleStat{{
		VehicleID:         "1",
		GPS:               &GPSReading{Latitude: floatPtr(1), Longitude: floatPtr(2), TimeMs: 1_700_000_000_000},
		OBDOdometerMeters: &OdometerReading{Value: floatPtr(100), TimeMs: 1_700_000_600_000},
	}}

	trucks := Normalize([]Vehicle{{ID: "1", Name: "A"}}, stats, IDSourceName)
	want := "2023-11-14T22:13:20Z" // the GPS time, despite the newer OBD time
	if trucks[0].LastSeen != want {
		t.Errorf("LastSeen = %q, want %q", trucks[0].LastSeen, want)
	}
}

func TestNormalize_LastSeenFallsThroughMissingSources(t *testing.T) {
	stats := []VehicleStat{{
		VehicleID:    "1",
		EngineStates: &EngineState{EngineOn: false, TimeMs: 1_700_000_000_000},
	}}

	trucks := Normalize([]Vehicle{{ID: "1", Name: "A"}}, stats, IDSourceName)
	if trucks[0].LastSeen != "2023-11-14T22:13:20Z" {
		t.Errorf("LastSeen = %q, want engine-state time", trucks[0].LastSeen)
	}
}

func TestNormalize_LocationRequiresBothCoordinates(t *testing.T) {
	stats := []VehicleStat{{
		VehicleID: "1",
		GPS:       &GPSReading{Latitude: floatPtr(40.7), TimeMs: 1},
	}}

	trucks := Normalize([]Vehicle{{ID: "1", Name: "A"}}, stats, IDSourceName)
	if trucks[0].Location != nil {
		t.Errorf("Location = %+v, want nil when longitude missing", trucks[0].Location)
	}

	stats[0].GPS.Longitude = floatPtr(-74.0)
	trucks = Normalize([]Vehicle{{ID: "1", Name: "A"}}, stats, IDSourceName)
	loc := trucks[0].Location
	if loc == nil || loc.Lat != 40.7 || loc.Lon != -74.0 {
		t.Errorf("Location = %+v, want {40.7 -74}", loc)
	}
}

func TestNormalize_EngineStatusMapping(t *testing.T) {
	vehicles := []Vehicle{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	stats := []VehicleStat{
		{VehicleID: "1", EngineStates: &EngineState{EngineOn: true}},
		{VehicleID: "2", EngineStates: &EngineState{EngineOn: false}},
	}

	trucks := Normalize(vehicles, stats, IDSourceName)
	if trucks[0].Status != "Engine On" {
		t.Errorf("Status = %q, want Engine On", trucks[0].Status)
	}
	if trucks[1].Status != "Idle" {
		t.Errorf("Status = %q, want Idle", trucks[1].Status)
	}
}

func TestNormalize_VehicleWithoutStatKeepsStatFieldsAbsent(t *testing.T) {
	trucks := Normalize([]Vehicle{{ID: "1", Name: "A", VIN: "VIN001"}}, nil, IDSourceName)

	tr := trucks[0]
	if tr.Odo != nil || tr.Location != nil || tr.LastSeen != "" || tr.Status != "" {
		t.Errorf("stat-derived fields set without a stat: %+v", tr)
	}
	if tr.VIN != "VIN001" {
		t.Errorf("VIN = %q, want descriptor field carried through", tr.VIN)
	}
}

func TestFlexID_StringAndNumber(t *testing.T) {
	var v Vehicle
	if err := json.Unmarshal([]byte(`{"id":281474976712345,"name":"A"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.ID.String() != "281474976712345" {
		t.Errorf("numeric id = %q, want 281474976712345", v.ID.String())
	}

	if err := json.Unmarshal([]byte(`{"id":"abc-123"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.ID.String() != "abc-123" {
		t.Errorf("string id = %q, want abc-123", v.ID.String())
	}
}
