// Package telemetry fetches vehicle telemetry from the Samsara fleet API
// and normalizes it into the canonical truck shape used by the store.
package telemetry

import (
	"encoding/json"
	"strings"
)

// flexID tolerates the provider returning vehicle ids as either JSON
// strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// Vehicle is a raw fleet-unit descriptor from /fleet/vehicles.
type Vehicle struct {
	ID    flexID `json:"id"`
	Name  string `json:"name,omitempty"`
	VIN   string `json:"vin,omitempty"`
	Plate string `json:"licensePlate,omitempty"`
	Make  string `json:"make,omitempty"`
}

// GPSReading is a GPS fix with its capture time in epoch milliseconds.
type GPSReading struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	TimeMs    int64    `json:"timeMs,omitempty"`
}

// OdometerReading is one odometer sample. The provider reports two
// independent sources (OBD and GPS-derived).
type OdometerReading struct {
	Value  *float64 `json:"value,omitempty"`
	TimeMs int64    `json:"timeMs,omitempty"`
}

// EngineState is the engine-on flag with its capture time.
type EngineState struct {
	EngineOn bool  `json:"engineOn"`
	TimeMs   int64 `json:"timeMs,omitempty"`
}

// VehicleStat is a raw per-vehicle stat snapshot from
// /fleet/vehicles/stats. Every field is optional.
type VehicleStat struct {
	VehicleID         flexID           `json:"vehicleId"`
	GPS               *GPSReading      `json:"gps,omitempty"`
	GPSOdometerMeters *OdometerReading `json:"gpsOdometerMeters,omitempty"`
	OBDOdometerMeters *OdometerReading `json:"obdOdometerMeters,omitempty"`
	EngineStates      *EngineState     `json:"engineStates,omitempty"`
}
