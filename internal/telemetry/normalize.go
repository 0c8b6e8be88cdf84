package telemetry

import (
	"time"

	"github.com/akoval/fleetops/internal/fleet"
)

// Identity sources for joining provider records to local truck ids.
// Changing the source between syncs can create duplicate trucks for the
// same physical vehicle; callers must keep it stable.
const (
	IDSourceName  = "name"
	IDSourcePlate = "licensePlate"
)

// Normalize converts raw vehicle descriptors and stat snapshots into
// canonical trucks. Stats are joined by provider vehicle id, taken as
// given (the provider already returns one snapshot per vehicle).
func Normalize(vehicles []Vehicle, stats []VehicleStat, idSource string) []fleet.Truck {
	byID := make(map[string]VehicleStat, len(stats))
	for _, s := range stats {
		if id := s.VehicleID.String(); id != "" {
			byID[id] = s
		}
	}

	trucks := make([]fleet.Truck, 0, len(vehicles))
	for _, v := range vehicles {
		rawID := v.ID.String()
		stat, hasStat := byID[rawID]

		t := fleet.Truck{
			ID:    resolveID(v, idSource),
			Name:  v.Name,
			VIN:   v.VIN,
			Plate: v.Plate,
			Make:  v.Make,
		}
		if hasStat {
			t.Odo = bestOdometer(stat)
			t.Location = gpsLocation(stat.GPS)
			t.LastSeen = lastSeen(stat)
			if stat.EngineStates != nil && stat.EngineStates.EngineOn {
				t.Status = "Engine On"
			} else {
				t.Status = "Idle"
			}
		}
		trucks = append(trucks, t)
	}
	return trucks
}

// resolveID picks the output id per the configured identity source. This
// id is what downstream bulk upserts use as the join key against local
// trucks.
func resolveID(v Vehicle, idSource string) string {
	candidates := []string{v.Name, v.Plate, v.VIN, v.ID.String()}
	if idSource == IDSourcePlate {
		candidates = []string{v.Plate, v.Name, v.VIN, v.ID.String()}
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// bestOdometer reports the larger of the two odometer sources when both
// are present; the higher reading is trusted as the more complete one.
func bestOdometer(s VehicleStat) *float64 {
	var best *float64
	for _, r := range []*OdometerReading{s.OBDOdometerMeters, s.GPSOdometerMeters} {
		if r == nil || r.Value == nil {
			continue
		}
		if best == nil || *r.Value > *best {
			v := *r.Value
			best = &v
		}
	}
	return best
}

// gpsLocation returns nil when either coordinate is missing, never a
// zero-coordinate placeholder.
func gpsLocation(g *GPSReading) *fleet.Location {
	if g == nil || g.Latitude == nil || g.Longitude == nil {
		return nil
	}
	return &fleet.Location{Lat: *g.Latitude, Lon: *g.Longitude}
}

// lastSeen picks the first available capture time in a fixed field order:
// GPS, OBD odometer, GPS odometer, engine state. This is a first-non-null
// pick, not a true maximum across the four sources; the behavior is
// pinned by TestNormalize_LastSeenFieldPriority.
func lastSeen(s VehicleStat) string {
	var ms int64
	switch {
	case s.GPS != nil && s.GPS.TimeMs != 0:
		ms = s.GPS.TimeMs
	case s.OBDOdometerMeters != nil && s.OBDOdometerMeters.TimeMs != 0:
		ms = s.OBDOdometerMeters.TimeMs
	case s.GPSOdometerMeters != nil && s.GPSOdometerMeters.TimeMs != 0:
		ms = s.GPSOdometerMeters.TimeMs
	case s.EngineStates != nil && s.EngineStates.TimeMs != 0:
		ms = s.EngineStates.TimeMs
	}
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
