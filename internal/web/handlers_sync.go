package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akoval/fleetops/internal/events"
	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/logging"
	"github.com/akoval/fleetops/internal/telemetry"
)

// syncResponse is the sync entrypoint's success payload: the normalized
// trucks exactly as they were fed into the bulk upsert.
type syncResponse struct {
	Trucks []fleet.Truck `json:"trucks"`
}

// handleSync fetches telemetry from the provider, normalizes it, and
// bulk-upserts the result into the store. The idSource query parameter
// overrides the configured identity source for this call; keep it stable
// between syncs or the same physical vehicle lands under two ids.
//
// An overlapping second sync is not cancelled: whichever response arrives
// last is applied last (last-applied-wins at the store).
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		s.respondError(w, r, errors.New("telemetry sync is not configured"),
			http.StatusServiceUnavailable, "sync_unconfigured")
		return
	}

	idSource := r.URL.Query().Get("idSource")
	if idSource == "" {
		idSource = s.store.Settings().SamsaraIDSource
	}
	if idSource != telemetry.IDSourceName && idSource != telemetry.IDSourcePlate {
		s.respondError(w, r, fmt.Errorf("unknown idSource %q", idSource),
			http.StatusBadRequest, "invalid_request")
		return
	}

	vehicles, stats, err := s.provider.Fetch(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway, "upstream_unavailable")
		return
	}

	trucks := telemetry.Normalize(vehicles, stats, idSource)
	s.store.UpsertTrucks(trucks)

	log := logging.FromContext(r.Context())

	// Mirror the merged result for the synced ids. Best-effort: a mirror
	// failure does not fail the sync.
	if s.mirror != nil {
		merged := make([]fleet.Truck, 0, len(trucks))
		for _, t := range trucks {
			if cur, ok := s.store.Truck(t.ID); ok {
				merged = append(merged, cur)
			}
		}
		if err := s.mirror.UpsertTrucks(r.Context(), merged); err != nil {
			log.Warn("mirror write after sync failed", "error", err)
		}
	}

	if err := s.events.Publish(r.Context(), events.TopicTelemetrySynced, events.TelemetrySynced{
		Trucks:   len(trucks),
		IDSource: idSource,
		At:       time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Warn("publish telemetry_synced failed", "error", err)
	}

	log.Info("telemetry sync complete", "trucks", len(trucks), "id_source", idSource)
	respondJSON(w, http.StatusOK, syncResponse{Trucks: trucks})
}
