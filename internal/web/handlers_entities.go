package web

import (
	"net/http"

	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/persist"
	"github.com/go-chi/chi/v5"
)

// handlers_entities.go covers the truck and trailer CRUD surface. Every
// mutation applies to the in-memory store first and then mirrors;
// a mirror failure is reported but the store mutation stands.

// mirrorWrite runs fn against the mirror when one is configured.
func (s *Server) mirrorWrite(fn func(persist.Mirror) error) error {
	if s.mirror == nil {
		return nil
	}
	return fn(s.mirror)
}

// ============================================================================
// Trucks
// ============================================================================

func (s *Server) handleListTrucks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Trucks())
}

func (s *Server) handleUpsertTruck(w http.ResponseWriter, r *http.Request) {
	var t fleet.Truck
	if err := decodeJSON(r, &t); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.UpsertTruck(t); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	merged, _ := s.store.Truck(t.ID)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertTruck(r.Context(), merged)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, merged)
}

func (s *Server) handleUpdateTruck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch fleet.TruckPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.UpdateTruck(id, patch); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	updated, _ := s.store.Truck(id)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertTruck(r.Context(), updated)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTruck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.DeleteTruck(id)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.DeleteTruck(r.Context(), id)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Trailers
// ============================================================================

func (s *Server) handleListTrailers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Trailers())
}

func (s *Server) handleUpsertTrailer(w http.ResponseWriter, r *http.Request) {
	var t fleet.Trailer
	if err := decodeJSON(r, &t); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.UpsertTrailer(t); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	merged, _ := s.store.Trailer(t.ID)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertTrailer(r.Context(), merged)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, merged)
}

func (s *Server) handleUpdateTrailer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch fleet.TrailerPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.UpdateTrailer(id, patch); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	updated, _ := s.store.Trailer(id)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertTrailer(r.Context(), updated)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTrailer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.DeleteTrailer(id)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.DeleteTrailer(r.Context(), id)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
