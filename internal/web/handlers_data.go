package web

import (
	"net/http"

	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/persist"
)

// handlers_data.go covers the ledger, snapshot import/export, the data
// wipe, and settings.

func (s *Server) handleListLedger(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Ledger())
}

func (s *Server) handleAddLedger(w http.ResponseWriter, r *http.Request) {
	var e fleet.LedgerEntry
	if err := decodeJSON(r, &e); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	created, err := s.store.AddLedger(e)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertLedgerEntry(r.Context(), created)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// handleExport streams the full snapshot as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="fleetops-export.json"`)
	respondJSON(w, http.StatusOK, s.store.ExportSnapshot())
}

// handleImport applies a snapshot: collections present in the body
// replace the current ones wholesale, settings merge. On success the
// mirror is rebuilt to match the imported state.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap fleet.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	s.store.ImportSnapshot(snap)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return persist.WriteAll(r.Context(), m, s.store)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// handleClear wipes the four collections. Settings survive.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.store.ClearAll()
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.Reset(r.Context())
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch fleet.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	respondJSON(w, http.StatusOK, s.store.SetSettings(patch))
}
