package web

import (
	"net/http"
	"time"

	"github.com/akoval/fleetops/internal/events"
	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/logging"
	"github.com/akoval/fleetops/internal/persist"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Cases())
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, ok := s.store.Case(chi.URLParam(r, "id"))
	if !ok {
		s.respondStoreError(w, r, fleet.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleAddCase(w http.ResponseWriter, r *http.Request) {
	var c fleet.CaseItem
	if err := decodeJSON(r, &c); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.AddCase(c); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	created, _ := s.store.Case(c.ID)
	if err := s.mirrorCase(r, created); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch fleet.CasePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.UpdateCase(id, patch); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	updated, _ := s.store.Case(id)
	if err := s.mirrorCase(r, updated); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.DeleteCase(id)
	if err := s.mirrorWrite(func(m persist.Mirror) error {
		return m.DeleteCase(r.Context(), id)
	}); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// advanceRequest optionally names an explicit target stage, bypassing
// the ordered progression.
type advanceRequest struct {
	Stage *fleet.Stage `json:"stage,omitempty"`
}

func (s *Server) handleAdvanceCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req advanceRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
			return
		}
	}

	before, _ := s.store.Case(id)

	var c fleet.CaseItem
	var err error
	if req.Stage != nil {
		c, err = s.store.SetCaseStage(id, *req.Stage)
	} else {
		c, err = s.store.AdvanceCase(id)
	}
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	if c.Stage != before.Stage {
		if err := s.events.Publish(r.Context(), events.TopicCaseStageChanged, events.CaseStageChanged{
			CaseID: c.ID,
			Stage:  string(c.Stage),
			At:     time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			logging.FromContext(r.Context()).Warn("publish case_stage_changed failed", "error", err)
		}
	}

	if err := s.mirrorCase(r, c); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddCaseNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.AddCaseNote(id, req.Text); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	c, _ := s.store.Case(id)
	if err := s.mirrorCase(r, c); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleAttachInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var invoice fleet.InvoiceFile
	if err := decodeJSON(r, &invoice); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.store.AttachInvoice(id, invoice); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	c, _ := s.store.Case(id)
	if err := s.mirrorCase(r, c); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError, "persist_failed")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) mirrorCase(r *http.Request, c fleet.CaseItem) error {
	return s.mirrorWrite(func(m persist.Mirror) error {
		return m.UpsertCase(r.Context(), c)
	})
}
