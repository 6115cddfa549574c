package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neuranotes/neuranotes/internal/ai"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r.Context())
	id := chi.URLParam(r, "noteID")

	note, err := s.storage.GetNote(r.Context(), ownerID, id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	summary, err := s.assistant.Summarize(r.Context(), note.Title, note.Content)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	updated, err := s.storage.SetSummary(r.Context(), ownerID, id, summary)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"note":    updated,
	})
}

type expandRequest struct {
	ExpansionType string `json:"expansionType"`
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r.Context())
	id := chi.URLParam(r, "noteID")

	// The body is optional; a missing or empty expansionType means
	// the detailed default.
	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, s.logger, apperr.Validation("invalid request body").WithCause(err))
		return
	}
	style := ai.NormalizeStyle(req.ExpansionType)

	note, err := s.storage.GetNote(r.Context(), ownerID, id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	section, err := s.assistant.Expand(r.Context(), note.Title, note.Content, style)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	updated, err := s.storage.AppendContent(r.Context(), ownerID, id, section)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"expandedContent": updated.Content,
		"appended":        section,
		"note":            updated,
	})
}

func (s *Server) handleGenerateTags(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r.Context())
	id := chi.URLParam(r, "noteID")

	note, err := s.storage.GetNote(r.Context(), ownerID, id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	tags, err := s.assistant.GenerateTags(r.Context(), note.Title, note.Content)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	// Suggestions only: merging them into the note takes a separate
	// update call from the client.
	respondJSON(w, http.StatusOK, map[string]any{
		"suggestedTags": tags,
		"note":          note,
	})
}
