package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/internal/storage"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

type createNoteRequest struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Folder   string   `json:"folder"`
	IsPinned bool     `json:"isPinned"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, s.logger, apperr.Validation("invalid request body").WithCause(err))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		respondError(w, s.logger, apperr.Validation("title is required").WithCause(err))
		return
	}
	if len(req.Content) > models.MaxContentBytes {
		respondError(w, s.logger, apperr.Validation("content exceeds maximum size"))
		return
	}

	note := &models.Note{
		OwnerID:  OwnerID(r.Context()),
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Folder:   req.Folder,
		IsPinned: req.IsPinned,
	}

	if err := s.storage.CreateNote(r.Context(), note); err != nil {
		respondError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		Search: q.Get("search"),
		Folder: q.Get("folder"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	notes, err := s.storage.ListNotes(r.Context(), OwnerID(r.Context()), filter)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}

	respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.storage.GetNote(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var update models.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, s.logger, apperr.Validation("invalid request body").WithCause(err))
		return
	}

	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		respondError(w, s.logger, apperr.Validation("title cannot be empty"))
		return
	}
	if update.Content != nil && len(*update.Content) > models.MaxContentBytes {
		respondError(w, s.logger, apperr.Validation("content exceeds maximum size"))
		return
	}

	note, err := s.storage.UpdateNote(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "noteID"), update)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r.Context())
	id := chi.URLParam(r, "noteID")

	note, err := s.storage.GetNote(r.Context(), ownerID, id)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	if err := s.storage.DeleteNote(r.Context(), ownerID, id); err != nil {
		respondError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Note deleted",
		"note":    note,
	})
}

func (s *Server) handleAllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.storage.DistinctTags(r.Context(), OwnerID(r.Context()))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (s *Server) handleAllFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.storage.DistinctFolders(r.Context(), OwnerID(r.Context()))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, folders)
}

func (s *Server) handleTogglePin(w http.ResponseWriter, r *http.Request) {
	note, err := s.storage.TogglePin(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleToggleArchive(w http.ResponseWriter, r *http.Request) {
	note, err := s.storage.ToggleArchive(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}
