package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

// MemoryStorage keeps notes in a map. It backs tests and the
// database.use_in_memory configuration.
type MemoryStorage struct {
	mu    sync.RWMutex
	notes map[string]*models.Note
	now   func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notes: make(map[string]*models.Note),
		now:   time.Now,
	}
}

func (s *MemoryStorage) CreateNote(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	note.Normalize()
	now := s.now()
	note.CreatedAt = now
	note.UpdatedAt = now

	stored := *note
	stored.Tags = append([]string{}, note.Tags...)
	s.notes[note.ID] = &stored
	return nil
}

func (s *MemoryStorage) owned(ownerID, id string) (*models.Note, error) {
	note, exists := s.notes[id]
	if !exists {
		return nil, apperr.NotFound("note")
	}
	if note.OwnerID != ownerID {
		return nil, apperr.Forbidden("note belongs to another user")
	}
	return note, nil
}

func copyNote(note *models.Note) *models.Note {
	c := *note
	c.Tags = append([]string{}, note.Tags...)
	return &c
}

func (s *MemoryStorage) GetNote(ctx context.Context, ownerID, id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	return copyNote(note), nil
}

func (s *MemoryStorage) ListNotes(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []*models.Note
	for _, note := range s.notes {
		if note.OwnerID != ownerID {
			continue
		}
		if !matchesFilter(note, filter) {
			continue
		}
		notes = append(notes, copyNote(note))
	}

	sortNotes(notes, filter.SortBy, filter.Order)

	if len(notes) > models.MaxListResults {
		notes = notes[:models.MaxListResults]
	}
	return notes, nil
}

func matchesFilter(note *models.Note, filter ListFilter) bool {
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(note.Title), term) &&
			!strings.Contains(strings.ToLower(note.Content), term) &&
			!anyTagContains(note.Tags, term) {
			return false
		}
	}
	if len(filter.Tags) > 0 {
		found := false
		for _, tag := range filter.Tags {
			if note.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Folder != "" && note.Folder != filter.Folder {
		return false
	}
	return true
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func sortNotes(notes []*models.Note, sortBy, order string) {
	asc := order == "asc"
	sort.SliceStable(notes, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "createdAt":
			less = notes[i].CreatedAt.Before(notes[j].CreatedAt)
		case "title":
			less = notes[i].Title < notes[j].Title
		default:
			less = notes[i].UpdatedAt.Before(notes[j].UpdatedAt)
		}
		if asc {
			return less
		}
		return !less && !equalKey(notes[i], notes[j], sortBy)
	})
}

func equalKey(a, b *models.Note, sortBy string) bool {
	switch sortBy {
	case "createdAt":
		return a.CreatedAt.Equal(b.CreatedAt)
	case "title":
		return a.Title == b.Title
	default:
		return a.UpdatedAt.Equal(b.UpdatedAt)
	}
}

func (s *MemoryStorage) UpdateNote(ctx context.Context, ownerID, id string, update models.NoteUpdate) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(note, update)
	note.Normalize()
	note.UpdatedAt = s.now()
	return copyNote(note), nil
}

func (s *MemoryStorage) DeleteNote(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(ownerID, id); err != nil {
		return err
	}
	delete(s.notes, id)
	return nil
}

func (s *MemoryStorage) TogglePin(ctx context.Context, ownerID, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	note.IsPinned = !note.IsPinned
	note.UpdatedAt = s.now()
	return copyNote(note), nil
}

func (s *MemoryStorage) ToggleArchive(ctx context.Context, ownerID, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	note.IsArchived = !note.IsArchived
	note.UpdatedAt = s.now()
	return copyNote(note), nil
}

func (s *MemoryStorage) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, note := range s.notes {
		if note.OwnerID != ownerID {
			continue
		}
		for _, tag := range note.Tags {
			if strings.TrimSpace(tag) != "" {
				seen[tag] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func (s *MemoryStorage) DistinctFolders(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, note := range s.notes {
		if note.OwnerID != ownerID {
			continue
		}
		if strings.TrimSpace(note.Folder) != "" {
			seen[note.Folder] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStorage) SetSummary(ctx context.Context, ownerID, id, summary string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	note.AISummary = summary
	note.UpdatedAt = s.now()
	return copyNote(note), nil
}

func (s *MemoryStorage) AppendContent(ctx context.Context, ownerID, id, section string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	note.Content = note.Content + "\n\n" + section
	note.UpdatedAt = s.now()
	return copyNote(note), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
