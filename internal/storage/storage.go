package storage

import (
	"context"

	"github.com/neuranotes/neuranotes/internal/models"
)

// ListFilter narrows and orders a list query. Zero value means
// "everything the owner has, newest update first".
type ListFilter struct {
	Search string
	Tags   []string
	Folder string
	SortBy string // updatedAt | createdAt | title
	Order  string // asc | desc
}

// Storage persists notes scoped to an owner. Every method that names a
// note returns a NotFound error when the id is absent and a Forbidden
// error when the note belongs to someone else.
type Storage interface {
	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, ownerID, id string) (*models.Note, error)
	ListNotes(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Note, error)
	UpdateNote(ctx context.Context, ownerID, id string, update models.NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, ownerID, id string) error
	TogglePin(ctx context.Context, ownerID, id string) (*models.Note, error)
	ToggleArchive(ctx context.Context, ownerID, id string) (*models.Note, error)
	DistinctTags(ctx context.Context, ownerID string) ([]string, error)
	DistinctFolders(ctx context.Context, ownerID string) ([]string, error)

	// SetSummary and AppendContent back the AI actions; both refresh
	// updatedAt.
	SetSummary(ctx context.Context, ownerID, id, summary string) (*models.Note, error)
	AppendContent(ctx context.Context, ownerID, id, section string) (*models.Note, error)

	Close() error
}
