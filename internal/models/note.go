package models

import (
	"strings"
	"time"
)

const (
	// DefaultFolder is assigned when a note is created or updated
	// without a folder.
	DefaultFolder = "General"

	// MaxContentBytes caps the stored HTML fragment per note.
	MaxContentBytes = 10 << 20

	// MaxListResults bounds a single list query's payload.
	MaxListResults = 1000
)

type Note struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Folder     string    `json:"folder"`
	IsPinned   bool      `json:"isPinned"`
	IsArchived bool      `json:"isArchived"`
	AISummary  string    `json:"aiSummary,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NoteUpdate is a partial update: nil fields are left untouched.
type NoteUpdate struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Tags       *[]string `json:"tags"`
	Folder     *string   `json:"folder"`
	IsPinned   *bool     `json:"isPinned"`
	IsArchived *bool     `json:"isArchived"`
}

// Normalize applies field defaults: non-nil tags with whitespace-only
// entries removed, and the fallback folder. Duplicate tags are kept;
// only the client deduplicates.
func (n *Note) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Tags = CleanTags(n.Tags)
	if strings.TrimSpace(n.Folder) == "" {
		n.Folder = DefaultFolder
	}
}

// CleanTags trims every tag and drops empty ones. Always returns a
// non-nil slice.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

// HasTag reports exact membership; a nil tag slice matches nothing.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
