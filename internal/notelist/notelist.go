// Package notelist derives the visible, ordered note sequence from the
// full fetched collection and a set of independent filter controls. It
// is a pure transformation: no caching, no incremental updates, re-run
// in full whenever any input changes.
package notelist

import (
	"sort"
	"strings"

	"github.com/neuranotes/neuranotes/internal/models"
)

type SortKey string

const (
	SortByUpdatedAt SortKey = "updatedAt"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Controls are combined with AND semantics; pin priority is applied
// last as a stable reordering, not a filter.
type Controls struct {
	// SearchTerm matches case-insensitively against title, content,
	// or any tag. Empty matches everything.
	SearchTerm string

	// SelectedTags requires at least one exact tag match when
	// non-empty (OR across the listed tags).
	SelectedTags []string

	// SelectedFolder requires an exact folder match when set.
	SelectedFolder string

	// ShowArchived gates visibility: a note is visible only when its
	// archived flag equals this exactly.
	ShowArchived bool

	SortBy    SortKey
	SortOrder SortOrder
}

// Apply filters and orders the collection: predicate filter, stable
// sort by the chosen key, then a stable pass moving pinned notes ahead
// of unpinned ones while preserving relative order inside each group.
func Apply(notes []models.Note, controls Controls) []models.Note {
	visible := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if matches(note, controls) {
			visible = append(visible, note)
		}
	}

	sortBy(visible, controls.SortBy, controls.SortOrder)
	pinFirst(visible)
	return visible
}

func matches(note models.Note, controls Controls) bool {
	if note.IsArchived != controls.ShowArchived {
		return false
	}
	if controls.SearchTerm != "" && !matchesSearch(note, controls.SearchTerm) {
		return false
	}
	if len(controls.SelectedTags) > 0 && !hasAnyTag(note, controls.SelectedTags) {
		return false
	}
	if controls.SelectedFolder != "" && note.Folder != controls.SelectedFolder {
		return false
	}
	return true
}

// matchesSearch is the only case-insensitive comparison; tag and
// folder dropdown filters stay exact.
func matchesSearch(note models.Note, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(note.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), term) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func hasAnyTag(note models.Note, selected []string) bool {
	for _, tag := range selected {
		if note.HasTag(tag) {
			return true
		}
	}
	return false
}

func sortBy(notes []models.Note, key SortKey, order SortOrder) {
	cmp := func(a, b models.Note) int {
		switch key {
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortByTitle:
			return strings.Compare(a.Title, b.Title)
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		c := cmp(notes[i], notes[j])
		if order == Ascending {
			return c < 0
		}
		return c > 0
	})
}

// pinFirst stably partitions pinned notes ahead of unpinned ones.
func pinFirst(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].IsPinned && !notes[j].IsPinned
	})
}

// Window truncates an already-filtered, already-sorted sequence for
// progressive disclosure. It is independent of filtering and does not
// reset itself when controls change; callers decide when Reset runs.
type Window struct {
	visible int
	step    int
}

func NewWindow(initial int) *Window {
	if initial <= 0 {
		initial = 10
	}
	return &Window{visible: initial, step: initial}
}

// Cut returns the visible prefix of notes.
func (w *Window) Cut(notes []models.Note) []models.Note {
	if len(notes) <= w.visible {
		return notes
	}
	return notes[:w.visible]
}

// Grow widens the window by its initial size.
func (w *Window) Grow() {
	w.visible += w.step
}

// Reset shrinks the window back to its initial size.
func (w *Window) Reset() {
	w.visible = w.step
}

// Visible reports the current window size.
func (w *Window) Visible() int {
	return w.visible
}
