package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

const owner = "user-1"

func newTestStorage(t *testing.T) *MemoryStorage {
	t.Helper()
	s := NewMemoryStorage()
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *MemoryStorage, note *models.Note) *models.Note {
	t.Helper()
	if note.OwnerID == "" {
		note.OwnerID = owner
	}
	require.NoError(t, s.CreateNote(context.Background(), note))
	return note
}

func TestCreateNoteDefaults(t *testing.T) {
	s := newTestStorage(t)

	note := mustCreate(t, s, &models.Note{Title: "Untitled fields"})

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, []string{}, note.Tags)
	assert.Equal(t, "General", note.Folder)
	assert.False(t, note.IsPinned)
	assert.False(t, note.IsArchived)
	assert.False(t, note.CreatedAt.IsZero())
	assert.False(t, note.UpdatedAt.Before(note.CreatedAt))
}

func TestCreateNoteDropsBlankTags(t *testing.T) {
	s := newTestStorage(t)

	note := mustCreate(t, s, &models.Note{
		Title: "Tagged",
		Tags:  []string{" home ", "", "   ", "work"},
	})

	assert.Equal(t, []string{"home", "work"}, note.Tags)
}

func TestGetNoteRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	created := mustCreate(t, s, &models.Note{
		Title:    "Groceries",
		Content:  "<p>milk</p>",
		Tags:     []string{"home"},
		Folder:   "Personal",
		IsPinned: true,
	})

	got, err := s.GetNote(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Content, got.Content)
	assert.Equal(t, created.Tags, got.Tags)
	assert.Equal(t, created.Folder, got.Folder)
	assert.Equal(t, created.IsPinned, got.IsPinned)
}

func TestGetNoteNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetNote(context.Background(), owner, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetNoteOwnedByAnotherUser(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "Private", OwnerID: "someone-else"})

	_, err := s.GetNote(context.Background(), owner, note.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateNotePartial(t *testing.T) {
	s := newTestStorage(t)
	s.now = clock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	created := mustCreate(t, s, &models.Note{
		Title:   "Original",
		Content: "<p>body</p>",
		Tags:    []string{"home"},
		Folder:  "Personal",
	})

	s.now = clock(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
	title := "Renamed"
	updated, err := s.UpdateNote(context.Background(), owner, created.ID, models.NoteUpdate{Title: &title})
	require.NoError(t, err)

	// Only title and updatedAt change.
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.Content, updated.Content)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.Folder, updated.Folder)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateNoteForbiddenLeavesNoteUnchanged(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "Theirs", OwnerID: "someone-else"})

	title := "Hijacked"
	_, err := s.UpdateNote(context.Background(), owner, note.ID, models.NoteUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := s.GetNote(context.Background(), "someone-else", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.Title)
}

func TestUpdateNoteEmptyFolderFallsBack(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "N", Folder: "Personal"})

	folder := "  "
	updated, err := s.UpdateNote(context.Background(), owner, note.ID, models.NoteUpdate{Folder: &folder})
	require.NoError(t, err)
	assert.Equal(t, "General", updated.Folder)
}

func TestDeleteNote(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "Doomed"})

	require.NoError(t, s.DeleteNote(context.Background(), owner, note.ID))

	// Permanently gone; second delete reports NotFound.
	err := s.DeleteNote(context.Background(), owner, note.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggles(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "Flags"})

	pinned, err := s.TogglePin(context.Background(), owner, note.ID)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	unpinned, err := s.TogglePin(context.Background(), owner, note.ID)
	require.NoError(t, err)
	assert.False(t, unpinned.IsPinned)

	archivedNote, err := s.ToggleArchive(context.Background(), owner, note.ID)
	require.NoError(t, err)
	assert.True(t, archivedNote.IsArchived)
}

func TestListNotesScopedToOwner(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, &models.Note{Title: "Mine"})
	mustCreate(t, s, &models.Note{Title: "Theirs", OwnerID: "someone-else"})

	notes, err := s.ListNotes(context.Background(), owner, ListFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Mine", notes[0].Title)
}

func TestListNotesSearch(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, &models.Note{Title: "Groceries", Tags: []string{"home"}})
	mustCreate(t, s, &models.Note{Title: "Meeting", Content: "<p>planning</p>"})

	found, err := s.ListNotes(context.Background(), owner, ListFilter{Search: "grocer"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Groceries", found[0].Title)

	empty, err := s.ListNotes(context.Background(), owner, ListFilter{Search: "xyz"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListNotesTagAndFolderFilters(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, &models.Note{Title: "A", Tags: []string{"work"}, Folder: "Office"})
	mustCreate(t, s, &models.Note{Title: "B", Tags: []string{"home"}})

	byTag, err := s.ListNotes(context.Background(), owner, ListFilter{Tags: []string{"work", "travel"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "A", byTag[0].Title)

	byFolder, err := s.ListNotes(context.Background(), owner, ListFilter{Folder: "Office"})
	require.NoError(t, err)
	require.Len(t, byFolder, 1)
	assert.Equal(t, "A", byFolder[0].Title)
}

func TestListNotesSorting(t *testing.T) {
	s := newTestStorage(t)
	s.now = clock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	mustCreate(t, s, &models.Note{Title: "Banana"})
	s.now = clock(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
	mustCreate(t, s, &models.Note{Title: "Apple"})

	newestFirst, err := s.ListNotes(context.Background(), owner, ListFilter{})
	require.NoError(t, err)
	require.Len(t, newestFirst, 2)
	assert.Equal(t, "Apple", newestFirst[0].Title)

	byTitle, err := s.ListNotes(context.Background(), owner, ListFilter{SortBy: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Apple", byTitle[0].Title)
	assert.Equal(t, "Banana", byTitle[1].Title)

	oldestFirst, err := s.ListNotes(context.Background(), owner, ListFilter{SortBy: "createdAt", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Banana", oldestFirst[0].Title)
}

func TestDistinctTagsAndFolders(t *testing.T) {
	s := newTestStorage(t)
	mustCreate(t, s, &models.Note{Title: "A", Tags: []string{"work", "home"}, Folder: "Office"})
	mustCreate(t, s, &models.Note{Title: "B", Tags: []string{"home"}})
	mustCreate(t, s, &models.Note{Title: "C", Tags: []string{"secret"}, OwnerID: "someone-else"})

	tags, err := s.DistinctTags(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, tags)

	folders, err := s.DistinctFolders(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Office"}, folders)
}

func TestSetSummaryOverwrites(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "N"})

	first, err := s.SetSummary(context.Background(), owner, note.ID, "first summary")
	require.NoError(t, err)
	assert.Equal(t, "first summary", first.AISummary)

	second, err := s.SetSummary(context.Background(), owner, note.ID, "second summary")
	require.NoError(t, err)
	assert.Equal(t, "second summary", second.AISummary)
}

func TestAppendContentSeparatesWithBlankLine(t *testing.T) {
	s := newTestStorage(t)
	note := mustCreate(t, s, &models.Note{Title: "N", Content: "<p>original</p>"})

	updated, err := s.AppendContent(context.Background(), owner, note.ID, "<p>expanded</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>original</p>\n\n<p>expanded</p>", updated.Content)
}

func clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
