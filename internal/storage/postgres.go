package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

const noteColumns = `id, owner_id, title, content, tags, folder, is_pinned, is_archived, ai_summary, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.Title,
		&note.Content,
		pq.Array(&note.Tags),
		&note.Folder,
		&note.IsPinned,
		&note.IsArchived,
		&note.AISummary,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

func (s *PostgresStorage) CreateNote(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	note.Normalize()

	query := `
		INSERT INTO notes (id, owner_id, title, content, tags, folder, is_pinned, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		note.ID,
		note.OwnerID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.Folder,
		note.IsPinned,
		note.IsArchived,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating note: %v", err)
	}

	return nil
}

// fetch loads a note by id alone, mapping absence to NotFound. Owner
// checks happen in the caller so a mismatch yields Forbidden, not 404.
func (s *PostgresStorage) fetch(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("note")
	}
	if err != nil {
		return nil, fmt.Errorf("error querying note: %v", err)
	}
	return note, nil
}

func (s *PostgresStorage) owned(ctx context.Context, ownerID, id string) (*models.Note, error) {
	note, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != ownerID {
		return nil, apperr.Forbidden("note belongs to another user")
	}
	return note, nil
}

func (s *PostgresStorage) GetNote(ctx context.Context, ownerID, id string) (*models.Note, error) {
	return s.owned(ctx, ownerID, id)
}

func (s *PostgresStorage) ListNotes(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			` AND (title ILIKE $%d OR content ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d))`,
			n, n, n)
	}
	if len(filter.Tags) > 0 {
		args = append(args, pq.Array(filter.Tags))
		query += fmt.Sprintf(` AND tags && $%d`, len(args))
	}
	if filter.Folder != "" {
		args = append(args, filter.Folder)
		query += fmt.Sprintf(` AND folder = $%d`, len(args))
	}

	query += ` ORDER BY ` + sortColumn(filter.SortBy) + ` ` + sortDirection(filter.Order)
	query += fmt.Sprintf(` LIMIT %d`, models.MaxListResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %v", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning note: %v", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// sortColumn whitelists the ORDER BY target; anything unrecognized
// falls back to updated_at.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "createdAt":
		return "created_at"
	case "title":
		return "title"
	default:
		return "updated_at"
	}
}

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

func (s *PostgresStorage) UpdateNote(ctx context.Context, ownerID, id string, update models.NoteUpdate) (*models.Note, error) {
	note, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(note, update)
	note.Normalize()

	query := `
		UPDATE notes
		SET title = $1, content = $2, tags = $3, folder = $4, is_pinned = $5, is_archived = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err = s.db.QueryRowContext(ctx, query,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.Folder,
		note.IsPinned,
		note.IsArchived,
		note.ID,
	).Scan(&note.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error updating note: %v", err)
	}

	return note, nil
}

// applyUpdate copies only the fields the caller actually sent.
func applyUpdate(note *models.Note, update models.NoteUpdate) {
	if update.Title != nil {
		note.Title = *update.Title
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	if update.Tags != nil {
		note.Tags = *update.Tags
	}
	if update.Folder != nil {
		note.Folder = *update.Folder
	}
	if update.IsPinned != nil {
		note.IsPinned = *update.IsPinned
	}
	if update.IsArchived != nil {
		note.IsArchived = *update.IsArchived
	}
}

func (s *PostgresStorage) DeleteNote(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting note: %v", err)
	}

	return nil
}

func (s *PostgresStorage) TogglePin(ctx context.Context, ownerID, id string) (*models.Note, error) {
	return s.toggle(ctx, ownerID, id, "is_pinned")
}

func (s *PostgresStorage) ToggleArchive(ctx context.Context, ownerID, id string) (*models.Note, error) {
	return s.toggle(ctx, ownerID, id, "is_archived")
}

func (s *PostgresStorage) toggle(ctx context.Context, ownerID, id, column string) (*models.Note, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE notes
		SET %s = NOT %s, updated_at = NOW()
		WHERE id = $1
		RETURNING `+noteColumns, column, column)

	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error toggling %s: %v", column, err)
	}

	return note, nil
}

func (s *PostgresStorage) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	query := `
		SELECT DISTINCT t FROM notes, unnest(tags) t
		WHERE owner_id = $1 AND trim(t) <> ''
		ORDER BY t`

	return s.queryStrings(ctx, query, ownerID)
}

func (s *PostgresStorage) DistinctFolders(ctx context.Context, ownerID string) ([]string, error) {
	query := `
		SELECT DISTINCT folder FROM notes
		WHERE owner_id = $1 AND trim(folder) <> ''
		ORDER BY folder`

	return s.queryStrings(ctx, query, ownerID)
}

func (s *PostgresStorage) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying values: %v", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning value: %v", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

func (s *PostgresStorage) SetSummary(ctx context.Context, ownerID, id, summary string) (*models.Note, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	query := `
		UPDATE notes
		SET ai_summary = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + noteColumns

	note, err := scanNote(s.db.QueryRowContext(ctx, query, summary, id))
	if err != nil {
		return nil, fmt.Errorf("error saving summary: %v", err)
	}

	return note, nil
}

func (s *PostgresStorage) AppendContent(ctx context.Context, ownerID, id, section string) (*models.Note, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	// Blank line between the existing content and the appended section.
	query := `
		UPDATE notes
		SET content = content || E'\n\n' || $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + noteColumns

	note, err := scanNote(s.db.QueryRowContext(ctx, query, section, id))
	if err != nil {
		return nil, fmt.Errorf("error appending content: %v", err)
	}

	return note, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
