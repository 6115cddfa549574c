// Package client is a typed wrapper around the NeuraNotes REST API. It
// attaches the bearer credential to every request and normalizes every
// failure into a single error shape.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

const defaultTimeout = 10 * time.Second

// Session carries the credential explicitly instead of reading it from
// ambient storage.
type Session struct {
	Token string

	// OnExpired runs when the server rejects the credential. The
	// caller typically clears stored state and forces a re-login.
	OnExpired func()
}

type Client struct {
	baseURL string
	session *Session
	http    *http.Client

	mu     sync.Mutex
	aiBusy map[string]struct{}
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: defaultTimeout},
		aiBusy:  make(map[string]struct{}),
	}
}

// do issues a request and decodes the response into out (when non-nil).
// Transport failures become Network errors; non-2xx responses map back
// to the taxonomy by status code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return apperr.Internal("failed to encode request").WithCause(err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperr.Internal("failed to build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Network("network error, please check your connection").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.session != nil && c.session.OnExpired != nil {
			c.session.OnExpired()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		message := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			message = body.Error
		}
		return apperr.FromStatus(resp.StatusCode, message).WithDetails(body.Details)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Internal("failed to decode response").WithCause(err)
	}
	return nil
}

// Draft is the editor's payload: title, rich-text content, tags,
// folder, pin flag. Tags are deduplicated and trimmed client-side.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Folder   string   `json:"folder"`
	IsPinned bool     `json:"isPinned"`
}

// normalize dedups and trims draft tags; the server keeps duplicates
// if they get through, so the editor filters here.
func (d *Draft) normalize() {
	seen := make(map[string]struct{}, len(d.Tags))
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	d.Tags = tags
}

func (c *Client) CreateNote(ctx context.Context, draft Draft) (*models.Note, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	draft.normalize()

	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", draft, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListQuery mirrors the server's list query parameters.
type ListQuery struct {
	Search string
	Tags   []string
	Folder string
	SortBy string
	Order  string
}

func (q ListQuery) encode() string {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if len(q.Tags) > 0 {
		values.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Folder != "" {
		values.Set("folder", q.Folder)
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) ListNotes(ctx context.Context, query ListQuery) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes"+query.encode(), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+id, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, update models.NoteUpdate) (*models.Note, error) {
	if update.Tags != nil {
		cleaned := models.CleanTags(*update.Tags)
		update.Tags = &cleaned
	}

	var note models.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id, update, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil)
}

func (c *Client) AllTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.do(ctx, http.MethodGet, "/api/notes/tags/all", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) AllFolders(ctx context.Context) ([]string, error) {
	var folders []string
	if err := c.do(ctx, http.MethodGet, "/api/notes/folders/all", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *Client) TogglePin(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPatch, "/api/notes/"+id+"/toggle-pin", nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ToggleArchive(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPatch, "/api/notes/"+id+"/toggle-archive", nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}
