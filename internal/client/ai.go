package client

import (
	"context"
	"net/http"

	"github.com/neuranotes/neuranotes/internal/models"
	"github.com/neuranotes/neuranotes/pkg/apperr"
)

// ErrBusy is returned when an AI action is already in flight for the
// note. The rule is advisory and local: another client instance or tab
// is not prevented from racing, matching the server's last-write-wins
// semantics.
var ErrBusy = apperr.Validation("an AI action is already running for this note")

// beginAI marks the note busy, or reports that it already is. Actions
// on different notes run interleaved; only same-note re-invocation is
// blocked until the call settles.
func (c *Client) beginAI(noteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.aiBusy[noteID]; busy {
		return ErrBusy
	}
	c.aiBusy[noteID] = struct{}{}
	return nil
}

func (c *Client) endAI(noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.aiBusy, noteID)
}

// AIBusy reports whether an AI action is in flight for the note, for
// disabling the triggering control.
func (c *Client) AIBusy(noteID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.aiBusy[noteID]
	return busy
}

type SummaryResult struct {
	Summary string      `json:"summary"`
	Note    models.Note `json:"note"`
}

func (c *Client) SummarizeNote(ctx context.Context, noteID string) (*SummaryResult, error) {
	if err := c.beginAI(noteID); err != nil {
		return nil, err
	}
	defer c.endAI(noteID)

	var result SummaryResult
	if err := c.do(ctx, http.MethodPost, "/api/ai/summary/"+noteID, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ExpandResult struct {
	ExpandedContent string      `json:"expandedContent"`
	Appended        string      `json:"appended"`
	Note            models.Note `json:"note"`
}

func (c *Client) ExpandNote(ctx context.Context, noteID, expansionType string) (*ExpandResult, error) {
	if err := c.beginAI(noteID); err != nil {
		return nil, err
	}
	defer c.endAI(noteID)

	body := map[string]string{"expansionType": expansionType}
	var result ExpandResult
	if err := c.do(ctx, http.MethodPost, "/api/ai/expand/"+noteID, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type GenerateTagsResult struct {
	SuggestedTags []string    `json:"suggestedTags"`
	Note          models.Note `json:"note"`
}

// GenerateTags fetches suggestions only; merging them into the note's
// tags takes an explicit UpdateNote call.
func (c *Client) GenerateTags(ctx context.Context, noteID string) (*GenerateTagsResult, error) {
	if err := c.beginAI(noteID); err != nil {
		return nil, err
	}
	defer c.endAI(noteID)

	var result GenerateTagsResult
	if err := c.do(ctx, http.MethodPost, "/api/ai/generate-tags/"+noteID, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
