package ai

import "context"

// ExpansionStyle selects the prompt-instruction variant for Expand.
type ExpansionStyle string

const (
	StyleDetailed ExpansionStyle = "detailed"
	StyleCreative ExpansionStyle = "creative"
	StyleAcademic ExpansionStyle = "academic"
)

// NormalizeStyle maps unknown values to the detailed default.
func NormalizeStyle(s string) ExpansionStyle {
	switch ExpansionStyle(s) {
	case StyleCreative:
		return StyleCreative
	case StyleAcademic:
		return StyleAcademic
	default:
		return StyleDetailed
	}
}

// Assistant wraps the external generation service. Each call is
// single-shot; transient failures surface as errors, never retried.
type Assistant interface {
	// Summarize returns a 2-3 sentence summary of the note.
	Summarize(ctx context.Context, title, content string) (string, error)

	// Expand returns the section to append to the note's content.
	Expand(ctx context.Context, title, content string, style ExpansionStyle) (string, error)

	// GenerateTags returns 3-5 lowercase tag suggestions. An
	// unparseable provider response degrades to an empty list with
	// no error.
	GenerateTags(ctx context.Context, title, content string) ([]string, error)
}
