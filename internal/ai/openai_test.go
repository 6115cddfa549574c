package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/neuranotes/neuranotes/pkg/apperr"
)

func TestParseTagList(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
		ok       bool
	}{
		{
			name:     "plain array",
			response: `["go", "notes", "productivity"]`,
			want:     []string{"go", "notes", "productivity"},
			ok:       true,
		},
		{
			name:     "fenced array",
			response: "```json\n[\"go\", \"notes\"]\n```",
			want:     []string{"go", "notes"},
			ok:       true,
		},
		{
			name:     "bare fence",
			response: "```\n[\"go\"]\n```",
			want:     []string{"go"},
			ok:       true,
		},
		{
			name:     "uppercase and padding normalized",
			response: `[" Go ", "NOTES"]`,
			want:     []string{"go", "notes"},
			ok:       true,
		},
		{
			name:     "capped at five",
			response: `["a","b","c","d","e","f","g"]`,
			want:     []string{"a", "b", "c", "d", "e"},
			ok:       true,
		},
		{
			name:     "empty entries dropped",
			response: `["go", "", "  "]`,
			want:     []string{"go"},
			ok:       true,
		},
		{
			name:     "empty response treated as empty array",
			response: "",
			want:     []string{},
			ok:       true,
		},
		{
			name:     "prose is unparseable",
			response: "Here are some tags: go, notes",
			ok:       false,
		},
		{
			name:     "json object is unparseable",
			response: `{"tags": ["go"]}`,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTagList(tt.response)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeStyle(t *testing.T) {
	assert.Equal(t, StyleCreative, NormalizeStyle("creative"))
	assert.Equal(t, StyleAcademic, NormalizeStyle("academic"))
	assert.Equal(t, StyleDetailed, NormalizeStyle("detailed"))
	assert.Equal(t, StyleDetailed, NormalizeStyle(""))
	assert.Equal(t, StyleDetailed, NormalizeStyle("whimsical"))
}

func TestStyleInstruction(t *testing.T) {
	assert.Contains(t, styleInstruction(StyleCreative), "creative perspectives")
	assert.Contains(t, styleInstruction(StyleAcademic), "academic rigor")
	assert.Contains(t, styleInstruction(StyleDetailed), "detailed explanations")
}

func TestUnconfiguredAssistantReturnsConfigError(t *testing.T) {
	assistant := NewOpenAIAssistant("", "gpt-4o-mini", 512, 0.7, zap.NewNop())
	ctx := context.Background()

	_, err := assistant.Summarize(ctx, "title", "content")
	assert.True(t, apperr.Is(err, apperr.KindConfig))

	_, err = assistant.Expand(ctx, "title", "content", StyleDetailed)
	assert.True(t, apperr.Is(err, apperr.KindConfig))

	_, err = assistant.GenerateTags(ctx, "title", "content")
	assert.True(t, apperr.Is(err, apperr.KindConfig))
}
