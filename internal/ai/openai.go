package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/neuranotes/neuranotes/pkg/apperr"
)

const maxSuggestedTags = 5

type OpenAIAssistant struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	configured  bool
	logger      *zap.Logger
}

func NewOpenAIAssistant(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIAssistant {
	return &OpenAIAssistant{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		configured:  apiKey != "",
		logger:      logger,
	}
}

func (a *OpenAIAssistant) complete(ctx context.Context, prompt string) (string, error) {
	if !a.configured {
		return "", apperr.Config("server not configured: set OPENAI_API_KEY")
	}

	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   a.maxTokens,
			Temperature: float32(a.temperature),
		},
	)

	if err != nil {
		a.logger.Error("Generation request failed", zap.Error(err))
		return "", apperr.Upstream("generation request failed").WithCause(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.Upstream("generation returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (a *OpenAIAssistant) Summarize(ctx context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following note in 2-3 sentences, focusing on the key ideas and action items. Return only the summary.

Title: %s
Content (HTML allowed):
%s`, title, content)

	summary, err := a.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", apperr.Upstream("generation returned an empty summary")
	}
	return summary, nil
}

func styleInstruction(style ExpansionStyle) string {
	switch style {
	case StyleCreative:
		return "Add creative perspectives and examples"
	case StyleAcademic:
		return "Add academic rigor, references, and methodology suggestions"
	default:
		return "Add detailed explanations and actionable steps"
	}
}

func (a *OpenAIAssistant) Expand(ctx context.Context, title, content string, style ExpansionStyle) (string, error) {
	prompt := fmt.Sprintf(`Expand the following note. Maintain the original content and append an expanded section with a clear heading. Use the style: %s. Keep it concise (200-300 words).

Original note title: %s
Original content (HTML allowed):
%s`, styleInstruction(style), title, content)

	section, err := a.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if section == "" {
		return "", apperr.Upstream("generation returned an empty expansion")
	}
	return section, nil
}

func (a *OpenAIAssistant) GenerateTags(ctx context.Context, title, content string) ([]string, error) {
	prompt := fmt.Sprintf(`Suggest 3-5 concise tags for the following note. Return ONLY a JSON array of lowercase tag strings (no extra text).

Title: %s
Content (HTML allowed):
%s`, title, content)

	response, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	tags, ok := ParseTagList(response)
	if !ok {
		a.logger.Warn("Unparseable tag suggestion response",
			zap.String("response", response))
		return []string{}, nil
	}
	return tags, nil
}

// ParseTagList extracts a JSON string array from a model response,
// tolerating Markdown code fences around it. The second return is
// false when no array could be parsed.
func ParseTagList(response string) ([]string, bool) {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		text = "[]"
	}

	var parsed []string
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false
	}

	tags := make([]string, 0, len(parsed))
	for _, tag := range parsed {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > maxSuggestedTags {
		tags = tags[:maxSuggestedTags]
	}
	return tags, true
}
