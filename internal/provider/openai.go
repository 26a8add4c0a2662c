package provider

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI sends turns to the chat completions API. baseURL points it at any
// compatible endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.7,
		maxTokens:   800,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, t := range req.History {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: joinParts(t.Parts)})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Messages:    messages,
	})
	if err != nil {
		return Reply{}, unavailable(o.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, unavailable(o.Name(), errors.New("no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Reply{}, empty(o.Name())
	}
	return Reply{Text: text}, nil
}

func joinParts(parts []Part) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}
