package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

// Gemini sends turns to the Gemini API; the history shape is native to it.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (Reply, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		contents = append(contents, genai.NewContentFromText(joinParts(t.Parts), geminiRole(t.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 1024,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Reply{}, unavailable(g.Name(), err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return Reply{}, empty(g.Name())
	}
	return Reply{Text: text}, nil
}

func geminiRole(role string) genai.Role {
	if role == RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
