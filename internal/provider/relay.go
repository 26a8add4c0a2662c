package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

type RelayConfig struct {
	URL string
	// Client credentials are optional; without them requests go out unauthenticated.
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Relay posts each turn as JSON to an HTTP endpoint that fronts the model.
type Relay struct {
	url    string
	client *http.Client
}

type relayRequest struct {
	Prompt  string `json:"prompt"`
	System  string `json:"system"`
	History []Turn `json:"history"`
	Mode    string `json:"mode"`
}

type relayResponse struct {
	Text     *string `json:"text"`
	Fallback bool    `json:"fallback"`
}

func NewRelay(ctx context.Context, cfg RelayConfig) *Relay {
	client := &http.Client{Timeout: 60 * time.Second}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		client = cc.Client(ctx)
	}
	return &Relay{url: cfg.URL, client: client}
}

func (r *Relay) Name() string { return "relay" }

func (r *Relay) Generate(ctx context.Context, req Request) (Reply, error) {
	history := req.History
	if history == nil {
		history = []Turn{}
	}
	body, err := json.Marshal(relayRequest{
		Prompt:  req.Prompt,
		System:  req.System,
		History: history,
		Mode:    string(req.Mode),
	})
	if err != nil {
		return Reply{}, fmt.Errorf("encode relay request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, unavailable(r.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Reply{}, unavailable(r.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Reply{}, unavailable(r.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var out relayResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Reply{}, unavailable(r.Name(), fmt.Errorf("decode response: %w", err))
	}
	if out.Text == nil || strings.TrimSpace(*out.Text) == "" {
		return Reply{Fallback: out.Fallback}, empty(r.Name())
	}
	return Reply{Text: strings.TrimSpace(*out.Text), Fallback: out.Fallback}, nil
}
