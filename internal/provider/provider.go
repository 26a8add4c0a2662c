package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hayat-support-backend/internal/config"
	"hayat-support-backend/internal/domain"
)

// Wire roles for history turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Part struct {
	Text string `json:"text"`
}

// Turn is one history entry in the {role, parts:[{text}]} shape remote
// providers accept.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Request is everything a remote provider gets for one turn.
type Request struct {
	Prompt  string
	System  string
	History []Turn
	Mode    domain.Mode
}

// Reply is the validated provider answer. Fallback is set when the provider
// itself reports it answered in a reduced mode.
type Reply struct {
	Text     string
	Fallback bool
}

// Provider generates a reply remotely. Every failure is reported as an error
// wrapping domain.ErrRemoteUnavailable or domain.ErrRemoteEmptyResponse.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Reply, error)
}

// HistoryFrom converts stored messages into wire turns, oldest first.
// Blank messages are skipped.
func HistoryFrom(msgs []domain.ChatMessage) []Turn {
	out := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := RoleUser
		if m.Role == domain.RoleAssistant {
			role = RoleModel
		}
		out = append(out, Turn{Role: role, Parts: []Part{{Text: m.Content}}})
	}
	return out
}

// New builds the provider selected by cfg. A provider missing its
// credentials is replaced by Offline so the server still starts.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return offlineBecause(log, "OPENAI_API_KEY missing"), nil
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return offlineBecause(log, "GEMINI_API_KEY missing"), nil
		}
		return NewGemini(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	case config.ProviderRelay:
		if cfg.RelayURL == "" {
			return offlineBecause(log, "RELAY_URL missing"), nil
		}
		return NewRelay(ctx, RelayConfig{
			URL:          cfg.RelayURL,
			ClientID:     cfg.RelayClientID,
			ClientSecret: cfg.RelayClientSecret,
			TokenURL:     cfg.RelayTokenURL,
		}), nil
	case config.ProviderOffline:
		return Offline{}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func offlineBecause(log *zap.Logger, reason string) Provider {
	log.Warn("remote provider disabled", zap.String("reason", reason))
	return Offline{}
}

func unavailable(name string, err error) error {
	return fmt.Errorf("%s: %w: %v", name, domain.ErrRemoteUnavailable, err)
}

func empty(name string) error {
	return fmt.Errorf("%s: %w", name, domain.ErrRemoteEmptyResponse)
}
