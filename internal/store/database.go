package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hayat-support-backend/internal/db"
	"hayat-support-backend/internal/domain"
)

// SQLPersistence stores each index as one row of conversation_index, on
// Postgres or SQLite.
type SQLPersistence struct {
	db  *db.DB
	now func() time.Time
}

// NewSQLPersistence creates a database-backed persistence. Migrations must
// already have been applied.
func NewSQLPersistence(database *db.DB) *SQLPersistence {
	return &SQLPersistence{db: database, now: time.Now}
}

func (s *SQLPersistence) LoadIndex(ctx context.Context, key domain.Key) (domain.Index, error) {
	if key.UserID == "" {
		return domain.Index{}, fmt.Errorf("user_id is required")
	}

	var (
		raw     string
		current string
	)
	query := `
		SELECT conversations, current_id
		FROM conversation_index
		WHERE user_id = $1 AND mode = $2
	`
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), key.UserID, string(key.Mode)).Scan(&raw, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Index{}, nil
	}
	if err != nil {
		return domain.Index{}, fmt.Errorf("failed to load conversations: %w", err)
	}

	var convs []domain.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return domain.Index{}, fmt.Errorf("failed to decode conversations for %s: %w", key, err)
	}
	return domain.Index{Conversations: convs, CurrentID: current}, nil
}

func (s *SQLPersistence) SaveConversations(ctx context.Context, key domain.Key, convs []domain.Conversation) error {
	if convs == nil {
		convs = []domain.Conversation{}
	}
	b, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}

	query := `
		INSERT INTO conversation_index (user_id, mode, conversations, current_id, updated_at)
		VALUES ($1, $2, $3, '', $4)
		ON CONFLICT (user_id, mode)
		DO UPDATE SET
			conversations = EXCLUDED.conversations,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), key.UserID, string(key.Mode), string(b), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save conversations: %w", err)
	}
	return nil
}

func (s *SQLPersistence) SaveCurrent(ctx context.Context, key domain.Key, id string) error {
	query := `
		INSERT INTO conversation_index (user_id, mode, conversations, current_id, updated_at)
		VALUES ($1, $2, '[]', $3, $4)
		ON CONFLICT (user_id, mode)
		DO UPDATE SET
			current_id = EXCLUDED.current_id,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), key.UserID, string(key.Mode), id, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save current conversation: %w", err)
	}
	return nil
}
