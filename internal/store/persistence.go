package store

import (
	"context"

	"hayat-support-backend/internal/domain"
)

// Persistence is the key-value collaborator behind the Store. The
// conversation list and the current pointer are written separately, so a
// reader may see a pointer that no longer matches the list.
type Persistence interface {
	// LoadIndex returns an empty index when nothing is stored for key.
	LoadIndex(ctx context.Context, key domain.Key) (domain.Index, error)
	SaveConversations(ctx context.Context, key domain.Key, convs []domain.Conversation) error
	SaveCurrent(ctx context.Context, key domain.Key, id string) error
}

func cloneConversations(convs []domain.Conversation) []domain.Conversation {
	if convs == nil {
		return nil
	}
	out := make([]domain.Conversation, len(convs))
	for i, c := range convs {
		out[i] = c.Clone()
	}
	return out
}
