package store

import (
	"context"
	"sync"

	"hayat-support-backend/internal/domain"
)

// MemoryPersistence keeps indexes in process memory. Nothing survives a restart.
type MemoryPersistence struct {
	mu            sync.RWMutex
	conversations map[domain.Key][]domain.Conversation
	current       map[domain.Key]string
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		conversations: make(map[domain.Key][]domain.Conversation),
		current:       make(map[domain.Key]string),
	}
}

func (m *MemoryPersistence) LoadIndex(_ context.Context, key domain.Key) (domain.Index, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Index{
		Conversations: cloneConversations(m.conversations[key]),
		CurrentID:     m.current[key],
	}, nil
}

func (m *MemoryPersistence) SaveConversations(_ context.Context, key domain.Key, convs []domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[key] = cloneConversations(convs)
	return nil
}

func (m *MemoryPersistence) SaveCurrent(_ context.Context, key domain.Key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		delete(m.current, key)
		return nil
	}
	m.current[key] = id
	return nil
}
