package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"hayat-support-backend/internal/domain"
)

// FilePersistence stores one JSON document per key under dir.
type FilePersistence struct {
	dir string
	mu  sync.Mutex
}

func NewFilePersistence(dir string) *FilePersistence {
	return &FilePersistence{dir: dir}
}

func (f *FilePersistence) path(key domain.Key) string {
	return filepath.Join(f.dir, string(key.Mode), url.PathEscape(key.UserID)+".json")
}

func (f *FilePersistence) LoadIndex(_ context.Context, key domain.Key) (domain.Index, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(key)
}

func (f *FilePersistence) SaveConversations(_ context.Context, key domain.Key, convs []domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ix, err := f.read(key)
	if err != nil {
		return err
	}
	ix.Conversations = convs
	return f.write(key, ix)
}

func (f *FilePersistence) SaveCurrent(_ context.Context, key domain.Key, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ix, err := f.read(key)
	if err != nil {
		return err
	}
	ix.CurrentID = id
	return f.write(key, ix)
}

func (f *FilePersistence) read(key domain.Key) (domain.Index, error) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Index{}, nil
		}
		return domain.Index{}, err
	}
	var ix domain.Index
	if err := json.Unmarshal(b, &ix); err != nil {
		return domain.Index{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return ix, nil
}

func (f *FilePersistence) write(key domain.Key, ix domain.Index) error {
	p := f.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return err
	}
	// Conversations are private; keep the file owner-only.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}
