package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hayat-support-backend/internal/domain"
)

// GreetingFunc produces the first assistant message of a seeded conversation.
type GreetingFunc func(cctx domain.ChatbotContext) string

// TitleFunc produces the title of a conversation created without one.
type TitleFunc func(lang domain.Language) string

// Store serializes operations per key and writes every change through to
// persistence. An index stays cached only while an operation on its key is
// running or waiting; idle keys are reloaded from persistence.
type Store struct {
	persist Persistence
	greet   GreetingFunc
	title   TitleFunc
	now     func() time.Time
	newID   func() string
	log     *zap.Logger

	mu      sync.Mutex
	entries map[domain.Key]*entry
}

type entry struct {
	key    domain.Key
	mu     sync.Mutex
	refs   int
	loaded bool
	index  domain.Index
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

func WithTitles(f TitleFunc) Option { return func(s *Store) { s.title = f } }

func New(p Persistence, greet GreetingFunc, opts ...Option) *Store {
	s := &Store{
		persist: p,
		greet:   greet,
		title:   func(domain.Language) string { return "New conversation" },
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zap.NewNop(),
		entries: make(map[domain.Key]*entry),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lock returns the loaded entry for key with its mutex held.
func (s *Store) lock(ctx context.Context, key domain.Key) (*entry, error) {
	if key.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	key.Mode = domain.ParseMode(string(key.Mode))

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key}
		s.entries[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	if e.loaded {
		return e, nil
	}
	ix, err := s.persist.LoadIndex(ctx, key)
	if err != nil {
		s.unlock(e)
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ix.Valid() {
		s.log.Warn("repairing conversation pointer", zap.Stringer("key", key), zap.String("current", ix.CurrentID))
		ix = ix.Repair()
		if err := s.persist.SaveCurrent(ctx, key, ix.CurrentID); err != nil {
			s.log.Warn("failed to persist repaired pointer", zap.Stringer("key", key), zap.Error(err))
		}
	}
	e.index = ix
	e.loaded = true
	return e, nil
}

// unlock releases e and forgets it once no operation holds or awaits it.
func (s *Store) unlock(e *entry) {
	e.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.refs == 0 && s.entries[e.key] == e {
		delete(s.entries, e.key)
	}
}

func (s *Store) cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func normKey(key domain.Key) domain.Key {
	key.Mode = domain.ParseMode(string(key.Mode))
	return key
}

// EnsureSeeded creates a conversation holding one greeting when the key has
// none. Calling it again is a no-op.
func (s *Store) EnsureSeeded(ctx context.Context, key domain.Key, cctx domain.ChatbotContext) (domain.Index, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Index{}, err
	}
	defer s.unlock(e)

	if e.index.Empty() {
		if err := s.seedLocked(ctx, normKey(key), e, cctx); err != nil {
			return domain.Index{}, err
		}
	}
	return cloneIndex(e.index), nil
}

func (s *Store) seedLocked(ctx context.Context, key domain.Key, e *entry, cctx domain.ChatbotContext) error {
	cctx = cctx.Normalize()
	now := s.now()
	c := domain.Conversation{
		ID:        s.newID(),
		Title:     s.title(cctx.Language),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.greet != nil {
		if text := s.greet(cctx); text != "" {
			c.Messages = []domain.ChatMessage{{ID: 1, Role: domain.RoleAssistant, Content: text, CreatedAt: now}}
		}
	}
	return s.commit(ctx, key, e, e.index.Prepend(c), true)
}

// commit persists next and installs it. The list is written before the
// pointer so a crash never leaves the pointer ahead of the list.
func (s *Store) commit(ctx context.Context, key domain.Key, e *entry, next domain.Index, listChanged bool) error {
	if listChanged {
		if err := s.persist.SaveConversations(ctx, key, next.Conversations); err != nil {
			return fmt.Errorf("save conversations %s: %w", key, err)
		}
	}
	if next.CurrentID != e.index.CurrentID {
		if err := s.persist.SaveCurrent(ctx, key, next.CurrentID); err != nil {
			return fmt.Errorf("save current %s: %w", key, err)
		}
	}
	e.index = next
	return nil
}

// List returns the conversations, most recently created first.
func (s *Store) List(ctx context.Context, key domain.Key) ([]domain.Conversation, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.unlock(e)
	return cloneConversations(e.index.Conversations), nil
}

// Index returns a copy of the whole index for key.
func (s *Store) Index(ctx context.Context, key domain.Key) (domain.Index, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Index{}, err
	}
	defer s.unlock(e)
	return cloneIndex(e.index), nil
}

func (s *Store) Current(ctx context.Context, key domain.Key) (domain.Conversation, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer s.unlock(e)
	c, ok := e.index.Current()
	if !ok {
		return domain.Conversation{}, domain.NotFound(e.index.CurrentID)
	}
	return c.Clone(), nil
}

func (s *Store) Get(ctx context.Context, key domain.Key, id string) (domain.Conversation, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer s.unlock(e)
	i := e.index.Find(id)
	if i < 0 {
		return domain.Conversation{}, domain.NotFound(id)
	}
	return e.index.Conversations[i].Clone(), nil
}

// Create prepends an empty conversation and makes it current. A blank title
// gets the localized default.
func (s *Store) Create(ctx context.Context, key domain.Key, title string, lang domain.Language) (domain.Conversation, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer s.unlock(e)

	title = strings.TrimSpace(title)
	if title == "" {
		title = s.title(domain.ParseLanguage(string(lang)))
	}
	now := s.now()
	c := domain.Conversation{ID: s.newID(), Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.commit(ctx, normKey(key), e, e.index.Prepend(c), true); err != nil {
		return domain.Conversation{}, err
	}
	return c.Clone(), nil
}

// SwitchTo moves the current pointer. An unknown id is ignored and reported
// as false.
func (s *Store) SwitchTo(ctx context.Context, key domain.Key, id string) (bool, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return false, err
	}
	defer s.unlock(e)

	next, ok := e.index.WithCurrent(id)
	if !ok {
		return false, nil
	}
	if next.CurrentID == e.index.CurrentID {
		return true, nil
	}
	if err := s.commit(ctx, normKey(key), e, next, false); err != nil {
		return false, err
	}
	return true, nil
}

// Append adds a message to the named conversation. It fails with
// ErrConversationNotFound when the conversation has been removed.
func (s *Store) Append(ctx context.Context, key domain.Key, id string, role domain.Role, content string) (domain.ChatMessage, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	defer s.unlock(e)

	i := e.index.Find(id)
	if i < 0 {
		return domain.ChatMessage{}, domain.NotFound(id)
	}
	c := e.index.Conversations[i].Clone()
	now := s.now()
	msg := domain.ChatMessage{ID: c.NextMessageID(), Role: role, Content: content, CreatedAt: now}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = now

	next, _ := e.index.Replace(c)
	if err := s.commit(ctx, normKey(key), e, next, true); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}

// Rename changes a conversation title.
func (s *Store) Rename(ctx context.Context, key domain.Key, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	e, err := s.lock(ctx, key)
	if err != nil {
		return err
	}
	defer s.unlock(e)

	i := e.index.Find(id)
	if i < 0 {
		return domain.NotFound(id)
	}
	c := e.index.Conversations[i].Clone()
	if c.Title == title {
		return nil
	}
	c.Title = title
	next, _ := e.index.Replace(c)
	return s.commit(ctx, normKey(key), e, next, true)
}

// Remove deletes a conversation. When it was current the first remaining
// conversation takes over, and when none remain a fresh greeting
// conversation is seeded from cctx.
func (s *Store) Remove(ctx context.Context, key domain.Key, id string, cctx domain.ChatbotContext) (domain.Index, error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return domain.Index{}, err
	}
	defer s.unlock(e)

	key = normKey(key)
	next, ok := e.index.Without(id)
	if !ok {
		return domain.Index{}, domain.NotFound(id)
	}
	if err := s.commit(ctx, key, e, next, true); err != nil {
		return domain.Index{}, err
	}
	if e.index.Empty() {
		if err := s.seedLocked(ctx, key, e, cctx); err != nil {
			return domain.Index{}, err
		}
	}
	return cloneIndex(e.index), nil
}

func cloneIndex(ix domain.Index) domain.Index {
	return domain.Index{Conversations: cloneConversations(ix.Conversations), CurrentID: ix.CurrentID}
}
