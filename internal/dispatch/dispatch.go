package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"hayat-support-backend/internal/disclaimer"
	"hayat-support-backend/internal/domain"
	"hayat-support-backend/internal/intent"
	"hayat-support-backend/internal/persona"
	"hayat-support-backend/internal/provider"
	"hayat-support-backend/internal/responder"
)

const (
	DefaultHistoryWindow = 10
	DefaultRemoteTimeout = 20 * time.Second

	titleMaxRunes = 48
)

// Store is the part of the conversation store a turn needs.
type Store interface {
	Current(ctx context.Context, key domain.Key) (domain.Conversation, error)
	Get(ctx context.Context, key domain.Key, id string) (domain.Conversation, error)
	Append(ctx context.Context, key domain.Key, id string, role domain.Role, content string) (domain.ChatMessage, error)
	Rename(ctx context.Context, key domain.Key, id, title string) error
}

// Profile is the stored user state a turn is personalized with. Language is
// the preferred UI language; replies follow the message's own language.
type Profile struct {
	UserName string
	UserType domain.UserType
	Language domain.Language
}

type TurnInput struct {
	Key domain.Key
	// ConversationID selects the conversation; empty means the current one.
	ConversationID string
	Message        string
	Profile        Profile
}

type Coordinator struct {
	store    Store
	provider provider.Provider
	log      *zap.Logger
	now      func() time.Time
	window   int
	timeout  time.Duration
	turns    *turnQueue
}

type Option func(*Coordinator)

func WithHistoryWindow(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.window = n
		}
	}
}

func WithRemoteTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

func WithLogger(l *zap.Logger) Option { return func(c *Coordinator) { c.log = l } }

func New(s Store, p provider.Provider, opts ...Option) *Coordinator {
	if p == nil {
		p = provider.Offline{}
	}
	c := &Coordinator{
		store:    s,
		provider: p,
		log:      zap.NewNop(),
		now:      time.Now,
		window:   DefaultHistoryWindow,
		timeout:  DefaultRemoteTimeout,
		turns:    newTurnQueue(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// remoteResult is the outcome of the remote call. A non-nil err selects
// the local branch.
type remoteResult struct {
	reply provider.Reply
	err   error
}

func (r remoteResult) usable() bool {
	return r.err == nil && strings.TrimSpace(r.reply.Text) != ""
}

// HandleTurn runs one user turn: the message is appended, a reply is
// produced remotely or locally, and the reply is appended. A reply is
// always produced unless the conversation is gone or ctx ends first. The
// user message is never rolled back.
func (c *Coordinator) HandleTurn(ctx context.Context, in TurnInput) (domain.DispatchResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return domain.DispatchResult{}, domain.ErrEmptyMessage
	}
	key := domain.Key{UserID: in.Key.UserID, Mode: domain.ParseMode(string(in.Key.Mode))}

	convID := in.ConversationID
	if convID == "" {
		cur, err := c.store.Current(ctx, key)
		if err != nil {
			return domain.DispatchResult{}, err
		}
		convID = cur.ID
	}

	release, err := c.turns.acquire(ctx, key.String()+"/"+convID)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	defer release()

	started := c.now()
	before, err := c.store.Get(ctx, key, convID)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	if _, err := c.store.Append(ctx, key, convID, domain.RoleUser, message); err != nil {
		return domain.DispatchResult{}, err
	}

	preferred := domain.ParseLanguage(string(in.Profile.Language))
	cctx := domain.ChatbotContext{
		UserName:    in.Profile.UserName,
		UserType:    in.Profile.UserType,
		Language:    intent.DetectLanguage(message, preferred),
		Mode:        key.Mode,
		CurrentDate: started.Format("2006-01-02"),
	}.Normalize()

	req := provider.Request{
		Prompt:  message,
		System:  persona.BuildSystemPrompt(cctx),
		History: provider.HistoryFrom(window(before.Messages, c.window)),
		Mode:    key.Mode,
	}
	rr := c.callRemote(ctx, req)
	if err := ctx.Err(); err != nil {
		c.log.Info("turn abandoned", zap.Stringer("key", key), zap.String("conversation", convID), zap.Error(err))
		return domain.DispatchResult{}, err
	}

	var (
		text     string
		degraded bool
	)
	if rr.usable() {
		text = disclaimer.Format(rr.reply.Text, disclaimer.NeedsDisclaimer(message), cctx.UserName, cctx.Language)
		degraded = rr.reply.Fallback
	} else {
		text = LocalReply(message, preferred, cctx.UserName, key.Mode)
		degraded = true
		cause := rr.err
		if cause == nil {
			cause = domain.ErrRemoteEmptyResponse
		}
		c.log.Warn("remote reply unavailable, answering locally",
			zap.String("provider", c.provider.Name()),
			zap.Stringer("key", key),
			zap.String("conversation", convID),
			zap.Error(cause),
		)
	}

	if _, err := c.store.Append(ctx, key, convID, domain.RoleAssistant, text); err != nil {
		return domain.DispatchResult{}, err
	}
	c.autoTitle(ctx, key, before, message)

	result := domain.DispatchResult{
		Text:           text,
		Degraded:       degraded,
		Intent:         intent.Classify(message),
		ConversationID: convID,
	}
	if degraded {
		result.Notice = responder.DegradedNotice(preferred)
	}
	c.log.Debug("turn handled",
		zap.Stringer("key", key),
		zap.String("conversation", convID),
		zap.String("intent", string(result.Intent)),
		zap.String("language", string(cctx.Language)),
		zap.Bool("degraded", degraded),
		zap.Duration("elapsed", c.now().Sub(started)),
	)
	return result, nil
}

func (c *Coordinator) callRemote(ctx context.Context, req provider.Request) remoteResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	reply, err := c.provider.Generate(ctx, req)
	if err != nil && !domain.IsRemoteFailure(err) {
		err = fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	return remoteResult{reply: reply, err: err}
}

// autoTitle names a conversation after its first user message while it still
// carries the default title. Failures are logged only.
func (c *Coordinator) autoTitle(ctx context.Context, key domain.Key, before domain.Conversation, message string) {
	if !responder.IsDefaultTitle(before.Title) {
		return
	}
	for _, m := range before.Messages {
		if m.Role == domain.RoleUser {
			return
		}
	}
	title := TitleFrom(message)
	if title == "" {
		return
	}
	if err := c.store.Rename(ctx, key, before.ID, title); err != nil {
		c.log.Warn("auto-title failed", zap.String("conversation", before.ID), zap.Error(err))
	}
}

// LocalReply is the offline reply pipeline: classify, render, format. An
// emergency message always yields the escalation text.
func LocalReply(message string, fallback domain.Language, userName string, mode domain.Mode) string {
	a := intent.Analyze(message, fallback)
	text := responder.Render(a.Intent, a.Language, userName, mode, a.Cues)
	return disclaimer.Format(text, disclaimer.NeedsDisclaimer(message), userName, a.Language)
}

// TitleFrom derives a short conversation title from a message.
func TitleFrom(message string) string {
	line := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(line) <= titleMaxRunes {
		return line
	}
	runes := []rune(line)[:titleMaxRunes]
	return strings.TrimSpace(string(runes)) + "…"
}

// window returns the last n messages, oldest first.
func window(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]domain.ChatMessage(nil), msgs...)
}
