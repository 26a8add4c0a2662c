package domain

import (
	"strings"
	"time"
)

type UserType string

const (
	UserFighter  UserType = "fighter"
	UserSurvivor UserType = "survivor"
	UserWellness UserType = "wellness"
)

// ParseUserType maps anything unrecognised to wellness.
func ParseUserType(s string) UserType {
	switch UserType(strings.ToLower(strings.TrimSpace(s))) {
	case UserFighter:
		return UserFighter
	case UserSurvivor:
		return UserSurvivor
	default:
		return UserWellness
	}
}

func (u UserType) Valid() bool {
	return u == UserFighter || u == UserSurvivor || u == UserWellness
}

type Language string

const (
	LangArabic  Language = "ar"
	LangEnglish Language = "en"
)

// ParseLanguage maps anything unrecognised to English.
func ParseLanguage(s string) Language {
	if Language(strings.ToLower(strings.TrimSpace(s))) == LangArabic {
		return LangArabic
	}
	return LangEnglish
}

func (l Language) Valid() bool { return l == LangArabic || l == LangEnglish }

// Languages lists every supported reply language.
func Languages() []Language { return []Language{LangArabic, LangEnglish} }

type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeCounselor Mode = "counselor"
)

// ParseMode maps anything unrecognised to the normal companion mode.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeCounselor {
		return ModeCounselor
	}
	return ModeNormal
}

func (m Mode) Valid() bool { return m == ModeNormal || m == ModeCounselor }

// ChatbotContext carries the user attributes a system prompt is built from.
// It is rebuilt from the current user state on every turn.
type ChatbotContext struct {
	UserName    string
	UserType    UserType
	Language    Language
	Mode        Mode
	CurrentDate string
}

// Normalize returns a copy with safe defaults in place of missing or unknown
// attributes. Persona generation must always succeed.
func (c ChatbotContext) Normalize() ChatbotContext {
	if !c.UserType.Valid() {
		c.UserType = ParseUserType(string(c.UserType))
	}
	if !c.Language.Valid() {
		c.Language = ParseLanguage(string(c.Language))
	}
	if !c.Mode.Valid() {
		c.Mode = ParseMode(string(c.Mode))
	}
	c.UserName = DisplayName(c.UserName, c.Language)
	c.CurrentDate = strings.TrimSpace(c.CurrentDate)
	if c.CurrentDate == "" {
		if c.Language == LangArabic {
			c.CurrentDate = "غير محدد"
		} else {
			c.CurrentDate = "unknown"
		}
	}
	return c
}

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// DisplayName is the name text replies address the user by. Square brackets
// are dropped so a name can never contain a template placeholder.
func DisplayName(userName string, lang Language) string {
	name := strings.TrimSpace(bracketStripper.Replace(userName))
	if name == "" {
		return DefaultName(lang)
	}
	return name
}

// DefaultName is the neutral form of address used when no name is known.
func DefaultName(lang Language) string {
	if lang == LangArabic {
		return "عزيزتي"
	}
	return "friend"
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is immutable once appended. IDs increase monotonically within
// a conversation; insertion order is the only ordering guarantee.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conversation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Messages  []ChatMessage `json:"messages"`
}

// Clone returns a deep copy so callers never share message slices with the store.
func (c Conversation) Clone() Conversation {
	c.Messages = append([]ChatMessage(nil), c.Messages...)
	return c
}

// NextMessageID returns the id the next appended message should carry.
func (c Conversation) NextMessageID() int64 {
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].ID + 1
	}
	return 1
}

// Key identifies one conversation index: a user in one assistant mode.
type Key struct {
	UserID string
	Mode   Mode
}

func (k Key) String() string { return k.UserID + "/" + string(k.Mode) }

// Cues are message features that pick a sub-branch of a template family.
type Cues struct {
	// Dependents is set when the message mentions children or family.
	Dependents bool
	// Question is set when the message reads as a question.
	Question bool
}

// DispatchResult is what a turn hands back to the caller. Degraded asks the
// caller to surface Notice transiently; it is never stored with the message.
type DispatchResult struct {
	Text           string
	Degraded       bool
	Notice         string
	Intent         Intent
	ConversationID string
}
