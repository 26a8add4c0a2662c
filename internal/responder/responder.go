package responder

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"hayat-support-backend/internal/domain"
)

// TemplateKey names one reply family; every key exists in every language.
type TemplateKey string

const (
	KeyEscalation          TemplateKey = "escalation"
	KeyNewlyDiagnosed      TemplateKey = "newly_diagnosed"
	KeyStress              TemplateKey = "stress"
	KeyEmotionalSupport    TemplateKey = "emotional_support"
	KeyEmotionalDependents TemplateKey = "emotional_dependents"
	KeySymptomInquiry      TemplateKey = "symptom_inquiry"
	KeyTreatmentQuestion   TemplateKey = "treatment_question"
	KeyFallbackQuestion    TemplateKey = "fallback_question"
	KeyFallbackStatement   TemplateKey = "fallback_statement"
	KeyCounselorQuestion   TemplateKey = "counselor_question"
	KeyCounselorStatement  TemplateKey = "counselor_statement"
)

// Keys lists every template key the tables must define.
func Keys() []TemplateKey {
	return []TemplateKey{
		KeyEscalation, KeyNewlyDiagnosed, KeyStress, KeyEmotionalSupport,
		KeyEmotionalDependents, KeySymptomInquiry, KeyTreatmentQuestion,
		KeyFallbackQuestion, KeyFallbackStatement, KeyCounselorQuestion, KeyCounselorStatement,
	}
}

// greetingCounselor is the greeting row used in counselor mode regardless of user type.
const greetingCounselor = "counselor"

var placeholders = []string{"symptom", "situation", "emotion", "treatment"}

type localized map[string]string

// Tables is the parsed reply document.
type Tables struct {
	Templates map[TemplateKey]localized `yaml:"templates"`
	Greetings map[string]localized      `yaml:"greetings"`
	Fillers   map[string]localized      `yaml:"fillers"`
	Notices   map[string]localized      `yaml:"notices"`
	Titles    map[string]localized      `yaml:"titles"`
}

//go:embed templates.yaml
var embedded []byte

var defaultTables = mustLoad(embedded)

func mustLoad(b []byte) *Tables {
	t, err := Load(b)
	if err != nil {
		panic(fmt.Sprintf("responder: embedded templates: %v", err))
	}
	return t
}

// Load parses a reply document and checks that every template, greeting,
// filler and notice exists in every language.
func Load(b []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.trim()
	return &t, nil
}

func (t *Tables) validate() error {
	var missing []string
	check := func(section, key string, row localized) {
		for _, lang := range domain.Languages() {
			if strings.TrimSpace(row[string(lang)]) == "" {
				missing = append(missing, fmt.Sprintf("%s.%s.%s", section, key, lang))
			}
		}
	}
	for _, k := range Keys() {
		check("templates", string(k), t.Templates[k])
	}
	for _, ut := range []string{string(domain.UserFighter), string(domain.UserSurvivor), string(domain.UserWellness), greetingCounselor} {
		check("greetings", ut, t.Greetings[ut])
	}
	for _, p := range placeholders {
		check("fillers", p, t.Fillers[p])
	}
	check("notices", "degraded", t.Notices["degraded"])
	check("titles", "default", t.Titles["default"])
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing entries: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *Tables) trim() {
	for _, section := range []map[string]localized{t.Greetings, t.Fillers, t.Notices, t.Titles} {
		for _, row := range section {
			row.trim()
		}
	}
	for _, row := range t.Templates {
		row.trim()
	}
}

func (l localized) trim() {
	for k, v := range l {
		l[k] = strings.TrimSpace(v)
	}
}

// TemplateFor picks the template key for an intent. Emergency escalation is
// universal; in counselor mode every other intent uses the counselor family.
func TemplateFor(in domain.Intent, mode domain.Mode, cues domain.Cues) TemplateKey {
	if in == domain.IntentEmergency {
		return KeyEscalation
	}
	if mode == domain.ModeCounselor {
		if cues.Question {
			return KeyCounselorQuestion
		}
		return KeyCounselorStatement
	}
	switch in {
	case domain.IntentNewlyDiagnosed:
		return KeyNewlyDiagnosed
	case domain.IntentStress:
		return KeyStress
	case domain.IntentEmotionalSupport:
		if cues.Dependents {
			return KeyEmotionalDependents
		}
		return KeyEmotionalSupport
	case domain.IntentSymptomInquiry:
		return KeySymptomInquiry
	case domain.IntentTreatmentQuestion:
		return KeyTreatmentQuestion
	}
	if cues.Question {
		return KeyFallbackQuestion
	}
	return KeyFallbackStatement
}

// Render produces the local reply for an intent with placeholders filled.
func Render(in domain.Intent, lang domain.Language, userName string, mode domain.Mode, cues domain.Cues) string {
	return defaultTables.Render(in, lang, userName, mode, cues)
}

func (t *Tables) Render(in domain.Intent, lang domain.Language, userName string, mode domain.Mode, cues domain.Cues) string {
	lang = domain.ParseLanguage(string(lang))
	key := TemplateFor(in, domain.ParseMode(string(mode)), cues)
	return t.fill(t.Templates[key][string(lang)], lang, userName)
}

// Escalation is the emergency reply. Every mode answers an emergency with it.
func Escalation(lang domain.Language, userName string) string {
	lang = domain.ParseLanguage(string(lang))
	return defaultTables.fill(defaultTables.Templates[KeyEscalation][string(lang)], lang, userName)
}

// Greeting is the first assistant message of a freshly seeded conversation.
func Greeting(userType domain.UserType, lang domain.Language, mode domain.Mode, userName string) string {
	return defaultTables.Greeting(userType, lang, mode, userName)
}

// GreetingFor adapts Greeting to a normalized chatbot context.
func GreetingFor(cctx domain.ChatbotContext) string {
	return defaultTables.Greeting(cctx.UserType, cctx.Language, cctx.Mode, cctx.UserName)
}

func (t *Tables) Greeting(userType domain.UserType, lang domain.Language, mode domain.Mode, userName string) string {
	lang = domain.ParseLanguage(string(lang))
	row := string(domain.ParseUserType(string(userType)))
	if domain.ParseMode(string(mode)) == domain.ModeCounselor {
		row = greetingCounselor
	}
	return t.fill(t.Greetings[row][string(lang)], lang, userName)
}

// DegradedNotice is the transient notice shown while replies come from the local engine.
func DegradedNotice(lang domain.Language) string {
	return defaultTables.Notices["degraded"][string(domain.ParseLanguage(string(lang)))]
}

// DefaultTitle is the title given to conversations before the user names them.
func DefaultTitle(lang domain.Language) string {
	return defaultTables.Titles["default"][string(domain.ParseLanguage(string(lang)))]
}

// IsDefaultTitle reports whether title is the untouched default in any language.
func IsDefaultTitle(title string) bool {
	for _, v := range defaultTables.Titles["default"] {
		if v == title {
			return true
		}
	}
	return false
}

func (t *Tables) fill(text string, lang domain.Language, userName string) string {
	pairs := []string{"[name]", domain.DisplayName(userName, lang)}
	for _, p := range placeholders {
		pairs = append(pairs, "["+p+"]", t.Fillers[p][string(lang)])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
