package intent

import (
	"strings"
	"unicode"

	"hayat-support-backend/internal/domain"
)

// Analysis is everything the local reply path needs to know about a message.
type Analysis struct {
	Intent   domain.Intent
	Language domain.Language
	Cues     domain.Cues
}

type compiledSet struct {
	intent  domain.Intent
	phrases []string
}

var (
	compiledRules      = compileRules(rules)
	compiledDependents = compile(dependents)
)

func compileRules(sets []keywordSet) []compiledSet {
	out := make([]compiledSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, compile(s))
	}
	return out
}

func compile(s keywordSet) compiledSet {
	c := compiledSet{intent: s.intent}
	for _, p := range s.english {
		c.phrases = append(c.phrases, Normalize(p))
	}
	for _, p := range s.arabic {
		c.phrases = append(c.phrases, Normalize(p))
	}
	return c
}

// Classify returns the highest-priority intent whose keywords occur in the
// message. Lower-priority sets are not evaluated once one matches.
func Classify(message string) domain.Intent {
	m := Normalize(message)
	if m == "" {
		return domain.IntentFallback
	}
	for _, r := range compiledRules {
		if containsAny(m, r.phrases) {
			return r.intent
		}
	}
	return domain.IntentFallback
}

// Analyze classifies the message and derives its reply language and cues.
// fallback is used only when the message carries no language signal.
func Analyze(message string, fallback domain.Language) Analysis {
	m := Normalize(message)
	return Analysis{
		Intent:   Classify(message),
		Language: DetectLanguage(message, fallback),
		Cues: domain.Cues{
			Dependents: containsAny(m, compiledDependents.phrases),
			Question:   isQuestion(m),
		},
	}
}

// DetectLanguage reports Arabic when any Arabic-script rune is present and
// English when any Latin letter is. Otherwise the stored preference wins.
func DetectLanguage(message string, fallback domain.Language) domain.Language {
	latin := false
	for _, r := range message {
		if isArabic(r) {
			return domain.LangArabic
		}
		if !latin && unicode.Is(unicode.Latin, r) {
			latin = true
		}
	}
	if latin {
		return domain.LangEnglish
	}
	if !fallback.Valid() {
		return domain.LangEnglish
	}
	return fallback
}

// MentionsDependents reports whether the message refers to children or family.
func MentionsDependents(message string) bool {
	return containsAny(Normalize(message), compiledDependents.phrases)
}

// IsQuestion reports whether the message reads as a question.
func IsQuestion(message string) bool {
	return isQuestion(Normalize(message))
}

func isQuestion(normalized string) bool {
	if containsAny(normalized, questionMarks) {
		return true
	}
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		if questionWords[w] {
			return true
		}
		if i == 0 && questionLeads[w] {
			return true
		}
	}
	return false
}

func isArabic(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF,
		r >= 0x0750 && r <= 0x077F,
		r >= 0x08A0 && r <= 0x08FF,
		r >= 0xFB50 && r <= 0xFDFF,
		r >= 0xFE70 && r <= 0xFEFF:
		return true
	}
	return false
}

// Normalize lowercases Latin text and folds common Arabic spelling variants:
// diacritics and tatweel are dropped, hamza-carrying alefs become bare alef,
// alef maqsura becomes ya and taa marbuta becomes ha. Runs of whitespace
// collapse to one space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r == 'ـ', r >= 0x064B && r <= 0x0652, r == 0x0670:
			continue
		case r == 'أ', r == 'إ', r == 'آ', r == 'ٱ':
			r = 'ا'
		case r == 'ى':
			r = 'ي'
		case r == 'ة':
			r = 'ه'
		case r == '’', r == '‘':
			r = '\''
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
