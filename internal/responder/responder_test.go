package responder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hayat-support-backend/internal/domain"
)

func TestEmbeddedTablesAreComplete(t *testing.T) {
	tables, err := Load(embedded)
	require.NoError(t, err)
	for _, k := range Keys() {
		for _, lang := range domain.Languages() {
			assert.NotEmpty(t, tables.Templates[k][string(lang)], "%s/%s", k, lang)
		}
	}
}

func TestLoadRejectsMissingCombination(t *testing.T) {
	doc := strings.Replace(string(embedded), "  stress:\n    en: |", "  stress:\n    xx: |", 1)
	_, err := Load([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "templates.stress.en")
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load([]byte("templates: [1, 2"))
	assert.Error(t, err)
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Intent
		mode domain.Mode
		cues domain.Cues
		want TemplateKey
	}{
		{"emergency normal", domain.IntentEmergency, domain.ModeNormal, domain.Cues{}, KeyEscalation},
		{"emergency counselor", domain.IntentEmergency, domain.ModeCounselor, domain.Cues{}, KeyEscalation},
		{"dependents branch", domain.IntentEmotionalSupport, domain.ModeNormal, domain.Cues{Dependents: true}, KeyEmotionalDependents},
		{"generic emotional", domain.IntentEmotionalSupport, domain.ModeNormal, domain.Cues{}, KeyEmotionalSupport},
		{"dependents ignored elsewhere", domain.IntentStress, domain.ModeNormal, domain.Cues{Dependents: true}, KeyStress},
		{"treatment", domain.IntentTreatmentQuestion, domain.ModeNormal, domain.Cues{Question: true}, KeyTreatmentQuestion},
		{"counselor overrides treatment", domain.IntentTreatmentQuestion, domain.ModeCounselor, domain.Cues{Question: true}, KeyCounselorQuestion},
		{"counselor statement", domain.IntentNewlyDiagnosed, domain.ModeCounselor, domain.Cues{}, KeyCounselorStatement},
		{"fallback question", domain.IntentFallback, domain.ModeNormal, domain.Cues{Question: true}, KeyFallbackQuestion},
		{"fallback statement", domain.IntentFallback, domain.ModeNormal, domain.Cues{}, KeyFallbackStatement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TemplateFor(tt.in, tt.mode, tt.cues))
		})
	}
}

func TestRenderFillsPlaceholders(t *testing.T) {
	for _, k := range Keys() {
		for _, lang := range domain.Languages() {
			out := defaultTables.fill(defaultTables.Templates[k][string(lang)], lang, "Sara")
			assert.NotContains(t, out, "[", "%s/%s left a placeholder", k, lang)
		}
	}

	out := Render(domain.IntentSymptomInquiry, domain.LangEnglish, "Sara", domain.ModeNormal, domain.Cues{})
	assert.Contains(t, out, "Sara")
	assert.Contains(t, out, "what you have noticed")
}

func TestRenderDependentsScenario(t *testing.T) {
	out := Render(domain.IntentEmotionalSupport, domain.LangEnglish, "Mona", domain.ModeNormal, domain.Cues{Dependents: true})
	assert.Contains(t, out, "your children")
	assert.NotEqual(t, Render(domain.IntentEmotionalSupport, domain.LangEnglish, "Mona", domain.ModeNormal, domain.Cues{}), out)
}

func TestRenderEscalationArabic(t *testing.T) {
	out := Render(domain.IntentEmergency, domain.LangArabic, "", domain.ModeCounselor, domain.Cues{})
	assert.Contains(t, out, "الطوارئ")
	assert.Contains(t, out, domain.DefaultName(domain.LangArabic))
}

func TestGreeting(t *testing.T) {
	fighter := Greeting(domain.UserFighter, domain.LangEnglish, domain.ModeNormal, "Huda")
	survivor := Greeting(domain.UserSurvivor, domain.LangEnglish, domain.ModeNormal, "Huda")
	counselor := Greeting(domain.UserFighter, domain.LangEnglish, domain.ModeCounselor, "Huda")
	assert.Contains(t, fighter, "Huda")
	assert.NotEqual(t, fighter, survivor)
	assert.NotEqual(t, fighter, counselor)
	assert.Equal(t, counselor, Greeting(domain.UserWellness, domain.LangEnglish, domain.ModeCounselor, "Huda"))

	assert.Contains(t, Greeting("unknown", "xx", "", ""), "friend")
	assert.Contains(t, Greeting(domain.UserSurvivor, domain.LangArabic, domain.ModeNormal, "هدى"), "هدى")
}

func TestNoticesAndTitles(t *testing.T) {
	assert.NotEmpty(t, DegradedNotice(domain.LangEnglish))
	assert.NotEqual(t, DegradedNotice(domain.LangEnglish), DegradedNotice(domain.LangArabic))
	assert.Equal(t, "New conversation", DefaultTitle(domain.LangEnglish))
	assert.True(t, IsDefaultTitle(DefaultTitle(domain.LangArabic)))
	assert.False(t, IsDefaultTitle("My chemo questions"))
}

func TestGreetingForContext(t *testing.T) {
	cctx := domain.ChatbotContext{UserName: "Huda", UserType: domain.UserSurvivor, Language: domain.LangArabic, Mode: domain.ModeNormal}
	assert.Equal(t, Greeting(domain.UserSurvivor, domain.LangArabic, domain.ModeNormal, "Huda"), GreetingFor(cctx))
}

func TestEscalationMatchesEmergencyRender(t *testing.T) {
	for _, lang := range domain.Languages() {
		for _, mode := range []domain.Mode{domain.ModeNormal, domain.ModeCounselor} {
			assert.Equal(t, Escalation(lang, "Sara"), Render(domain.IntentEmergency, lang, "Sara", mode, domain.Cues{Question: true}))
		}
	}
}

func TestRenderNameCannotInjectPlaceholders(t *testing.T) {
	out := Render(domain.IntentFallback, domain.LangEnglish, "[symptom] [name]", domain.ModeNormal, domain.Cues{})
	assert.NotContains(t, out, "[")
	assert.Contains(t, out, "symptom name")
}
