package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hayat-support-backend/internal/domain"
)

func TestBuildSystemPromptNormalMode(t *testing.T) {
	p := BuildSystemPrompt(domain.ChatbotContext{
		UserName:    "Noura",
		UserType:    domain.UserFighter,
		Language:    domain.LangEnglish,
		Mode:        domain.ModeNormal,
		CurrentDate: "2026-10-19",
	})

	assert.Contains(t, p, "warm and knowledgeable companion")
	assert.NotContains(t, p, "counselor mode")
	assert.Contains(t, p, "currently in treatment (fighter)")
	assert.NotContains(t, p, "(survivor)")
	assert.Contains(t, p, "Safety guidelines:")
	assert.Contains(t, p, "Reply ONLY in English")
	assert.Contains(t, p, "- User name: Noura")
	assert.Contains(t, p, "- Current date: 2026-10-19")
	assert.Contains(t, p, "- Language: English")
}

func TestBuildSystemPromptCounselorMode(t *testing.T) {
	p := BuildSystemPrompt(domain.ChatbotContext{
		UserName: "Noura",
		UserType: domain.UserSurvivor,
		Language: domain.LangArabic,
		Mode:     domain.ModeCounselor,
	})

	assert.Contains(t, p, "counselor mode")
	assert.NotContains(t, p, "warm and knowledgeable companion")
	assert.NotContains(t, p, "User profile:")
	assert.NotContains(t, p, "Safety guidelines:")
	assert.Contains(t, p, "Reply ONLY in Arabic")
	assert.Contains(t, p, "- Language: Arabic")
	assert.Contains(t, p, "- Current date: غير محدد")
}

func TestBuildSystemPromptMalformedContext(t *testing.T) {
	p := BuildSystemPrompt(domain.ChatbotContext{UserType: "astronaut", Language: "fr", Mode: "party"})

	assert.Contains(t, p, "(wellness)")
	assert.Contains(t, p, "Reply ONLY in English")
	assert.Contains(t, p, "- User name: friend")
	assert.Contains(t, p, "- Mode: normal")
	assert.Contains(t, p, "- Current date: unknown")
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	ctx := domain.ChatbotContext{UserName: "Lama", UserType: domain.UserWellness, Language: domain.LangArabic}
	first := BuildSystemPrompt(ctx)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, BuildSystemPrompt(ctx))
	}
	assert.False(t, strings.HasPrefix(first, "\n"))
	assert.Contains(t, first, `"• "`)
}
