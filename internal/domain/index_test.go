package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPrependSetsCurrent(t *testing.T) {
	ix := Index{}
	ix = ix.Prepend(Conversation{ID: "a"})
	ix = ix.Prepend(Conversation{ID: "b"})

	require.Len(t, ix.Conversations, 2)
	assert.Equal(t, "b", ix.Conversations[0].ID)
	assert.Equal(t, "b", ix.CurrentID)
	assert.True(t, ix.Valid())
}

func TestIndexWithoutMovesPointer(t *testing.T) {
	ix := Index{}.Prepend(Conversation{ID: "a"}).Prepend(Conversation{ID: "b"})

	out, ok := ix.Without("b")
	require.True(t, ok)
	assert.Equal(t, "a", out.CurrentID)
	assert.Len(t, ix.Conversations, 2, "receiver must not change")

	out, ok = out.Without("a")
	require.True(t, ok)
	assert.True(t, out.Empty())
	assert.Equal(t, "", out.CurrentID)
	assert.True(t, out.Valid())

	_, ok = ix.Without("missing")
	assert.False(t, ok)
}

func TestIndexWithoutKeepsPointerForOtherConversation(t *testing.T) {
	ix := Index{}.Prepend(Conversation{ID: "a"}).Prepend(Conversation{ID: "b"})
	out, ok := ix.Without("a")
	require.True(t, ok)
	assert.Equal(t, "b", out.CurrentID)
}

func TestIndexWithCurrentIgnoresUnknown(t *testing.T) {
	ix := Index{}.Prepend(Conversation{ID: "a"}).Prepend(Conversation{ID: "b"})

	out, ok := ix.WithCurrent("zzz")
	assert.False(t, ok)
	assert.Equal(t, "b", out.CurrentID)

	out, ok = ix.WithCurrent("a")
	assert.True(t, ok)
	assert.Equal(t, "a", out.CurrentID)
}

func TestIndexRepair(t *testing.T) {
	ix := Index{Conversations: []Conversation{{ID: "x"}, {ID: "y"}}, CurrentID: "gone"}
	assert.False(t, ix.Valid())
	assert.Equal(t, "x", ix.Repair().CurrentID)

	assert.Equal(t, "", Index{CurrentID: "dangling"}.Repair().CurrentID)
}

func TestNextMessageID(t *testing.T) {
	c := Conversation{}
	assert.Equal(t, int64(1), c.NextMessageID())
	c.Messages = append(c.Messages, ChatMessage{ID: 7})
	assert.Equal(t, int64(8), c.NextMessageID())
}

func TestNormalizeDefaults(t *testing.T) {
	got := ChatbotContext{UserType: "warrior", Language: "fr", Mode: "x"}.Normalize()
	assert.Equal(t, UserWellness, got.UserType)
	assert.Equal(t, LangEnglish, got.Language)
	assert.Equal(t, ModeNormal, got.Mode)
	assert.Equal(t, "friend", got.UserName)
	assert.Equal(t, "unknown", got.CurrentDate)

	ar := ChatbotContext{Language: LangArabic, UserType: UserFighter}.Normalize()
	assert.Equal(t, "عزيزتي", ar.UserName)
	assert.Equal(t, UserFighter, ar.UserType)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Reem", DisplayName("  Reem ", LangEnglish))
	assert.Equal(t, "name A", DisplayName("[name] A", LangEnglish))
	assert.Equal(t, "friend", DisplayName("[ ]", LangEnglish))
	assert.Equal(t, "عزيزتي", DisplayName("", LangArabic))

	got := ChatbotContext{UserName: "[name]"}.Normalize()
	assert.Equal(t, "name", got.UserName)
}

func TestIntentPriority(t *testing.T) {
	all := Intents()
	require.Len(t, all, 7)
	assert.Equal(t, IntentEmergency, all[0])
	assert.Equal(t, IntentFallback, all[6])
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Priority(), all[i].Priority())
	}
	assert.False(t, Intent("other").Valid())
}
