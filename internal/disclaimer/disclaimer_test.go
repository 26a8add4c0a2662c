package disclaimer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hayat-support-backend/internal/domain"
)

func TestNeedsDisclaimer(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"When is my next MAMMOGRAM?", true},
		{"I finished chemo last month", true},
		{"what stage is it", true},
		{"متى موعد العلاج الكيماوي", true},
		{"هل الورم خطير", true},
		{"أخاف من الخزعة", true},
		{"عندي موعد ماموجرام", true},
		{"I feel lonely today", false},
		{"أشعر بالوحدة", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsDisclaimer(tt.message), tt.message)
	}
}

func TestFormatNormalizesMarkup(t *testing.T) {
	in := "##Heading   \n\n\n\n- first item  \n* second item\n  - nested\n•third\nKeep **bold** as is\n\n\n"
	want := "## Heading\n\n• first item\n• second item\n  • nested\n• third\nKeep **bold** as is"
	assert.Equal(t, want, Format(in, false, "Reem", domain.LangEnglish))
}

func TestFormatLeavesBoldLeadAlone(t *testing.T) {
	assert.Equal(t, "**Important:** rest", Format("**Important:** rest", false, "", domain.LangEnglish))
}

func TestFormatFillsName(t *testing.T) {
	assert.Equal(t, "Hello Reem", Format("Hello [name]", false, "Reem", domain.LangEnglish))
	assert.Equal(t, "Hello friend", Format("Hello [name]", false, "  ", domain.LangEnglish))
	assert.Equal(t, "مرحباً عزيزتي", Format("مرحباً [name]", false, "", domain.LangArabic))
}

func TestFormatIdempotentWithPlaceholderInName(t *testing.T) {
	for _, name := range []string{"[name] A", "[[name]]", "[name]"} {
		once := Format("Hello [name]", false, name, domain.LangEnglish)
		assert.Equal(t, once, Format(once, false, name, domain.LangEnglish), "name %q", name)
		assert.NotContains(t, once, "[name]")
	}
	assert.Equal(t, "Hello name A", Format("Hello [name]", false, "[name] A", domain.LangEnglish))
	assert.Equal(t, "Hello friend", Format("Hello [name]", false, "[]", domain.LangEnglish))
}

func TestFormatAppendsDisclaimerOnce(t *testing.T) {
	for _, lang := range domain.Languages() {
		once := Format("Some reply", true, "Reem", lang)
		assert.True(t, strings.HasSuffix(once, "\n\n"+Text(lang)), lang)
		twice := Format(once, true, "Reem", lang)
		assert.Equal(t, once, twice)
		assert.Equal(t, 1, strings.Count(twice, Text(lang)))
	}
	assert.Equal(t, Text(domain.LangEnglish), Format("", true, "", "xx"))
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"# h\n- a\n- b\n\n\n\ntext   ",
		"**bold** line\r\n* star\r\n\r\n###Three",
		"•\n• \n-\n#\n",
		"مرحباً [name]\n- نقطة أولى\n\n\n- نقطة ثانية",
	}
	for _, in := range inputs {
		for _, lang := range domain.Languages() {
			once := Format(in, false, "Reem", lang)
			assert.Equal(t, once, Format(once, false, "Reem", lang), "input %q", in)
		}
	}
}

func TestFormatWithDisclaimerStableUnderReformat(t *testing.T) {
	out := Format("- take care", true, "Reem", domain.LangArabic)
	assert.Equal(t, out, Format(out, false, "Reem", domain.LangArabic))
	assert.Contains(t, out, "• take care")
}
