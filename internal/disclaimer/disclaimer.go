package disclaimer

import (
	"strings"

	"hayat-support-backend/internal/domain"
	"hayat-support-backend/internal/intent"
)

// Medical topics that call for the disclaimer. The scan runs over the user's
// own message and is independent of intent classification.
var englishTopics = []string{
	"diagnosis", "diagnosed", "cancer", "tumor", "tumour", "treatment", "medication",
	"medicine", "mammogram", "biopsy", "stage", "chemo", "radiation", "radiotherapy",
	"surgery", "mastectomy", "oncologist", "tamoxifen", "hormone therapy", "dose",
	"scan", "lump", "symptom", "metasta",
}

var arabicTopics = []string{
	"تشخيص", "سرطان", "ورم", "أورام", "علاج", "دواء", "أدوية", "ماموغرام", "ماموجرام",
	"خزعة", "مرحلة", "كيماوي", "كيميائي", "إشعاعي", "أشعة", "جراحة", "عملية",
	"استئصال", "كتلة", "جرعة", "أعراض", "انتشار",
}

var topics = compileTopics()

func compileTopics() []string {
	out := make([]string, 0, len(englishTopics)+len(arabicTopics))
	for _, t := range append(append([]string{}, englishTopics...), arabicTopics...) {
		out = append(out, intent.Normalize(t))
	}
	return out
}

var texts = map[domain.Language]string{
	domain.LangEnglish: "**Disclaimer:** This information is for general support and education only. " +
		"It is not a substitute for professional medical advice, diagnosis or treatment. " +
		"Please talk to your doctor or care team about your own situation.",
	domain.LangArabic: "**تنبيه:** هذه المعلومات للدعم والتثقيف العام فقط، " +
		"ولا تغني عن الاستشارة الطبية المتخصصة أو التشخيص أو العلاج. " +
		"يرجى التحدث مع طبيبكِ أو فريقكِ العلاجي بشأن حالتكِ.",
}

// Text returns the disclaimer block for lang.
func Text(lang domain.Language) string {
	return texts[domain.ParseLanguage(string(lang))]
}

// NeedsDisclaimer reports whether the message touches a medical topic.
func NeedsDisclaimer(message string) bool {
	m := intent.Normalize(message)
	for _, t := range topics {
		if strings.Contains(m, t) {
			return true
		}
	}
	return false
}

// Format normalizes reply markup and appends the disclaimer when asked.
// Dash and star bullets become "•", headers get a single space after the
// hashes, trailing spaces go and blank-line runs collapse to one. Leftover
// [name] tokens are filled. Bold markup is left alone.
func Format(text string, needsDisclaimer bool, userName string, lang domain.Language) string {
	lang = domain.ParseLanguage(string(lang))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "[name]", domain.DisplayName(userName, lang))

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = normalizeLine(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	result := strings.Join(out, "\n")

	if needsDisclaimer {
		d := Text(lang)
		if !strings.Contains(result, d) {
			if result == "" {
				return d
			}
			result += "\n\n" + d
		}
	}
	return result
}

func normalizeLine(line string) string {
	line = strings.TrimRight(line, " \t\u00a0")
	body := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(body)]

	switch {
	case strings.HasPrefix(body, "- "), strings.HasPrefix(body, "* "):
		return indent + "• " + strings.TrimLeft(body[2:], " \t")
	case strings.HasPrefix(body, "•") && !strings.HasPrefix(body, "• ") && len(body) > len("•"):
		return indent + "• " + strings.TrimLeft(strings.TrimPrefix(body, "•"), " \t")
	case strings.HasPrefix(body, "#"):
		hashes := len(body) - len(strings.TrimLeft(body, "#"))
		rest := strings.TrimLeft(body[hashes:], " \t")
		if hashes <= 6 && rest != "" {
			return indent + body[:hashes] + " " + rest
		}
	}
	return line
}
