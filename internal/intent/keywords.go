package intent

import "hayat-support-backend/internal/domain"

// keywordSet holds the phrases for one intent in both languages. English
// phrases are lowercase and matched against the lowercased message.
type keywordSet struct {
	intent  domain.Intent
	english []string
	arabic  []string
}

// rules is evaluated top to bottom; order is the intent priority.
var rules = []keywordSet{
	{
		intent: domain.IntentEmergency,
		english: []string{
			"chest pain", "pain in my chest", "can't breathe", "cant breathe", "cannot breathe",
			"can not breathe", "unable to breathe", "difficulty breathing", "trouble breathing",
			"severe bleeding", "heavy bleeding", "bleeding heavily", "won't stop bleeding",
			"suicide", "suicidal", "kill myself", "end my life", "want to die",
			"hurt myself", "harm myself", "self harm", "self-harm", "passed out", "unconscious",
		},
		arabic: []string{
			"ألم في الصدر", "ألم شديد في الصدر", "ألم بالصدر", "ألم في صدري", "ألم شديد في صدري",
			"ألم بصدري", "وجع في صدري", "وجع بصدري", "ضيق في صدري", "ضيق بصدري", "صدري يؤلمني",
			"لا أستطيع التنفس", "لا أستطيع أن أتنفس", "لا أقدر أتنفس", "لا أقدر أن أتنفس",
			"ما أقدر أتنفس", "مش قادر أتنفس", "مش قادرة أتنفس", "صعوبة في التنفس",
			"ضيق في التنفس", "ضيق تنفس", "نزيف شديد", "نزيف حاد", "نزيف غزير", "نزيف لا يتوقف",
			"أنزف", "النزيف لا يتوقف",
			"انتحار", "أنتحر", "قتل نفسي", "أريد أن أموت", "أريد الموت", "أتمنى الموت", "أبي أموت",
			"أنهي حياتي", "إنهاء حياتي", "إيذاء نفسي", "أؤذي نفسي", "أجرح نفسي",
			"فقدت الوعي", "أغمي علي",
		},
	},
	{
		intent: domain.IntentNewlyDiagnosed,
		english: []string{
			"just diagnosed", "newly diagnosed", "recently diagnosed", "i was diagnosed",
			"i've been diagnosed", "i have been diagnosed", "i got diagnosed", "got my diagnosis",
			"was told i have", "found out i have", "new diagnosis",
		},
		arabic: []string{
			"تم تشخيصي", "شخصوني", "تشخيصي", "تشخيص جديد", "اكتشفت أنني مصابة", "اكتشفت انني مصابة",
			"اكتشفت أني مصابة", "اكتشفت اني مصابة", "أخبرني الطبيب أنني مصابة", "أصبت بالسرطان", "اصبت بالسرطان",
		},
	},
	{
		intent: domain.IntentStress,
		english: []string{
			"stress", "pressure", "overwhelmed", "overwhelming", "panic", "burnout",
			"burned out", "burnt out", "can't cope", "cannot cope", "too much to handle",
		},
		arabic: []string{
			"ضغط", "توتر", "متوتر", "متوترة", "مضغوط", "مضغوطة", "ذعر", "هلع",
			"إرهاق", "ارهاق", "لا أستطيع التحمل", "لا استطيع التحمل",
		},
	},
	{
		intent: domain.IntentEmotionalSupport,
		english: []string{
			"scared", "afraid", "fear", "frightened", "anxious", "anxiety", "worried", "worry",
			"sad", "depressed", "depression", "lonely", "alone", "crying", "hopeless", "heartbroken",
		},
		arabic: []string{
			"خائفة", "خائف", "خايفة", "خايف", "خوف", "قلق", "قلقة", "حزين", "حزينة", "حزن",
			"وحيدة", "وحيد", "وحدة", "أبكي", "ابكي", "مكتئبة", "مكتئب", "اكتئاب", "يأس", "يائسة",
		},
	},
	{
		intent: domain.IntentSymptomInquiry,
		english: []string{
			"symptom", "lump", "discharge", "swelling", "swollen", "breast pain", "nipple",
			"rash", "redness", "dimpling", "bump",
		},
		arabic: []string{
			"أعراض", "اعراض", "عارض", "كتلة", "إفرازات", "افرازات", "تورم", "انتفاخ",
			"ألم في الثدي", "الم في الثدي", "احمرار", "الحلمة",
		},
	},
	{
		intent: domain.IntentTreatmentQuestion,
		english: []string{
			"chemo", "radiation", "radiotherapy", "surgery", "mastectomy", "lumpectomy",
			"screening", "mammogram", "hormone therapy", "treatment", "side effect",
		},
		arabic: []string{
			"كيماوي", "كيميائي", "إشعاعي", "اشعاعي", "إشعاع", "اشعاع", "جراحة", "عملية",
			"استئصال", "فحص", "ماموجرام", "ماموغرام", "علاج هرموني", "علاج", "آثار جانبية",
		},
	},
}

// dependents flags messages that mention children or family.
var dependents = keywordSet{
	english: []string{
		"my child", "my children", "children", "my kid", "my kids", "kids", "my son",
		"my daughter", "my baby", "my family",
	},
	arabic: []string{
		"أطفالي", "اطفالي", "أولادي", "اولادي", "ابني", "ابنتي", "بنتي", "طفلي",
		"عيالي", "عائلتي", "أسرتي", "اسرتي",
	},
}

// Question detection is token based: short Arabic interrogatives such as
// "هل" or "كم" occur inside ordinary words.
var (
	questionMarks = []string{"?", "؟"}

	questionWords = map[string]bool{
		"what": true, "whats": true, "how": true, "why": true, "when": true, "where": true,
		"which": true, "who": true,
		"ماذا": true, "كيف": true, "لماذا": true, "ليش": true, "متى": true, "اين": true,
		"هل": true, "كم": true, "وش": true, "شو": true, "ايش": true,
	}

	// questionLeads only count as the first word: "can i", "should i", "is it".
	questionLeads = map[string]bool{
		"can": true, "could": true, "should": true, "is": true, "are": true, "do": true,
		"does": true, "will": true, "would": true, "am": true,
	}
)
