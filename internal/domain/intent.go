package domain

// Intent is the single classified purpose of a user message.
type Intent string

const (
	IntentEmergency         Intent = "emergency"
	IntentNewlyDiagnosed    Intent = "newlyDiagnosed"
	IntentStress            Intent = "stress"
	IntentEmotionalSupport  Intent = "emotionalSupport"
	IntentSymptomInquiry    Intent = "symptomInquiry"
	IntentTreatmentQuestion Intent = "treatmentQuestion"
	IntentFallback          Intent = "fallback"
)

var intentOrder = []Intent{
	IntentEmergency,
	IntentNewlyDiagnosed,
	IntentStress,
	IntentEmotionalSupport,
	IntentSymptomInquiry,
	IntentTreatmentQuestion,
	IntentFallback,
}

// Intents returns every intent, highest priority first.
func Intents() []Intent {
	return append([]Intent(nil), intentOrder...)
}

// Priority is the evaluation rank of an intent; 0 is evaluated first.
// Unknown values rank after fallback.
func (i Intent) Priority() int {
	for n, v := range intentOrder {
		if v == i {
			return n
		}
	}
	return len(intentOrder)
}

func (i Intent) Valid() bool { return i.Priority() < len(intentOrder) }
