package intent

import (
	"strings"
	"unicode"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// keywords maps each intent to the words or phrases that signal it.
// Matching is on whole words so that e.g. "academic" never signals emi.
// Bare "start" is left out: "how do I start" is not a date question.
var keywords = map[model.Intent][]string{
	model.IntentPrice: {
		"cost", "costs", "price", "prices", "pricing", "fee", "fees", "how much",
	},
	model.IntentEMI: {
		"emi", "emis", "installment", "installments", "instalment", "instalments",
		"payment plan", "payment plans", "payment option", "payment options",
	},
	model.IntentDate: {
		"when", "date", "dates", "start date", "starts", "commence", "commences",
		"begin", "begins", "batch", "batches",
	},
	model.IntentCurriculum: {
		"curriculum", "syllabus", "module", "modules", "topic", "topics",
	},
	model.IntentInstructor: {
		"mentor", "mentors", "instructor", "instructors", "teacher", "teachers", "faculty",
	},
	model.IntentPlacement: {
		"placement", "placements", "job", "jobs", "hire", "hiring", "hired", "career", "careers",
	},
	model.IntentReview: {
		"review", "reviews", "testimonial", "testimonials", "rating", "ratings",
	},
}

// Classify maps a question to the intents its keywords signal.
// An empty set means general.
func Classify(question string) model.IntentSet {
	text := " " + strings.Join(Tokens(question), " ") + " "

	intents := model.NewIntentSet()
	for intent, phrases := range keywords {
		for _, phrase := range phrases {
			if strings.Contains(text, " "+phrase+" ") {
				intents.Add(intent)
				break
			}
		}
	}
	return intents
}

// Keywords returns the phrases that signal intent.
func Keywords(intent model.Intent) []string {
	return append([]string(nil), keywords[intent]...)
}

// Tokens lowercases text and splits it into words of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
