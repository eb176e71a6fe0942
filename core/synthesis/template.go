package synthesis

import (
	"strings"
	"unicode/utf8"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

const (
	// NoInfoMessage is the answer when no chunk can support one.
	NoInfoMessage = "I couldn't find relevant information to answer your question."

	dateUnavailable = "The batch start date is not currently available on the website"
	excerptLength   = 200
)

// Templated builds an answer from the typed fields of chunk alone. It
// returns "" when chunk has nothing to say.
func Templated(intents model.IntentSet, chunk *model.Chunk) string {
	if chunk == nil {
		return ""
	}

	var parts []string
	if intents.Has(model.IntentEMI) {
		if options := emiOptions(chunk); len(options) > 0 {
			parts = append(parts, "EMI Options available:\n- "+strings.Join(options, "\n- "))
		}
	}
	if intents.Has(model.IntentPrice) {
		if cost := chunk.Cost(); cost != "" {
			parts = append(parts, "The cost is "+FormatRupees(cost))
		}
	}
	if intents.Has(model.IntentDate) {
		if date := chunk.BatchStartDate(); date != "" {
			parts = append(parts, "The batch starts on "+date)
		} else if chunk.Type == model.ChunkTypeBatch {
			parts = append(parts, dateUnavailable)
		}
	}

	if len(parts) == 0 {
		return excerpt(chunk.Content)
	}
	return strings.Join(parts, ". ")
}

func emiOptions(chunk *model.Chunk) []string {
	if options := chunk.EMIOptions(); len(options) > 0 {
		return options
	}
	if chunk.Type != model.ChunkTypePayment {
		return nil
	}

	var options []string
	for _, line := range strings.Split(chunk.Content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			if option := strings.TrimSpace(strings.TrimPrefix(line, "-")); option != "" {
				options = append(options, option)
			}
		}
	}
	return options
}

func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= excerptLength {
		return content
	}
	return strings.TrimSpace(string([]rune(content)[:excerptLength]))
}

// FormatRupees prefixes a cost with ₹ and groups plain amounts the Indian
// way, e.g. "125000" becomes "₹1,25,000". Costs with other text are kept.
func FormatRupees(cost string) string {
	cost = strings.TrimSpace(cost)
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR"} {
		cost = strings.TrimSpace(strings.TrimPrefix(cost, prefix))
	}

	digits := strings.ReplaceAll(cost, ",", "")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return "₹" + cost
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "₹0"
	}
	if len(digits) <= 3 {
		return "₹" + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return "₹" + strings.Join(groups, ",") + "," + tail
}
