package synthesis

import (
	"fmt"
	"strings"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/llm"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

const systemPrompt = `You are a helpful FAQ assistant for Nextleap courses. Answer questions based ONLY on the provided context from Nextleap's official website.

Rules:
1. Answer only with information from the context. If it is not there, say "I don't have that information available".
2. Be concise and factual. Give no advice.
3. Format prices as ₹X,XXX.
4. If asked about a date that the context does not contain, say so clearly.
5. If asked about EMI or payment options, list every EMI plan in the context.
6. When the user says "the course" or "it", answer about the course from the previous conversation.
7. End with exactly one line "Source: <url>" where <url> is the source of one context entry you used. Never invent a URL.`

// BuildPrompt assembles the completion request for question. Each context
// chunk is tagged with its own source URL.
func BuildPrompt(question string, context []model.ScoredChunk, history []model.ConversationTurn) llm.Prompt {
	var b strings.Builder

	b.WriteString("Context from Nextleap website:\n")
	for i, c := range context {
		fmt.Fprintf(&b, "\n[%d] Course: %s | Type: %s | Source: %s\n%s\n", i+1, c.Chunk.CohortName, c.Chunk.Type, c.Chunk.SourceURL, c.Chunk.Content)
	}

	if len(history) > 0 {
		b.WriteString("\nPrevious conversation:\n")
		for _, turn := range history {
			role := "User"
			if turn.Role == model.RoleAssistant {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(turn.Text))
		}
	}

	fmt.Fprintf(&b, "\nUser question: %s\n\nAnswer (be concise and factual):", strings.TrimSpace(question))

	return llm.Prompt{System: systemPrompt, User: b.String()}
}
