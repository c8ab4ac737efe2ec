package openai

import (
	"fmt"
	"strings"
)

// passageSeparator joins retrieved passages in the grounding context.
const passageSeparator = "\n\n---\n\n"

const answerSystemPrompt = `You answer questions using only the supplied reference text.

Rules:
- Use the language of the question for the answer.
- Keep the answer short while covering as much relevant information from the text as possible.
- If the text contains no information relevant to the question, reply that you cannot answer it from the available material.
- Never invent facts that are not in the text.`

// buildAnswerPrompt renders the user message for a generation call.
func buildAnswerPrompt(question string, passages []string) string {
	return fmt.Sprintf("Text:\n%s\n\nQuestion: %s",
		strings.Join(passages, passageSeparator), question)
}
