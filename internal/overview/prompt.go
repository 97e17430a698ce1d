package overview

import (
	"strings"
)

// DefaultInstruction prefixes the code when the caller gives no prompt.
const DefaultInstruction = "Provide a concise, accurate overview for this code:\n"

// ContextSuffix separates the user's prompt from collected repository files.
const ContextSuffix = " for additional content look at the repo files\n"

const chatInstruction = "You are a senior Software engineer assistant. Based on the following code overview, answer the user's question."

// GeneratePrompt builds the model prompt for an overview request.
func GeneratePrompt(instruction, code string) string {
	if instruction == "" {
		instruction = DefaultInstruction
	}
	return instruction + "\n" + code
}

// ChatPrompt builds a single prompt from the stored overview and the
// transcript, ending with an open AI turn for the model to complete.
func ChatPrompt(overviewText string, history []Turn) string {
	var b strings.Builder

	b.WriteString(chatInstruction)
	b.WriteString("\n\n--- CODE OVERVIEW CONTEXT ---\n")
	b.WriteString(overviewText)
	b.WriteString("\n--- END CONTEXT ---\n\n")

	b.WriteString("--- CHAT HISTORY ---\n")
	for _, t := range history {
		b.WriteString(t.User)
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	b.WriteString(SpeakerAI + ":")

	return b.String()
}

// ReviewPrompt appends collected repository context to the user's prompt.
// Callers without a source directory send the prompt unchanged instead.
func ReviewPrompt(userPrompt, context string) string {
	return userPrompt + ContextSuffix + context
}
