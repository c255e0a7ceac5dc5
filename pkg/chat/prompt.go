package chat

import (
	"fmt"
	"sort"
	"strings"

	"mindline/pkg/directory"
	"mindline/pkg/session"
)

// historyWindow caps how many prior conversation entries go to the model,
// to bound prompt size.
const historyWindow = 10

// delimiter fences the raw user input in the prompt.
const delimiter = "```"

const systemPrompt = `You are a friendly chatbot. ` +
	`You can answer questions about mental health services. ` +
	`You respond in a concise, technically credible tone. ` +
	`Use the conversation history to maintain context and provide personalized responses. ` +
	`Reference previous conversations when relevant.`

// BuildMessages assembles the model-facing message list: system prompt,
// recent history, the fenced user input, and the retrieved service records
// as grounding context.
func BuildMessages(history []session.Message, userInput string, docs []directory.Document) []Message {
	messages := []Message{{Role: "system", Content: systemPrompt}}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, msg := range recent {
		messages = append(messages, Message{Role: msg.Role, Content: msg.Content})
	}

	messages = append(messages,
		Message{Role: "user", Content: delimiter + userInput + delimiter},
		Message{Role: "assistant", Content: formatContext(docs)},
	)

	return messages
}

// formatContext renders the retrieved records for the model.
func formatContext(docs []directory.Document) string {
	var sb strings.Builder
	sb.WriteString("Relevant mental health services information:\n")
	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatDocument(doc)))
	}
	if len(docs) == 0 {
		sb.WriteString("(no matching services found)\n")
	}
	return sb.String()
}

func formatDocument(doc directory.Document) string {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+doc[key])
	}
	return strings.Join(parts, ", ")
}
