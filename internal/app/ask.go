package app

import (
	"context"
	"fmt"
	"strings"

	"sermonbot/pkg/domain"
)

const askSystemPrompt = "You are a helpful assistant answering questions " +
	"about a sermon. Answer using only the provided sermon excerpts. If the " +
	"excerpts do not contain the answer, say so."

// Ask answers a question about the named sermon and records the exchange in
// the user's conversation. The retrieved passages are handed to the chat
// model as grounding context; when no transcript exists under the title the
// answer is the tool's not-found message and nothing is generated.
func (a *App) Ask(ctx context.Context, userID, conversationID, title, question string) (domain.Conversation, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Conversation{}, fmt.Errorf("%w: question required", domain.ErrInvalidInput)
	}
	passages, found, err := a.RetrievePassages(ctx, title, question)
	if err != nil {
		return domain.Conversation{}, err
	}

	answer := NoContentsMessage
	if found {
		if a.gemini == nil || a.chatModel == "" {
			return domain.Conversation{}, fmt.Errorf("%w: chat model not configured", domain.ErrUpstream)
		}
		var sb strings.Builder
		sb.WriteString("Sermon: ")
		sb.WriteString(title)
		sb.WriteString("\n\nExcerpts:\n")
		for _, p := range passages {
			sb.WriteString("- ")
			sb.WriteString(p.Text)
			sb.WriteByte('\n')
		}
		sb.WriteString("\nQuestion: ")
		sb.WriteString(question)
		answer, err = a.gemini.GenerateText(ctx, a.chatModel, askSystemPrompt, sb.String())
		if err != nil {
			return domain.Conversation{}, fmt.Errorf("generate answer: %w", err)
		}
	}

	return a.AddPrompt(userID, conversationID, domain.Prompt{
		Question: question,
		Answer:   answer,
	})
}
