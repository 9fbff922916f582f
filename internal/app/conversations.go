package app

import (
	"fmt"
	"time"

	"sermonbot/internal/util"
	"sermonbot/pkg/domain"
)

// CreateConversation starts an empty conversation for the user with the
// placeholder name.
func (a *App) CreateConversation(userID string) (domain.Conversation, error) {
	if _, ok, err := a.store.GetUserByID(userID); err != nil {
		return domain.Conversation{}, err
	} else if !ok {
		return domain.Conversation{}, fmt.Errorf("user %q: %w", userID, domain.ErrNotFound)
	}
	conv := domain.Conversation{
		ID:           util.NewID(),
		UserID:       userID,
		Name:         domain.DefaultConversationName,
		Prompts:      []domain.Prompt{},
		DateModified: time.Now().UTC(),
	}
	if err := a.store.SaveConversation(conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// AddPrompt appends a question/answer exchange to a conversation, creating
// the conversation on first use. The conversation name flips on every append:
// a conversation still carrying the placeholder name takes the question as
// its name, and a named conversation reverts to the placeholder.
func (a *App) AddPrompt(userID, conversationID string, prompt domain.Prompt) (domain.Conversation, error) {
	if _, ok, err := a.store.GetUserByID(userID); err != nil {
		return domain.Conversation{}, err
	} else if !ok {
		return domain.Conversation{}, fmt.Errorf("user %q: %w", userID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	conv, ok, err := a.store.GetConversation(conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !ok {
		conv = domain.Conversation{
			ID:           conversationID,
			UserID:       userID,
			Name:         prompt.Question,
			Prompts:      []domain.Prompt{prompt},
			DateModified: now,
		}
		if conv.ID == "" {
			conv.ID = util.NewID()
		}
		if err := a.store.SaveConversation(conv); err != nil {
			return domain.Conversation{}, err
		}
		return conv, nil
	}
	if conv.UserID != userID {
		return domain.Conversation{}, fmt.Errorf("conversation %q: %w", conversationID, domain.ErrNotFound)
	}

	name := domain.DefaultConversationName
	if conv.Name == domain.DefaultConversationName {
		name = prompt.Question
	}
	prompts := append(conv.Prompts, prompt)
	updated, err := a.store.UpdateConversation(conv.ID, name, prompts, now)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !updated {
		return domain.Conversation{}, fmt.Errorf("conversation %q: %w", conversationID, domain.ErrNotFound)
	}
	conv.Name = name
	conv.Prompts = prompts
	conv.DateModified = now
	return conv, nil
}

// GetConversations lists a user's conversations in insertion order.
func (a *App) GetConversations(userID string) ([]domain.Conversation, error) {
	return a.store.ListConversationsByUser(userID)
}

// GetPrompts returns a conversation's prompt history. With pairs=false the
// structured records come back; with pairs=true each prompt is reduced to a
// plain [question, answer] tuple.
func (a *App) GetPrompts(userID, conversationID string, pairs bool) ([]domain.Prompt, [][2]string, error) {
	conv, ok, err := a.store.GetConversation(conversationID)
	if err != nil {
		return nil, nil, err
	}
	if !ok || conv.UserID != userID {
		return nil, nil, fmt.Errorf("conversation %q: %w", conversationID, domain.ErrNotFound)
	}
	if !pairs {
		return conv.Prompts, nil, nil
	}
	tuples := make([][2]string, 0, len(conv.Prompts))
	for _, p := range conv.Prompts {
		tuples = append(tuples, [2]string{p.Question, p.Answer})
	}
	return nil, tuples, nil
}

// DeleteConversation removes a conversation owned by the user. Deleting a
// missing conversation, or one owned by someone else, reports false.
func (a *App) DeleteConversation(userID, conversationID string) (bool, error) {
	return a.store.DeleteConversation(userID, conversationID)
}
