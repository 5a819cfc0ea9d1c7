package app

import (
	"fmt"
	"log/slog"

	"chatter/pkg/domain"
	"chatter/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
}

// App is the service layer: a thin pass-through around the store that
// logs persistence failures before propagating them. It performs no
// retries and returns no partial results. Identity is always an explicit
// parameter; there is no notion of a current user here.
type App struct {
	store store.Store
}

// New constructs the application with database-backed storage unless a
// store is injected.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	return &App{store: dataStore}, nil
}

// ListConversations returns the user's conversations annotated with their
// latest message, most recent first. An unknown user yields an empty list.
func (a *App) ListConversations(userID int64) ([]domain.ConversationSummary, error) {
	items, err := a.store.ListConversationsForUser(userID)
	if err != nil {
		slog.Error("list conversations failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return items, nil
}

// ListMessages returns all messages of a conversation in storage order.
func (a *App) ListMessages(conversationID int64) ([]domain.Message, error) {
	items, err := a.store.ListMessages(conversationID)
	if err != nil {
		slog.Error("list messages failed", "conversation_id", conversationID, "err", err)
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return items, nil
}

// SendMessage appends one message and returns the created record. Content
// is stored as given; unknown sender or conversation IDs surface as
// persistence errors.
func (a *App) SendMessage(senderID, conversationID int64, content string) (domain.Message, error) {
	msg, err := a.store.AppendMessage(domain.Message{
		SenderID:       senderID,
		ConversationID: conversationID,
		Content:        content,
	})
	if err != nil {
		slog.Error("send message failed", "sender_id", senderID, "conversation_id", conversationID, "err", err)
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}
