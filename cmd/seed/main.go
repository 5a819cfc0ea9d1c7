package main

import (
	"fmt"
	"log/slog"
	"os"

	"chatter/internal/config"
	"chatter/internal/util"
	"chatter/pkg/domain"
	"chatter/pkg/store"
)

// Seeds a small development dataset: five users, five conversations (user
// 1 is a member of all of them), and a handful of messages. Existing rows
// are wiped and identity sequences restart at 1, so user 1 is always "Me".
func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to init postgres store", "err", err)
		os.Exit(1)
	}
	if err := seed(st); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
	slog.Info("database seeded", "main_user_id", 1)
}

func seed(st *store.GormStore) error {
	if err := st.Reset(); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}

	userSeeds := []domain.User{
		{Name: "Me", PhoneNumber: "+1234567890"},
		{Name: "Jane Smith", PhoneNumber: "+1234567891"},
		{Name: "Bob Johnson", PhoneNumber: "+1234567892"},
		{Name: "Alice Williams", PhoneNumber: "+1234567893"},
		{Name: "Charlie Brown", PhoneNumber: "+1234567894"},
	}
	users := make([]domain.User, 0, len(userSeeds))
	for _, u := range userSeeds {
		created, err := st.CreateUser(u)
		if err != nil {
			return fmt.Errorf("create user %q: %w", u.Name, err)
		}
		users = append(users, created)
	}
	me := users[0]

	conversationSeeds := []domain.Conversation{
		{Title: "Chat with Jane"},
		{Title: "Chat with Bob"},
		{Title: "Project Team"},
		{Title: "Weekend Plans"},
		{Title: "Family Chat"},
	}
	convs := make([]domain.Conversation, 0, len(conversationSeeds))
	for _, c := range conversationSeeds {
		created, err := st.CreateConversation(c)
		if err != nil {
			return fmt.Errorf("create conversation %q: %w", c.Title, err)
		}
		convs = append(convs, created)
	}

	memberships := []domain.Membership{
		{ConversationID: convs[0].ID, UserID: me.ID},
		{ConversationID: convs[0].ID, UserID: users[1].ID},

		{ConversationID: convs[1].ID, UserID: me.ID},
		{ConversationID: convs[1].ID, UserID: users[2].ID},

		{ConversationID: convs[2].ID, UserID: me.ID, IsAdmin: true},
		{ConversationID: convs[2].ID, UserID: users[1].ID},
		{ConversationID: convs[2].ID, UserID: users[2].ID},

		{ConversationID: convs[3].ID, UserID: me.ID},
		{ConversationID: convs[3].ID, UserID: users[3].ID},
		{ConversationID: convs[3].ID, UserID: users[4].ID},

		{ConversationID: convs[4].ID, UserID: me.ID, IsAdmin: true},
		{ConversationID: convs[4].ID, UserID: users[1].ID},
		{ConversationID: convs[4].ID, UserID: users[2].ID},
		{ConversationID: convs[4].ID, UserID: users[3].ID},
		{ConversationID: convs[4].ID, UserID: users[4].ID},
	}
	for _, m := range memberships {
		if _, err := st.AddMember(m); err != nil {
			return fmt.Errorf("add member (%d, %d): %w", m.ConversationID, m.UserID, err)
		}
	}

	messages := []domain.Message{
		{SenderID: me.ID, ConversationID: convs[0].ID, Content: "Hey Jane, how's the project going?"},
		{SenderID: users[1].ID, ConversationID: convs[0].ID, Content: "Going well! Just finished the design phase"},
		{SenderID: me.ID, ConversationID: convs[0].ID, Content: "Great! Let me know if you need any help"},

		{SenderID: users[2].ID, ConversationID: convs[1].ID, Content: "Can we review the code tomorrow?"},
		{SenderID: me.ID, ConversationID: convs[1].ID, Content: "Sure, how about 10 AM?"},
		{SenderID: users[2].ID, ConversationID: convs[1].ID, Content: "Perfect, see you then!"},

		{SenderID: me.ID, ConversationID: convs[2].ID, Content: "Team meeting at 3 PM today"},
		{SenderID: users[1].ID, ConversationID: convs[2].ID, Content: "I'll be there"},
		{SenderID: users[2].ID, ConversationID: convs[2].ID, Content: "Me too!"},

		{SenderID: users[3].ID, ConversationID: convs[3].ID, Content: "Anyone up for hiking this weekend?"},
		{SenderID: me.ID, ConversationID: convs[3].ID, Content: "Count me in! What time?"},
		{SenderID: users[4].ID, ConversationID: convs[3].ID, Content: "Let's start early, 7 AM?"},

		{SenderID: me.ID, ConversationID: convs[4].ID, Content: "Don't forget about dinner tonight!"},
		{SenderID: users[3].ID, ConversationID: convs[4].ID, Content: "I'll be there by 7"},
		{SenderID: users[1].ID, ConversationID: convs[4].ID, Content: "Looking forward to it!"},
	}
	for _, msg := range messages {
		if _, err := st.AppendMessage(msg); err != nil {
			return fmt.Errorf("append message to conversation %d: %w", msg.ConversationID, err)
		}
	}

	slog.Info("seeded entities",
		"users", len(users),
		"conversations", len(convs),
		"memberships", len(memberships),
		"messages", len(messages),
	)
	return nil
}
