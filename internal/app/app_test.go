package app

import (
	"errors"
	"strings"
	"testing"

	"chatter/pkg/domain"
	"chatter/pkg/store"
)

var errDown = errors.New("connection refused")

// failingStore simulates a persistence-layer outage.
type failingStore struct{}

func (failingStore) ListConversationsForUser(int64) ([]domain.ConversationSummary, error) {
	return nil, errDown
}
func (failingStore) ListMessages(int64) ([]domain.Message, error) { return nil, errDown }
func (failingStore) AppendMessage(domain.Message) (domain.Message, error) {
	return domain.Message{}, errDown
}
func (failingStore) CreateUser(domain.User) (domain.User, error) { return domain.User{}, errDown }
func (failingStore) CreateConversation(domain.Conversation) (domain.Conversation, error) {
	return domain.Conversation{}, errDown
}
func (failingStore) AddMember(domain.Membership) (domain.Membership, error) {
	return domain.Membership{}, errDown
}

func TestNewRequiresDatabaseURLOrStore(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without database URL or store")
	}
	if _, err := New(Config{Store: store.NewMemoryStore()}); err != nil {
		t.Fatalf("injected store should suffice: %v", err)
	}
}

func TestPersistenceFailuresPropagate(t *testing.T) {
	a, err := New(Config{Store: failingStore{}})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	if _, err := a.ListConversations(1); !errors.Is(err, errDown) {
		t.Fatalf("list conversations: expected wrapped store error, got %v", err)
	}
	if _, err := a.ListMessages(1); !errors.Is(err, errDown) {
		t.Fatalf("list messages: expected wrapped store error, got %v", err)
	}
	if _, err := a.SendMessage(1, 1, "hi"); !errors.Is(err, errDown) {
		t.Fatalf("send message: expected wrapped store error, got %v", err)
	}
}

func TestSendMessagePassesContentThroughUnchanged(t *testing.T) {
	st := store.NewMemoryStore()
	a, err := New(Config{Store: st})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	user, err := st.CreateUser(domain.User{Name: "Me", PhoneNumber: "+1234567890"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	conv, err := st.CreateConversation(domain.Conversation{Title: "Pad test"})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	content := "  padded, not trimmed  "
	msg, err := a.SendMessage(user.ID, conv.ID, content)
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.Content != content {
		t.Fatalf("content altered: %q", msg.Content)
	}
	if strings.TrimSpace(msg.Content) == msg.Content {
		t.Fatalf("test content should carry surrounding whitespace")
	}
}
