package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"chatter/pkg/domain"
)

// MemoryStore keeps all entities in-process. It mirrors GormStore
// semantics (zero-message filter, arbitrary tie-break, descending sort)
// and backs tests.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[int64]domain.User
	conversations map[int64]domain.Conversation
	memberships   []domain.Membership
	messages      []domain.Message

	nextUserID         int64
	nextConversationID int64
	nextMembershipID   int64
	nextMessageID      int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]domain.User),
		conversations: make(map[int64]domain.Conversation),
	}
}

// ListConversationsForUser returns the user's conversations annotated with
// their latest message, most recent first. Conversations without messages
// are excluded; an unknown user yields an empty slice.
func (m *MemoryStore) ListConversationsForUser(userID int64) ([]domain.ConversationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	memberOf := make(map[int64]bool)
	for _, mb := range m.memberships {
		if mb.UserID == userID {
			memberOf[mb.ConversationID] = true
		}
	}

	res := make([]domain.ConversationSummary, 0, len(memberOf))
	for conversationID := range memberOf {
		var latest *domain.Message
		for i := range m.messages {
			msg := &m.messages[i]
			if msg.ConversationID != conversationID {
				continue
			}
			if latest == nil || msg.CreatedAt.After(latest.CreatedAt) {
				latest = msg
			}
		}
		if latest == nil {
			continue
		}
		conv := m.conversations[conversationID]
		res = append(res, domain.ConversationSummary{
			ConversationID: conversationID,
			Title:          conv.Title,
			LastMessage: domain.LastMessage{
				Content:    latest.Content,
				CreatedAt:  latest.CreatedAt,
				SenderID:   latest.SenderID,
				AuthorName: m.users[latest.SenderID].Name,
			},
		})
	}
	slices.SortFunc(res, func(a, b domain.ConversationSummary) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})
	return res, nil
}

// ListMessages returns a conversation's messages in insertion order.
func (m *MemoryStore) ListMessages(conversationID int64) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Message, 0)
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			res = append(res, msg)
		}
	}
	return res, nil
}

// AppendMessage records a message with the next sequential ID. A zero
// CreatedAt is replaced with the current time; tests may pass explicit
// timestamps to control ordering.
func (m *MemoryStore) AppendMessage(msg domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[msg.SenderID]; !ok {
		return domain.Message{}, fmt.Errorf("insert message: sender %d violates foreign key", msg.SenderID)
	}
	if _, ok := m.conversations[msg.ConversationID]; !ok {
		return domain.Message{}, fmt.Errorf("insert message: conversation %d violates foreign key", msg.ConversationID)
	}
	m.nextMessageID++
	msg.ID = m.nextMessageID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

// CreateUser registers a user.
func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.PhoneNumber == u.PhoneNumber {
			return domain.User{}, fmt.Errorf("insert user: phone number %q violates unique constraint", u.PhoneNumber)
		}
	}
	m.nextUserID++
	u.ID = m.nextUserID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = u
	return u, nil
}

// CreateConversation registers a conversation.
func (m *MemoryStore) CreateConversation(c domain.Conversation) (domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextConversationID++
	c.ID = m.nextConversationID
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.conversations[c.ID] = c
	return c, nil
}

// AddMember registers a membership. Duplicate (conversation, user) pairs
// are rejected, matching the unique index on the Postgres table.
func (m *MemoryStore) AddMember(mb domain.Membership) (domain.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.memberships {
		if existing.ConversationID == mb.ConversationID && existing.UserID == mb.UserID {
			return domain.Membership{}, fmt.Errorf("insert membership: (%d, %d) violates unique constraint", mb.ConversationID, mb.UserID)
		}
	}
	m.nextMembershipID++
	mb.ID = m.nextMembershipID
	if mb.JoinedAt.IsZero() {
		mb.JoinedAt = time.Now().UTC()
	}
	m.memberships = append(m.memberships, mb)
	return mb, nil
}
