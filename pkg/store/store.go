package store

import "chatter/pkg/domain"

// Store defines persistence operations for users, conversations,
// memberships, and messages.
//
// Absent entities are never errors: an unknown user or conversation
// yields an empty result. Errors are reserved for persistence failures
// (connection loss, constraint violations) and are returned as-is.
type Store interface {
	// conversation list, annotated with each conversation's latest
	// message and sorted by that message's timestamp descending.
	// Conversations without any message are excluded.
	ListConversationsForUser(userID int64) ([]domain.ConversationSummary, error)

	// messages of one conversation, in natural storage order. Callers
	// that need chronological order must sort.
	ListMessages(conversationID int64) ([]domain.Message, error)

	// AppendMessage inserts exactly one message row and returns the
	// created record with its server-assigned ID and timestamp.
	AppendMessage(msg domain.Message) (domain.Message, error)

	// seeding/admin flows
	CreateUser(u domain.User) (domain.User, error)
	CreateConversation(c domain.Conversation) (domain.Conversation, error)
	AddMember(m domain.Membership) (domain.Membership, error)
}
