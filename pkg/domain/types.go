package domain

import "time"

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Conversation groups messages among a set of member users. Title is
// optional; an empty string means the conversation is untitled.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Membership grants a user visibility and participation in a conversation.
type Membership struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	UserID         int64     `json:"userId"`
	IsAdmin        bool      `json:"isAdmin"`
	JoinedAt       time.Time `json:"joinedAt"`
}

// Message is append-only: rows are created once and never updated or
// deleted. ID and CreatedAt are assigned by the store on insert.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// LastMessage describes the most recent message of a conversation,
// joined with its author's display name.
type LastMessage struct {
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderID   int64     `json:"senderId"`
	AuthorName string    `json:"authorName"`
}

// ConversationSummary is one row of the conversation list: a conversation
// the user belongs to, annotated with its latest message.
type ConversationSummary struct {
	ConversationID int64       `json:"conversationId"`
	Title          string      `json:"title,omitempty"`
	LastMessage    LastMessage `json:"lastMessage"`
}
