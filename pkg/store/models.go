package store

import "time"

// GORM models used for persistence. Primary keys are server-generated
// sequential integers (bigserial).
type UserModel struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;not null"`
	PhoneNumber string    `gorm:"size:15;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ConversationModel struct {
	ID        int64     `gorm:"primaryKey"`
	Title     *string   `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ConversationModel) TableName() string { return "conversations" }

// MembershipModel rows are unique per (conversation, user) pair.
type MembershipModel struct {
	ID             int64     `gorm:"primaryKey"`
	ConversationID int64     `gorm:"not null;uniqueIndex:idx_conversation_user"`
	UserID         int64     `gorm:"not null;uniqueIndex:idx_conversation_user"`
	IsAdmin        bool      `gorm:"not null;default:false"`
	JoinedAt       time.Time `gorm:"not null"`
}

func (MembershipModel) TableName() string { return "conversation_users" }

type MessageModel struct {
	ID             int64     `gorm:"primaryKey"`
	SenderID       int64     `gorm:"not null;index"`
	ConversationID int64     `gorm:"not null;index"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (MessageModel) TableName() string { return "messages" }
