package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chatter/pkg/domain"
)

const migrateLockID int64 = 47210472

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ConversationModel{}, &MembershipModel{}, &MessageModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := tx.Exec(`
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'messages'
					AND constraint_name = 'messages_sender_id_fkey'
				) THEN
					ALTER TABLE messages
					ADD CONSTRAINT messages_sender_id_fkey
					FOREIGN KEY (sender_id) REFERENCES users(id);
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'messages'
					AND constraint_name = 'messages_conversation_id_fkey'
				) THEN
					ALTER TABLE messages
					ADD CONSTRAINT messages_conversation_id_fkey
					FOREIGN KEY (conversation_id) REFERENCES conversations(id);
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'conversation_users'
					AND constraint_name = 'conversation_users_conversation_id_fkey'
				) THEN
					ALTER TABLE conversation_users
					ADD CONSTRAINT conversation_users_conversation_id_fkey
					FOREIGN KEY (conversation_id) REFERENCES conversations(id);
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'conversation_users'
					AND constraint_name = 'conversation_users_user_id_fkey'
				) THEN
					ALTER TABLE conversation_users
					ADD CONSTRAINT conversation_users_user_id_fkey
					FOREIGN KEY (user_id) REFERENCES users(id);
				END IF;
			END $$;
		`).Error; err != nil {
			return fmt.Errorf("ensure foreign keys: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

type memberConversationRow struct {
	ID    int64
	Title *string
}

type latestMessageRow struct {
	ConversationID int64
	Content        string
	CreatedAt      time.Time
	SenderID       int64
	AuthorName     string
}

// ListConversationsForUser returns the user's conversations annotated with
// their latest message, most recent conversation first. Conversations with
// no messages are excluded.
//
// The plan is two bulk round trips: one membership fetch, then one windowed
// latest-message fetch over all candidate conversations. Messages written
// between the two fetches may or may not be reflected.
func (s *GormStore) ListConversationsForUser(userID int64) ([]domain.ConversationSummary, error) {
	var convs []memberConversationRow
	if err := s.db.Raw(`
		SELECT DISTINCT c.id, c.title
		FROM conversations c
		JOIN conversation_users cu ON cu.conversation_id = c.id
		WHERE cu.user_id = ?
	`, userID).Scan(&convs).Error; err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	ids := make([]int64, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}

	// Latest message per conversation. The tie-break between messages with
	// equal timestamps is unspecified; ROW_NUMBER picks an arbitrary one.
	var latest []latestMessageRow
	if err := s.db.Raw(`
		SELECT m.conversation_id, m.content, m.created_at, m.sender_id, u.name AS author_name
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY conversation_id ORDER BY created_at DESC) AS rn
			FROM messages
			WHERE conversation_id IN ?
		) m
		JOIN users u ON u.id = m.sender_id
		WHERE m.rn = 1
	`, ids).Scan(&latest).Error; err != nil {
		return nil, err
	}

	latestByConversation := make(map[int64]latestMessageRow, len(latest))
	for _, row := range latest {
		latestByConversation[row.ConversationID] = row
	}

	res := make([]domain.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		row, ok := latestByConversation[c.ID]
		if !ok {
			continue
		}
		title := ""
		if c.Title != nil {
			title = *c.Title
		}
		res = append(res, domain.ConversationSummary{
			ConversationID: c.ID,
			Title:          title,
			LastMessage: domain.LastMessage{
				Content:    row.Content,
				CreatedAt:  row.CreatedAt,
				SenderID:   row.SenderID,
				AuthorName: row.AuthorName,
			},
		})
	}
	slices.SortFunc(res, func(a, b domain.ConversationSummary) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})
	return res, nil
}

// ListMessages returns all messages of a conversation in natural storage
// order. An unknown conversation yields an empty slice.
func (s *GormStore) ListMessages(conversationID int64) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, messageFromModel(m))
	}
	return msgs, nil
}

// AppendMessage inserts one message row. ID and CreatedAt come back from
// the database. Unknown sender or conversation IDs surface as foreign-key
// violations from the driver.
func (s *GormStore) AppendMessage(msg domain.Message) (domain.Message, error) {
	model := MessageModel{
		SenderID:       msg.SenderID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Message{}, err
	}
	return messageFromModel(model), nil
}

// CreateUser inserts a user row.
func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := UserModel{
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:          model.ID,
		Name:        model.Name,
		PhoneNumber: model.PhoneNumber,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

// CreateConversation inserts a conversation row.
func (s *GormStore) CreateConversation(c domain.Conversation) (domain.Conversation, error) {
	model := ConversationModel{}
	if c.Title != "" {
		title := c.Title
		model.Title = &title
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Conversation{}, err
	}
	title := ""
	if model.Title != nil {
		title = *model.Title
	}
	return domain.Conversation{
		ID:        model.ID,
		Title:     title,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// AddMember inserts a membership row. A duplicate (conversation, user)
// pair violates the unique index and surfaces as a persistence error.
func (s *GormStore) AddMember(m domain.Membership) (domain.Membership, error) {
	joinedAt := m.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	model := MembershipModel{
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		IsAdmin:        m.IsAdmin,
		JoinedAt:       joinedAt,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Membership{}, err
	}
	return domain.Membership{
		ID:             model.ID,
		ConversationID: model.ConversationID,
		UserID:         model.UserID,
		IsAdmin:        model.IsAdmin,
		JoinedAt:       model.JoinedAt,
	}, nil
}

// Reset wipes all rows and restarts identity sequences. Used by the seeder.
func (s *GormStore) Reset() error {
	return s.db.Exec(`TRUNCATE messages, conversation_users, conversations, users RESTART IDENTITY CASCADE`).Error
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
