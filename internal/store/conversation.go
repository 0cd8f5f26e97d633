package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aduval/foyer/internal/model"
)

type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func scanConversation(scanner interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.PublicID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const conversationCols = `id, household_id, public_id, title, created_at, updated_at`

func (s *ConversationStore) Create(householdID int64, title string) (*model.Conversation, error) {
	publicID := uuid.NewString()
	result, err := s.db.Exec(
		`INSERT INTO conversations (household_id, public_id, title) VALUES (?, ?, ?)`,
		householdID, publicID, title,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *ConversationStore) GetByID(householdID, id int64) (*model.Conversation, error) {
	row := s.db.QueryRow(
		`SELECT `+conversationCols+` FROM conversations WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) GetByPublicID(householdID int64, publicID string) (*model.Conversation, error) {
	row := s.db.QueryRow(
		`SELECT `+conversationCols+` FROM conversations WHERE public_id = ? AND household_id = ?`,
		publicID, householdID,
	)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation by public id: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) List(householdID int64) ([]model.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT `+conversationCols+` FROM conversations WHERE household_id = ? ORDER BY updated_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *ConversationStore) SetTitle(householdID, id int64, title string) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET title = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		title, id, householdID,
	)
	if err != nil {
		return fmt.Errorf("set conversation title: %w", err)
	}
	return nil
}

// Touch bumps updated_at so the conversation sorts to the top of the list.
func (s *ConversationStore) Touch(householdID, id int64) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (s *ConversationStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// --- Messages ---

func scanConversationMessage(scanner interface{ Scan(...any) error }) (*model.ConversationMessage, error) {
	var m model.ConversationMessage
	err := scanner.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const conversationMessageCols = `id, conversation_id, role, content, created_at`

func (s *ConversationStore) AppendMessage(conversationID int64, role, content string) (*model.ConversationMessage, error) {
	result, err := s.db.Exec(
		`INSERT INTO conversation_messages (conversation_id, role, content) VALUES (?, ?, ?)`,
		conversationID, role, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+conversationMessageCols+` FROM conversation_messages WHERE id = ?`, id)
	m, err := scanConversationMessage(row)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListMessages returns the full transcript oldest-first.
func (s *ConversationStore) ListMessages(conversationID int64) ([]model.ConversationMessage, error) {
	rows, err := s.db.Query(
		`SELECT `+conversationMessageCols+` FROM conversation_messages WHERE conversation_id = ? ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationMessage
	for rows.Next() {
		m, err := scanConversationMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *ConversationStore) CountMessages(conversationID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM conversation_messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// --- Attachments ---

func scanAttachment(scanner interface{ Scan(...any) error }) (*model.ConversationAttachment, error) {
	var a model.ConversationAttachment
	err := scanner.Scan(&a.ID, &a.MessageID, &a.BlobKey, &a.Filename, &a.ContentType, &a.SizeBytes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const attachmentCols = `id, message_id, blob_key, filename, content_type, size_bytes, created_at`

func (s *ConversationStore) AddAttachment(messageID int64, blobKey, filename, contentType string, sizeBytes int64) (*model.ConversationAttachment, error) {
	result, err := s.db.Exec(
		`INSERT INTO conversation_attachments (message_id, blob_key, filename, content_type, size_bytes) VALUES (?, ?, ?, ?, ?)`,
		messageID, blobKey, filename, contentType, sizeBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+attachmentCols+` FROM conversation_attachments WHERE id = ?`, id)
	a, err := scanAttachment(row)
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

func (s *ConversationStore) ListAttachments(messageID int64) ([]model.ConversationAttachment, error) {
	rows, err := s.db.Query(
		`SELECT `+attachmentCols+` FROM conversation_attachments WHERE message_id = ? ORDER BY id ASC`,
		messageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationAttachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
