package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/activation_api/internal/models"
)

// ChatMessageRepository persists document chat messages.
type ChatMessageRepository struct {
	db *sqlx.DB
}

// NewChatMessageRepository creates a new ChatMessageRepository.
func NewChatMessageRepository(db *sqlx.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create stores a message and fills its id and timestamp.
func (r *ChatMessageRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO chat_messages (document_id, sender_id, sender_kind, sender_name, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.DocumentID, m.SenderID, m.SenderKind, m.SenderName, m.Body,
	).Scan(&m.ID, &m.CreatedAt)
}

// ListByDocument returns up to limit messages with id > afterID, oldest first.
func (r *ChatMessageRepository) ListByDocument(ctx context.Context, documentID int, afterID int64, limit int) ([]models.ChatMessage, error) {
	if limit < 1 || limit > 500 {
		limit = 500
	}
	var messages []models.ChatMessage
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM chat_messages
		WHERE document_id = $1 AND id > $2
		ORDER BY id
		LIMIT $3`, documentID, afterID, limit)
	return messages, err
}
