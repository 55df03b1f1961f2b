package repository

import (
	"context"
	"fmt"

	"thrift-swap-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to its match
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if !isUUID(msg.MatchID) {
		return ErrNotFound
	}
	query := `
		INSERT INTO messages (id, match_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`
	err := r.db.QueryRow(ctx, query, msg.ID, msg.MatchID, msg.SenderID, msg.Content, msg.CreatedAt).Scan(&msg.Seq)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByMatch returns the conversation of a match in creation order, ties
// broken by insertion order
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.Message, error) {
	if !isUUID(matchID) {
		return []*models.Message{}, nil
	}
	query := `
		SELECT id, seq, match_id, sender_id, content, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Seq, &m.MatchID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
