package repository

import (
	"context"
	"errors"
	"fmt"

	"thrift-swap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchSelect = `
	SELECT m.id, m.item_id, m.liker_id, m.owner_id, m.created_at, i.title, i.image_url
	FROM matches m
	LEFT JOIN clothing_items i ON i.id = m.item_id
`

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	var title, imageURL *string
	if err := row.Scan(&m.ID, &m.ItemID, &m.LikerID, &m.OwnerID, &m.CreatedAt, &title, &imageURL); err != nil {
		return nil, err
	}
	if title != nil {
		m.Item = &models.ItemSummary{Title: *title, ImageURL: imageURL}
	}
	return &m, nil
}

// Create inserts the match unless one already exists for (item, liker). The
// stored match is returned either way, created reports whether it is new.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	query := `
		INSERT INTO matches (id, item_id, liker_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id, liker_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, match.ID, match.ItemID, match.LikerID, match.OwnerID, match.CreatedAt)
	created := err == nil && result.RowsAffected() == 1
	if err != nil && !IsUniqueViolation(err) {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}

	stored, err := r.getOne(ctx, `WHERE m.item_id = $1 AND m.liker_id = $2`, match.ItemID, match.LikerID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetForParticipant retrieves a match only if userID is its liker or owner
func (r *MatchRepository) GetForParticipant(ctx context.Context, id, userID string) (*models.Match, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE m.id = $1 AND (m.liker_id = $2 OR m.owner_id = $2)`, id, userID)
}

func (r *MatchRepository) getOne(ctx context.Context, where string, args ...any) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRow(ctx, matchSelect+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// ListForUser returns the matches a user takes part in, newest first
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]*models.Match, error) {
	query := matchSelect + `
		WHERE m.liker_id = $1 OR m.owner_id = $1
		ORDER BY m.created_at DESC, m.id ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}
