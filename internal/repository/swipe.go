package repository

import (
	"context"
	"errors"
	"fmt"

	"thrift-swap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for swipes
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create inserts the swipe unless the swiper already swiped the item. The
// stored swipe is returned either way, created reports whether it is new.
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) (*models.Swipe, bool, error) {
	if !isUUID(swipe.ItemID) {
		return nil, false, ErrNotFound
	}
	query := `
		INSERT INTO swipes (id, swiper_id, item_id, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (swiper_id, item_id) DO NOTHING
		RETURNING id, swiper_id, item_id, direction, created_at
	`
	var s models.Swipe
	err := r.db.QueryRow(ctx, query,
		swipe.ID, swipe.SwiperID, swipe.ItemID, swipe.Direction, swipe.CreatedAt,
	).Scan(&s.ID, &s.SwiperID, &s.ItemID, &s.Direction, &s.CreatedAt)
	switch {
	case err == nil:
		return &s, true, nil
	case errors.Is(err, pgx.ErrNoRows), IsUniqueViolation(err):
		existing, err := r.GetBySwiperAndItem(ctx, swipe.SwiperID, swipe.ItemID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case isForeignKeyViolation(err):
		return nil, false, ErrNotFound
	default:
		return nil, false, fmt.Errorf("failed to create swipe: %w", err)
	}
}

// GetBySwiperAndItem retrieves the swipe a user made on an item
func (r *SwipeRepository) GetBySwiperAndItem(ctx context.Context, swiperID, itemID string) (*models.Swipe, error) {
	query := `
		SELECT id, swiper_id, item_id, direction, created_at
		FROM swipes
		WHERE swiper_id = $1 AND item_id = $2
	`
	var s models.Swipe
	err := r.db.QueryRow(ctx, query, swiperID, itemID).Scan(
		&s.ID, &s.SwiperID, &s.ItemID, &s.Direction, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get swipe: %w", err)
	}
	return &s, nil
}
