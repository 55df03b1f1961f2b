package repository

import (
	"context"
	"errors"
	"fmt"

	"thrift-swap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `i.id, i.user_id, i.title, i.description, i.size, i.category, i.condition,
	i.image_url, i.price, i.is_active, i.created_at`

// ItemRepository handles database operations for clothing items
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

func scanItem(row pgx.Row, extra ...any) (*models.ClothingItem, error) {
	var item models.ClothingItem
	dest := []any{
		&item.ID, &item.UserID, &item.Title, &item.Description, &item.Size, &item.Category,
		&item.Condition, &item.ImageURL, &item.Price, &item.IsActive, &item.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create creates a new item
func (r *ItemRepository) Create(ctx context.Context, item *models.ClothingItem) error {
	query := `
		INSERT INTO clothing_items
			(id, user_id, title, description, size, category, condition, image_url, price, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.UserID, item.Title, item.Description, item.Size, item.Category,
		item.Condition, item.ImageURL, item.Price, item.IsActive, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.ClothingItem, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + itemColumns + ` FROM clothing_items i WHERE i.id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListByOwner returns every item of a user, active or not, newest first
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ClothingItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM clothing_items i
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC, i.id ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.ClothingItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// ListDiscoverable returns active items the user neither owns nor has swiped,
// newest first with id as the tiebreak
func (r *ItemRepository) ListDiscoverable(ctx context.Context, userID string, filter models.ItemFilter, limit int) ([]*models.ClothingItem, error) {
	query := `
		SELECT ` + itemColumns + `, p.display_name, p.avatar_url
		FROM clothing_items i
		LEFT JOIN profiles p ON p.id = i.user_id
		WHERE i.is_active
			AND i.user_id <> $1
			AND NOT EXISTS (
				SELECT 1 FROM swipes s WHERE s.item_id = i.id AND s.swiper_id = $1
			)
			AND ($2 = '' OR i.category = $2)
			AND ($3 = '' OR i.size = $3)
		ORDER BY i.created_at DESC, i.id ASC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, userID, filter.Category, filter.Size, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoverable items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.ClothingItem, 0, limit)
	for rows.Next() {
		var displayName, avatarURL *string
		item, err := scanItem(rows, &displayName, &avatarURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Owner = &models.ProfileSummary{ID: item.UserID, DisplayName: displayName, AvatarURL: avatarURL}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// SetActive flips the active flag of an item owned by ownerID
func (r *ItemRepository) SetActive(ctx context.Context, id, ownerID string, active bool) (*models.ClothingItem, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE clothing_items i SET is_active = $3
		WHERE i.id = $1 AND i.user_id = $2
		RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query, id, ownerID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// Delete removes an item owned by ownerID
func (r *ItemRepository) Delete(ctx context.Context, id, ownerID string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	query := `DELETE FROM clothing_items WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
