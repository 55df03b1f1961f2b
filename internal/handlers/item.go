package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ItemHandler handles the caller's own listings
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Price accepts a JSON number, a numeric string or null. Listing forms send
// the price as typed text.
type Price struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		p.Value = nil
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
		if raw == "" {
			p.Value = nil
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid price %q", raw)
	}
	p.Value = &v
	return nil
}

// CreateItemRequest represents the request body for listing an item
type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	ImageURL    string `json:"image_url"`
	Price       Price  `json:"price"`
}

// DeleteItemRequest represents the request body for DELETE /items
type DeleteItemRequest struct {
	ID string `json:"id"`
}

// UpdateItemRequest represents the request body for PATCH /items/{id}
type UpdateItemRequest struct {
	IsActive *bool `json:"is_active"`
}

// ItemsResponse is the body of GET /items
type ItemsResponse struct {
	Items []*models.ClothingItem `json:"items"`
}

// ItemResponse wraps a single item
type ItemResponse struct {
	Item *models.ClothingItem `json:"item"`
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	items, err := h.itemService.ListOwn(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "list items")
		return
	}

	respondJSON(w, http.StatusOK, ItemsResponse{Items: items})
}

// CreateItem handles POST /api/v1/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.itemService.Create(ctx, userID, services.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Size:        req.Size,
		Category:    req.Category,
		Condition:   req.Condition,
		ImageURL:    req.ImageURL,
		Price:       req.Price.Value,
	})
	if err != nil {
		respondServiceError(w, r, err, "create item")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("item_id", item.ID).
		Msg("Item created")

	respondJSON(w, http.StatusCreated, ItemResponse{Item: item})
}

// DeleteItem handles DELETE /api/v1/items with an {"id"} body
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req DeleteItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.deleteItem(w, r, req.ID)
}

// DeleteItemByID handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItemByID(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(w, r, chi.URLParam(r, "id"))
}

func (h *ItemHandler) deleteItem(w http.ResponseWriter, r *http.Request, itemID string) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.itemService.Delete(ctx, userID, itemID); err != nil {
		respondServiceError(w, r, err, "delete item")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("item_id", itemID).
		Msg("Item deleted")

	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// UpdateItem handles PATCH /api/v1/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	itemID := chi.URLParam(r, "id")

	var req UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		respondError(w, "is_active is required", http.StatusBadRequest)
		return
	}

	item, err := h.itemService.SetActive(ctx, userID, itemID, *req.IsActive)
	if err != nil {
		respondServiceError(w, r, err, "update item")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("item_id", itemID).
		Bool("is_active", item.IsActive).
		Msg("Item updated")

	respondJSON(w, http.StatusOK, ItemResponse{Item: item})
}
