package models

import (
	"strings"
	"time"
)

// Profile represents the public profile of a user. The identity itself is
// owned by the external identity provider, the profile row shares its id.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName *string   `json:"display_name"`
	Bio         *string   `json:"bio"`
	Location    *string   `json:"location"`
	AvatarURL   *string   `json:"avatar_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileSummary is the subset of a profile embedded in feed and match rows
type ProfileSummary struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// Summary returns the embeddable part of the profile
func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

// ClothingItem represents a listed piece of clothing
type ClothingItem struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Size        *string         `json:"size"`
	Category    *string         `json:"category"`
	Condition   *string         `json:"condition"`
	ImageURL    *string         `json:"image_url"`
	Price       *float64        `json:"price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	Owner       *ProfileSummary `json:"owner,omitempty"`
}

// ItemFilter narrows the discovery feed. Empty fields match everything.
type ItemFilter struct {
	Category string
	Size     string
}

// Direction is the decision a user made on an item
type Direction string

const (
	// DirectionLeft is a pass
	DirectionLeft Direction = "left"
	// DirectionRight is a like
	DirectionRight Direction = "right"
)

// ParseDirection accepts left/right and the pass/like aliases
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "pass":
		return DirectionLeft, true
	case "right", "like":
		return DirectionRight, true
	}
	return "", false
}

// IsValid reports whether d is a known direction
func (d Direction) IsValid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// IsLike reports whether d is a right swipe
func (d Direction) IsLike() bool {
	return d == DirectionRight
}

// Swipe is an immutable record of a decision on an item
type Swipe struct {
	ID        string    `json:"id"`
	SwiperID  string    `json:"swiper_id"`
	ItemID    string    `json:"item_id"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemSummary is the subset of an item embedded in match rows
type ItemSummary struct {
	Title    string  `json:"title"`
	ImageURL *string `json:"image_url"`
}

// Match links the liker of an item with its owner
type Match struct {
	ID        string       `json:"id"`
	ItemID    string       `json:"item_id"`
	LikerID   string       `json:"liker_id"`
	OwnerID   string       `json:"owner_id"`
	CreatedAt time.Time    `json:"created_at"`
	Item      *ItemSummary `json:"clothing_items,omitempty"`
}

// HasParticipant reports whether userID is the liker or the owner
func (m *Match) HasParticipant(userID string) bool {
	return userID != "" && (m.LikerID == userID || m.OwnerID == userID)
}

// Counterpart returns the other participant's id
func (m *Match) Counterpart(userID string) string {
	if m.LikerID == userID {
		return m.OwnerID
	}
	return m.LikerID
}

// MatchView is a match as seen by one of its participants
type MatchView struct {
	Match
	OtherUser *ProfileSummary `json:"other_user"`
}

// Message is one entry in the conversation of a match
type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Seq       int64     `json:"-"`
}

// Catalogue values offered by the listing form
var (
	Categories = []string{"Tops", "Bottoms", "Dresses", "Outerwear", "Shoes", "Accessories", "Vintage", "Other"}
	Sizes      = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size"}
	Conditions = []string{"New with Tags", "Like New", "Good", "Fair", "Well-Loved"}
)
