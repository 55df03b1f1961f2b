package repository

import (
	"context"
	"sort"
	"sync"

	"thrift-swap-backend/internal/models"
)

type swipeKey struct {
	swiperID string
	itemID   string
}

type matchKey struct {
	itemID  string
	likerID string
}

// MemoryStore keeps all tables in-process. A single lock guards every table
// so the uniqueness rules hold under concurrent requests just as the
// Postgres constraints do.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
	items    map[string]models.ClothingItem
	swipes   map[swipeKey]models.Swipe
	matches  map[string]models.Match
	pairs    map[matchKey]string // (item, liker) -> match ID
	messages map[string][]models.Message
	seq      int64
}

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.Profile),
		items:    make(map[string]models.ClothingItem),
		swipes:   make(map[swipeKey]models.Swipe),
		matches:  make(map[string]models.Match),
		pairs:    make(map[matchKey]string),
		messages: make(map[string][]models.Message),
	}
}

// Profiles returns the profile table
func (s *MemoryStore) Profiles() *MemoryProfiles { return &MemoryProfiles{s} }

// Items returns the item table
func (s *MemoryStore) Items() *MemoryItems { return &MemoryItems{s} }

// Swipes returns the swipe table
func (s *MemoryStore) Swipes() *MemorySwipes { return &MemorySwipes{s} }

// Matches returns the match table
func (s *MemoryStore) Matches() *MemoryMatches { return &MemoryMatches{s} }

// Messages returns the message table
func (s *MemoryStore) Messages() *MemoryMessages { return &MemoryMessages{s} }

// MemoryProfiles is the in-memory profile table
type MemoryProfiles struct{ s *MemoryStore }

// GetByID retrieves a profile by user ID
func (t *MemoryProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	p, ok := t.s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// EnsureExists creates an empty profile for the user if none exists yet
func (t *MemoryProfiles) EnsureExists(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.profiles[id]; !ok {
		t.s.profiles[id] = models.Profile{ID: id}
	}
	return nil
}

// Upsert writes all mutable profile fields
func (t *MemoryProfiles) Upsert(_ context.Context, p *models.Profile) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.profiles[p.ID] = *p
	return nil
}

// GetMany returns the profiles that exist for the given ids, keyed by id
func (t *MemoryProfiles) GetMany(_ context.Context, ids []string) (map[string]*models.Profile, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	out := make(map[string]*models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := t.s.profiles[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

// MemoryItems is the in-memory item table
type MemoryItems struct{ s *MemoryStore }

// Create creates a new item
func (t *MemoryItems) Create(_ context.Context, item *models.ClothingItem) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.items[item.ID]; ok {
		return ErrDuplicate
	}
	stored := *item
	stored.Owner = nil
	t.s.items[item.ID] = stored
	return nil
}

// GetByID retrieves an item by ID
func (t *MemoryItems) GetByID(_ context.Context, id string) (*models.ClothingItem, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	item, ok := t.s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

// ListByOwner returns every item of a user, active or not, newest first
func (t *MemoryItems) ListByOwner(_ context.Context, ownerID string) ([]*models.ClothingItem, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	items := make([]*models.ClothingItem, 0)
	for _, item := range t.s.items {
		item := item
		if item.UserID == ownerID {
			items = append(items, &item)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

// ListDiscoverable returns active items the user neither owns nor has swiped,
// newest first with id as the tiebreak
func (t *MemoryItems) ListDiscoverable(_ context.Context, userID string, filter models.ItemFilter, limit int) ([]*models.ClothingItem, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	items := make([]*models.ClothingItem, 0)
	for _, item := range t.s.items {
		item := item
		if !item.IsActive || item.UserID == userID {
			continue
		}
		if _, swiped := t.s.swipes[swipeKey{swiperID: userID, itemID: item.ID}]; swiped {
			continue
		}
		if filter.Category != "" && (item.Category == nil || *item.Category != filter.Category) {
			continue
		}
		if filter.Size != "" && (item.Size == nil || *item.Size != filter.Size) {
			continue
		}
		owner := &models.ProfileSummary{ID: item.UserID}
		if p, ok := t.s.profiles[item.UserID]; ok {
			owner = p.Summary()
		}
		item.Owner = owner
		items = append(items, &item)
	}
	sortNewestFirst(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func sortNewestFirst(items []*models.ClothingItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

// SetActive flips the active flag of an item owned by ownerID
func (t *MemoryItems) SetActive(_ context.Context, id, ownerID string, active bool) (*models.ClothingItem, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	item, ok := t.s.items[id]
	if !ok || item.UserID != ownerID {
		return nil, ErrNotFound
	}
	item.IsActive = active
	t.s.items[id] = item
	return &item, nil
}

// Delete removes an item owned by ownerID together with its swipes
func (t *MemoryItems) Delete(_ context.Context, id, ownerID string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	item, ok := t.s.items[id]
	if !ok || item.UserID != ownerID {
		return ErrNotFound
	}
	delete(t.s.items, id)
	for k := range t.s.swipes {
		if k.itemID == id {
			delete(t.s.swipes, k)
		}
	}
	return nil
}

// MemorySwipes is the in-memory swipe table
type MemorySwipes struct{ s *MemoryStore }

// Create inserts the swipe unless the swiper already swiped the item. The
// stored swipe is returned either way, created reports whether it is new.
func (t *MemorySwipes) Create(_ context.Context, swipe *models.Swipe) (*models.Swipe, bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.items[swipe.ItemID]; !ok {
		return nil, false, ErrNotFound
	}
	key := swipeKey{swiperID: swipe.SwiperID, itemID: swipe.ItemID}
	if existing, ok := t.s.swipes[key]; ok {
		return &existing, false, nil
	}
	stored := *swipe
	t.s.swipes[key] = stored
	return &stored, true, nil
}

// Count returns the number of stored swipes
func (t *MemorySwipes) Count() int {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return len(t.s.swipes)
}

// MemoryMatches is the in-memory match table
type MemoryMatches struct{ s *MemoryStore }

// withItem attaches the item summary while the read lock is held
func (t *MemoryMatches) withItem(m models.Match) *models.Match {
	if item, ok := t.s.items[m.ItemID]; ok {
		m.Item = &models.ItemSummary{Title: item.Title, ImageURL: item.ImageURL}
	}
	return &m
}

// Create inserts the match unless one already exists for (item, liker). The
// stored match is returned either way, created reports whether it is new.
func (t *MemoryMatches) Create(_ context.Context, match *models.Match) (*models.Match, bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	key := matchKey{itemID: match.ItemID, likerID: match.LikerID}
	if id, ok := t.s.pairs[key]; ok {
		return t.withItem(t.s.matches[id]), false, nil
	}
	stored := *match
	stored.Item = nil
	t.s.matches[stored.ID] = stored
	t.s.pairs[key] = stored.ID
	return t.withItem(stored), true, nil
}

// GetForParticipant retrieves a match only if userID is its liker or owner
func (t *MemoryMatches) GetForParticipant(_ context.Context, id, userID string) (*models.Match, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	m, ok := t.s.matches[id]
	if !ok || !m.HasParticipant(userID) {
		return nil, ErrNotFound
	}
	return t.withItem(m), nil
}

// ListForUser returns the matches a user takes part in, newest first
func (t *MemoryMatches) ListForUser(_ context.Context, userID string) ([]*models.Match, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	matches := make([]*models.Match, 0)
	for _, m := range t.s.matches {
		if m.HasParticipant(userID) {
			matches = append(matches, t.withItem(m))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// Count returns the number of stored matches
func (t *MemoryMatches) Count() int {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return len(t.s.matches)
}

// MemoryMessages is the in-memory message table
type MemoryMessages struct{ s *MemoryStore }

// Create appends a message to its match
func (t *MemoryMessages) Create(_ context.Context, msg *models.Message) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.matches[msg.MatchID]; !ok {
		return ErrNotFound
	}
	t.s.seq++
	msg.Seq = t.s.seq
	t.s.messages[msg.MatchID] = append(t.s.messages[msg.MatchID], *msg)
	return nil
}

// ListByMatch returns the conversation of a match in creation order, ties
// broken by insertion order
func (t *MemoryMessages) ListByMatch(_ context.Context, matchID string) ([]*models.Message, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	stored := t.s.messages[matchID]
	out := make([]*models.Message, 0, len(stored))
	for i := range stored {
		m := stored[i]
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}
