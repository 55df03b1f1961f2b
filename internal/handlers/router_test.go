package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"thrift-swap-backend/internal/ratelimit"
	"thrift-swap-backend/internal/repository"
	"thrift-swap-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	identity *services.IdentityService
	store    *repository.MemoryStore
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	identity := services.NewIdentityService("handler-secret", "", nil)
	images, err := services.NewImageResolver(context.Background(), services.ImageOptions{})
	require.NoError(t, err)
	hub := services.NewWSHub()

	matches := services.NewMatchService(store.Items(), store.Matches(), store.Profiles(), hub, images)
	handler := NewRouter(Services{
		Identity:     identity,
		Profiles:     services.NewProfileService(store.Profiles()),
		Items:        services.NewItemService(store.Items(), images),
		Swipes:       services.NewSwipeService(store.Items(), store.Swipes(), matches),
		Matches:      matches,
		Conversation: services.NewConversationService(matches, store.Messages(), hub),
		Discovery:    services.NewDiscoveryService(store.Items(), images),
		Images:       images,
		Hub:          hub,
		Limiter:      limiter,
	})
	return &testServer{handler: handler, identity: identity, store: store}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.identity.GenerateJWT(userID, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestExchangeFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	alice, bob := srv.token(t, "user-a"), srv.token(t, "user-b")

	rec := srv.do(t, http.MethodPost, "/api/v1/items", alice, map[string]interface{}{
		"title":     "Vintage Jacket",
		"category":  "Outerwear",
		"size":      "M",
		"condition": "Good",
		"price":     "25.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[ItemResponse](t, rec).Item
	require.NotNil(t, item.Price)
	assert.Equal(t, 25.5, *item.Price)

	rec = srv.do(t, http.MethodGet, "/api/v1/discover", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[FeedResponse](t, rec)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, item.ID, feed.Items[0].ID)

	rec = srv.do(t, http.MethodGet, "/api/v1/discover", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: item.ID, Direction: "right"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[SwipeResponse](t, rec)
	assert.True(t, first.Success)
	require.NotNil(t, first.Match)
	assert.Equal(t, "user-a", first.Match.OwnerID)
	assert.Equal(t, "user-b", first.Match.LikerID)

	rec = srv.do(t, http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: item.ID, Direction: "like"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[SwipeResponse](t, rec)
	require.NotNil(t, second.Match)
	assert.Equal(t, first.Match.ID, second.Match.ID)
	assert.Equal(t, 1, srv.store.Matches().Count())

	rec = srv.do(t, http.MethodGet, "/api/v1/discover", bob, nil)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/messages/"+first.Match.ID, bob, PostMessageRequest{Content: "Is this still available?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/messages/"+first.Match.ID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[MessagesResponse](t, rec)
	assert.Equal(t, "user-a", thread.UserID)
	require.NotNil(t, thread.Match)
	assert.Equal(t, first.Match.ID, thread.Match.ID)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "Is this still available?", thread.Messages[0].Content)
	assert.Equal(t, "user-b", thread.Messages[0].SenderID)

	rec = srv.do(t, http.MethodGet, "/api/v1/matches", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decode[MatchesResponse](t, rec)
	require.Len(t, matches.Matches, 1)
	require.NotNil(t, matches.Matches[0].OtherUser)
	assert.Equal(t, "user-b", matches.Matches[0].OtherUser.ID)
	assert.Contains(t, rec.Body.String(), `"other_user"`)
	assert.Contains(t, rec.Body.String(), `"Vintage Jacket"`)
}

func TestSwipeResponseWithoutMatch(t *testing.T) {
	srv := newTestServer(t, nil)
	alice, bob := srv.token(t, "user-a"), srv.token(t, "user-b")

	rec := srv.do(t, http.MethodPost, "/api/v1/items", alice, map[string]string{"title": "Scarf"})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[ItemResponse](t, rec).Item

	rec = srv.do(t, http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: item.ID, Direction: "left"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"match":null}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/swipe", alice, SwipeRequest{ItemID: item.ID, Direction: "right"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"match":null}`, rec.Body.String())
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t, nil)
	alice, bob, carol := srv.token(t, "user-a"), srv.token(t, "user-b"), srv.token(t, "user-c")

	rec := srv.do(t, http.MethodPost, "/api/v1/items", alice, map[string]string{"title": "Boots"})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[ItemResponse](t, rec).Item
	rec = srv.do(t, http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: item.ID, Direction: "right"})
	require.Equal(t, http.StatusOK, rec.Code)
	match := decode[SwipeResponse](t, rec).Match
	require.NotNil(t, match)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{"no token", http.MethodGet, "/api/v1/discover", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/matches", "garbage", nil, http.StatusUnauthorized},
		{"bad json", http.MethodPost, "/api/v1/swipe", bob, "{", http.StatusBadRequest},
		{"missing item", http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{Direction: "right"}, http.StatusBadRequest},
		{"bad direction", http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: item.ID, Direction: "up"}, http.StatusBadRequest},
		{"unknown item", http.MethodPost, "/api/v1/swipe", bob, SwipeRequest{ItemID: "6f1c1d3e-8d2b-4b8e-9a47-3f1d2b8c9e10", Direction: "right"}, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/v1/discover?limit=abc", bob, nil, http.StatusBadRequest},
		{"stranger lists", http.MethodGet, "/api/v1/messages/" + match.ID, carol, nil, http.StatusNotFound},
		{"stranger posts", http.MethodPost, "/api/v1/messages/" + match.ID, carol, PostMessageRequest{Content: "hi"}, http.StatusNotFound},
		{"empty message", http.MethodPost, "/api/v1/messages/" + match.ID, bob, PostMessageRequest{Content: "   "}, http.StatusBadRequest},
		{"unknown match", http.MethodGet, "/api/v1/messages/nope", bob, nil, http.StatusNotFound},
		{"missing title", http.MethodPost, "/api/v1/items", alice, map[string]string{"title": ""}, http.StatusBadRequest},
		{"bad price", http.MethodPost, "/api/v1/items", alice, map[string]string{"title": "Hat", "price": "cheap"}, http.StatusBadRequest},
		{"delete other", http.MethodDelete, "/api/v1/items", bob, DeleteItemRequest{ID: item.ID}, http.StatusNotFound},
		{"delete no id", http.MethodDelete, "/api/v1/items", alice, DeleteItemRequest{}, http.StatusBadRequest},
		{"patch no flag", http.MethodPatch, "/api/v1/items/" + item.ID, alice, map[string]string{}, http.StatusBadRequest},
		{"patch other", http.MethodPatch, "/api/v1/items/" + item.ID, bob, map[string]bool{"is_active": false}, http.StatusNotFound},
		{"long bio", http.MethodPut, "/api/v1/profile", alice, services.ProfileInput{Bio: strings.Repeat("b", 501)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/messages/"+match.ID, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[MessagesResponse](t, rec).Messages)
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	alice, bob := srv.token(t, "user-a"), srv.token(t, "user-b")

	rec := srv.do(t, http.MethodPost, "/api/v1/items", alice, map[string]interface{}{"title": "Dress", "price": 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[ItemResponse](t, rec).Item

	rec = srv.do(t, http.MethodPatch, "/api/v1/items/"+item.ID, alice, map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ItemResponse](t, rec).Item.IsActive)

	rec = srv.do(t, http.MethodGet, "/api/v1/discover", bob, nil)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/items", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[ItemsResponse](t, rec).Items, 1)

	rec = srv.do(t, http.MethodDelete, "/api/v1/items/"+item.ID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = srv.do(t, http.MethodDelete, "/api/v1/items", alice, DeleteItemRequest{ID: item.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileAndSignOut(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.token(t, "user-a")

	rec := srv.do(t, http.MethodGet, "/api/v1/profile", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-a", decode[ProfileResponse](t, rec).Profile.ID)

	rec = srv.do(t, http.MethodPut, "/api/v1/profile", alice, services.ProfileInput{DisplayName: "Alice", Location: "Leeds"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[ProfileResponse](t, rec).Profile
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Alice", *profile.DisplayName)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/signout", alice, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/profile", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestRateLimitedRequests(t *testing.T) {
	srv := newTestServer(t, denyAll{})
	rec := srv.do(t, http.MethodGet, "/api/v1/matches", srv.token(t, "user-a"), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	srv.do(t, http.MethodGet, "/api/v1/matches", srv.token(t, "user-a"), nil)
	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = srv.do(t, http.MethodOptions, "/api/v1/swipe", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketRequiresToken(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/api/v1/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/ws?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
		err  bool
	}{
		{`null`, nil, false},
		{`12.5`, ptr(12.5), false},
		{`"12.50"`, ptr(12.5), false},
		{`"$8"`, ptr(8), false},
		{`""`, nil, false},
		{`"free"`, nil, true},
		{`true`, nil, true},
	}
	for _, tt := range tests {
		var p Price
		err := json.Unmarshal([]byte(tt.in), &p)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, p.Value, tt.in)
	}
}

func ptr(v float64) *float64 { return &v }
