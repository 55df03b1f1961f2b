package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/metrics"
	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/ratelimit"
	"thrift-swap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the router serves
type Services struct {
	Identity     *services.IdentityService
	Profiles     *services.ProfileService
	Items        *services.ItemService
	Swipes       *services.SwipeService
	Matches      *services.MatchService
	Conversation *services.ConversationService
	Discovery    *services.DiscoveryService
	Images       *services.ImageResolver
	Hub          *services.WSHub
	Limiter      ratelimit.Limiter
	Ready        func(r *http.Request) error
}

// NewRouter builds the HTTP router
func NewRouter(s Services) http.Handler {
	discoverHandler := NewDiscoverHandler(s.Discovery)
	swipeHandler := NewSwipeHandler(s.Swipes)
	matchHandler := NewMatchHandler(s.Matches)
	messageHandler := NewMessageHandler(s.Conversation)
	itemHandler := NewItemHandler(s.Items)
	profileHandler := NewProfileHandler(s.Profiles, s.Images)
	authHandler := NewAuthHandler(s.Identity)
	wsHandler := NewWebSocketHandler(s.Hub, s.Identity)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", healthHandler(s.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The token travels in the query string
		r.Get("/ws", wsHandler.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(s.Identity))
			r.Use(middleware.RateLimit(s.Limiter))

			r.Get("/discover", discoverHandler.GetFeed)
			r.Post("/swipe", swipeHandler.Swipe)
			r.Get("/matches", matchHandler.ListMatches)
			r.Get("/messages/{matchId}", messageHandler.ListMessages)
			r.Post("/messages/{matchId}", messageHandler.PostMessage)

			r.Get("/items", itemHandler.ListItems)
			r.Post("/items", itemHandler.CreateItem)
			r.Delete("/items", itemHandler.DeleteItem)
			r.Delete("/items/{id}", itemHandler.DeleteItemByID)
			r.Patch("/items/{id}", itemHandler.UpdateItem)

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)

			r.Post("/auth/signout", authHandler.SignOut)
		})
	})

	return r
}

// healthHandler reports 200 when ready is nil or succeeds
func healthHandler(ready func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
