package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thrift-swap-backend/internal/config"
	"thrift-swap-backend/internal/handlers"
	"thrift-swap-backend/internal/ratelimit"
	"thrift-swap-backend/internal/repository"
	"thrift-swap-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// stores is the storage backend the services run on
type stores struct {
	profiles services.ProfileStore
	items    services.ItemStore
	swipes   services.SwipeStore
	matches  services.MatchStore
	messages services.MessageStore
	ping     func(ctx context.Context) error
	close    func()
}

func Run() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to storage
	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer st.close()

	// Connect to Redis
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to ping redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	}

	// Initialize infrastructure services
	var revoker services.TokenRevoker = services.NewMemoryTokenRevoker()
	if redisClient != nil {
		revoker, err = services.NewRedisTokenRevoker(redisClient, cfg.Redis.Prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create token revoker")
		}
	}
	limiter := newLimiter(cfg, redisClient)
	if local, ok := limiter.(*ratelimit.LocalLimiter); ok {
		defer local.Stop()
	}

	images, err := services.NewImageResolver(ctx, services.ImageOptions{
		Region:     cfg.AWS.Region,
		Bucket:     cfg.AWS.S3Bucket,
		AccessKey:  cfg.AWS.AccessKey,
		SecretKey:  cfg.AWS.SecretKey,
		Endpoint:   cfg.AWS.Endpoint,
		PresignTTL: cfg.AWS.PresignTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image resolver")
	}

	wsHub := services.NewWSHub()
	notifiers := services.Notifiers{wsHub}
	if cfg.NATS.URL != "" {
		publisher, err := services.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.Info().Str("url", cfg.NATS.URL).Msg("NATS publisher connected")
	}

	// Initialize services
	identityService := services.NewIdentityService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, revoker)
	matchService := services.NewMatchService(st.items, st.matches, st.profiles, notifiers, images)

	router := handlers.NewRouter(handlers.Services{
		Identity:     identityService,
		Profiles:     services.NewProfileService(st.profiles),
		Items:        services.NewItemService(st.items, images),
		Swipes:       services.NewSwipeService(st.items, st.swipes, matchService),
		Matches:      matchService,
		Conversation: services.NewConversationService(matchService, st.messages, notifiers),
		Discovery:    services.NewDiscoveryService(st.items, images),
		Images:       images,
		Hub:          wsHub,
		Limiter:      limiter,
		Ready: func(r *http.Request) error {
			return st.ping(r.Context())
		},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("database", cfg.Database.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server exited")
}

// openStores connects the configured storage backend
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{
			profiles: mem.Profiles(),
			items:    mem.Items(),
			swipes:   mem.Swipes(),
			matches:  mem.Matches(),
			messages: mem.Messages(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		profiles: repository.NewProfileRepository(db),
		items:    repository.NewItemRepository(db),
		swipes:   repository.NewSwipeRepository(db),
		matches:  repository.NewMatchRepository(db),
		messages: repository.NewMessageRepository(db),
		ping:     db.Ping,
		close:    db.Close,
	}, nil
}

// newLimiter picks the shared Redis limiter when Redis is configured and a
// per-process one otherwise. It returns nil when limiting is off.
func newLimiter(cfg *config.Config, client *redis.Client) ratelimit.Limiter {
	if cfg.RateLimit.Requests <= 0 {
		return nil
	}
	if client != nil {
		limiter, err := ratelimit.NewRedisLimiter(client, cfg.Redis.Prefix, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create rate limiter")
		}
		return limiter
	}
	return ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, 2*time.Minute)
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
