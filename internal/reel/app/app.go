package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/reel/internal/reel/http"
	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/internal/reel/player"
	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	redisdriver "github.com/aussiebroadwan/reel/internal/reel/store/drivers/redis"
	"github.com/aussiebroadwan/reel/internal/reel/store/drivers/sqlite"
	"github.com/aussiebroadwan/reel/pkg/cryptox"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the video delivery service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	tickets   store.Tickets
	redis     *goredis.Client // nil unless TICKET_STORE=redis
	objects   media.ObjectStore
	keySource media.KeyMaterial
	linkCodec *jwtx.LinkCodec

	// Principal verification
	principalKeys *jwtx.KeySet
	verifier      *jwtx.PrincipalVerifier
	jwksRefresher *JWKSRefresher

	// Services
	gateway             *service.Gateway
	ticketService       *service.TicketService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "reel",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initTicketStore(ctx); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initMedia(ctx); err != nil {
		app.closeStores()
		return nil, err
	}

	codec, err := InitLinkCodec(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize link keys: %w", err)
	}
	app.linkCodec = codec

	app.principalKeys, app.verifier, app.jwksRefresher, err = InitPrincipalKeys(ctx, app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize principal keys: %w", err)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("reel service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"ticket_store", app.cfg.TicketStore,
		"object_store", app.cfg.ObjectStore,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return app.jwksRefresher.Run(gctx)
	})

	// Block until we receive a shutdown signal or a worker fails
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			app.logger.Info("shutdown signal received")
		}
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down reel service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slogx.Err(err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slogx.Err(err))
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("reel service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", slogx.Err(err))
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", slogx.Err(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase opens the directory and ticket database, applies migrations
// and loads the optional directory seed. On failure the database is closed
// and app.db stays nil.
func (app *Application) initDatabase(ctx context.Context) error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.prepareDatabase(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	app.db = db
	return nil
}

func (app *Application) prepareDatabase(ctx context.Context, db *sqlite.Store) error {
	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	if app.cfg.DirectorySeedFile == "" {
		return nil
	}
	seed, err := LoadDirectorySeed(app.cfg.DirectorySeedFile)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, db); err != nil {
		return fmt.Errorf("failed to apply directory seed: %w", err)
	}
	app.logger.Info("directory seed applied",
		"viewers", len(seed.Viewers),
		"sessions", len(seed.Sessions),
	)
	return nil
}

func (app *Application) initTicketStore(ctx context.Context) error {
	switch app.cfg.TicketStore {
	case "redis":
		if app.cfg.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when TICKET_STORE=redis")
		}
		app.redis = goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
		}

		app.tickets = redisdriver.NewTicketsRepository(app.redis, app.cfg.RedisKeyPrefix)
		app.logger.Info("ticket store: redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)

	case "sqlite", "":
		app.tickets = app.db.Tickets()
		app.logger.Info("ticket store: sqlite")

	default:
		return fmt.Errorf("unknown TICKET_STORE %q", app.cfg.TicketStore)
	}
	return nil
}

// initMedia wires the object store for manifests and segments and the
// source of AES content keys.
func (app *Application) initMedia(ctx context.Context) error {
	switch app.cfg.ObjectStore {
	case "s3":
		objects, err := media.NewS3Store(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize s3 object store: %w", err)
		}
		app.objects = objects
		app.logger.Info("object store: s3", "bucket", app.cfg.S3.Bucket, "endpoint", app.cfg.S3.Endpoint)

	case "fs", "":
		objects, err := media.NewFSStore(app.cfg.ObjectStoreDir)
		if err != nil {
			return fmt.Errorf("failed to initialize object store: %w", err)
		}
		app.objects = objects
		app.logger.Info("object store: filesystem", "root", app.cfg.ObjectStoreDir)

	default:
		return fmt.Errorf("unknown OBJECT_STORE %q", app.cfg.ObjectStore)
	}

	keys := &media.KeyStore{}
	if app.cfg.KeyMasterSecret != "" {
		sealer, err := cryptox.NewSealer([]byte(app.cfg.KeyMasterSecret))
		if err != nil {
			return fmt.Errorf("KEY_MASTER_SECRET: %w", err)
		}
		keys.Sealer = sealer
	}

	switch app.cfg.KeySource {
	case "object":
		keys.Store = app.objects
		keys.Prefix = "keys/"
	case "fs", "":
		dir, err := media.NewFSStore(app.cfg.KeyDir)
		if err != nil {
			return fmt.Errorf("failed to open key directory: %w", err)
		}
		keys.Store = dir
	default:
		return fmt.Errorf("unknown KEY_SOURCE %q", app.cfg.KeySource)
	}
	app.keySource = keys
	app.logger.Info("key source configured", "source", app.cfg.KeySource, "sealed", keys.Sealer != nil)

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.gateway = &service.Gateway{
		Directory: app.db.Directory(),
		Codec:     app.linkCodec,
		Objects:   app.objects,
		Keys:      app.keySource,
		Config: service.GatewayConfig{
			PublicBaseURL: app.cfg.PublicBaseURL,
			TokenTTL:      app.cfg.HLSTokenTTL,
			SegmentExt:    app.cfg.SegmentExtension,
		},
	}

	if app.cfg.PlayerSecurityKey == "" {
		app.logger.Warn("PLAYER_SECURITY_KEY not set, redeemed player links will be rejected by the video host")
	}
	app.ticketService = &service.TicketService{
		Tickets: app.tickets,
		Signer: player.Signer{
			SecurityKey: app.cfg.PlayerSecurityKey,
			BaseURL:     app.cfg.PlayerBaseURL,
			TTL:         app.cfg.PlayerLinkTTL,
		},
		Config: service.TicketConfig{
			PublicBaseURL: app.cfg.PublicBaseURL,
			TTL:           app.cfg.TicketTTL,
		},
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.tickets,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.TicketRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.principalKeys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Gateway = app.gateway
	router.TicketService = app.ticketService
	router.Limits = httpapi.RateLimits{
		Media:  app.cfg.RateLimitMedia,
		Mint:   app.cfg.RateLimitMint,
		Redeem: app.cfg.RateLimitRedeem,
		Admin:  app.cfg.RateLimitAdmin,
		Health: router.Limits.Health,
	}
	if app.redis != nil {
		router.TicketStorePing = func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		}
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server. No WriteTimeout: segment responses stream for
	// as long as the player keeps reading.
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
