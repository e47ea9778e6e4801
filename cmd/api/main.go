// Package main provides the entry point for the Floorkeeper API server
// @title Floorkeeper API
// @version 1.0
// @description Restaurant floor reservations and blocks.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
// @Security BearerAuth
package main

import (
	"context"
	"flag"
	"floorkeeper/internal/api/routes"
	"floorkeeper/internal/api/server"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/cache"
	"floorkeeper/internal/config"
	"floorkeeper/internal/database"
	"floorkeeper/internal/events"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/repository/memory"
	"floorkeeper/internal/repository/postgres"
	"floorkeeper/internal/scheduler"
	"floorkeeper/internal/validation"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	envFile := flag.String("env", ".env", "Path to env file")
	flag.Parse()

	// Load environment file
	if err := godotenv.Load(*envFile); err != nil && *envFile == ".env" {
		log.Printf("Warning: %v", err)
	}

	// Load configuration
	cfg := &config.Config{}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize validators
	validation.Initialize()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, users, closeStore := openStore(ctx, cfg)
	defer closeStore()

	authService := auth.NewService(cfg.Auth, users)
	if err := authService.EnsureAdmin(ctx); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	publisher := newPublisher(cfg.Events)
	defer publisher.Close()

	var listCache *cache.ListCache
	if cfg.Cache.Enabled {
		// A nil client must not reach cache.New as a non-nil interface
		if rdb := cache.NewRedisClient(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}); rdb != nil {
			defer rdb.Close()
			listCache = cache.New(rdb, cfg.Cache.Prefix, cfg.Cache.TTL)
		}
	}

	bookingService := booking.NewService(repos, booking.Options{
		Location:                  cfg.Engine.Location(),
		ExclusiveZones:            cfg.Engine.ZoneReservationPolicy == config.ZonePolicyExclusive,
		DefaultReservationMinutes: cfg.Engine.DefaultReservationMinutes,
		Publisher:                 publisher,
	})

	if cfg.Engine.SweepEnabled {
		jobs := scheduler.NewManager()
		jobs.Register(booking.NewSweeper(bookingService), scheduler.Config{
			Schedule: cfg.Engine.SweepSchedule,
			Enabled:  true,
		})
		go func() {
			if err := jobs.Start(ctx); err != nil {
				log.Printf("Job scheduler failed: %v", err)
			}
		}()
	}

	// Setup routes
	router := routes.SetupRoutes(routes.Dependencies{
		Config:  cfg,
		Repos:   repos,
		Users:   users,
		Auth:    authService,
		Booking: bookingService,
		Cache:   listCache,
	})

	srv, err := server.New(cfg.API.Port, router)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server exiting")
}

// openStore builds the repositories for the configured store driver
func openStore(ctx context.Context, cfg *config.Config) (booking.Repositories, repository.UserRepository, func()) {
	if cfg.Engine.StoreDriver == config.StoreDriverMemory {
		log.Println("Using in-memory store; data is lost on restart")
		store := memory.NewStore(cfg.Engine.LockTimeout)
		return booking.Repositories{
			Tx:           store,
			Floors:       store.Floors(),
			Zones:        store.Zones(),
			Tables:       store.Tables(),
			Reservations: store.Reservations(),
			Blocks:       store.Blocks(),
			AuditLogs:    store.AuditLogs(),
		}, store.Users(), func() {}
	}

	db, err := database.Setup(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	return booking.Repositories{
		Tx:           postgres.NewTransactor(db, cfg.Engine.LockTimeout),
		Floors:       postgres.NewFloorRepository(db),
		Zones:        postgres.NewZoneRepository(db),
		Tables:       postgres.NewTableRepository(db),
		Reservations: postgres.NewReservationRepository(db),
		Blocks:       postgres.NewBlockRepository(db),
		AuditLogs:    postgres.NewAuditLogRepository(db),
	}, postgres.NewUserRepository(db), func() { db.Close() }
}

// newPublisher returns the RabbitMQ publisher when events are enabled. A broker that
// cannot be reached degrades to discarding events.
func newPublisher(cfg config.EventsConfig) events.Publisher {
	if !cfg.Enabled {
		return events.NoopPublisher{}
	}
	p, err := events.NewRabbitMQPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Printf("Events disabled, broker unreachable: %v", err)
		return events.NoopPublisher{}
	}
	return p
}
