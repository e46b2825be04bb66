package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/events"
	adapterHTTP "github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository/migrations"
	"github.com/comitanigiacomo/kanso-progress/internal/config"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
	"github.com/comitanigiacomo/kanso-progress/internal/core/workers"
)

// @title                       Kanso Progress API
// @version                     1.0
// @description                 Goals, check-ins and progress calendars.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	startTime := time.Now()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Critical: invalid timezone %q: %v", cfg.Timezone, err)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	store, err := openStore(appCtx, cfg)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer store.close()

	var (
		rdb       *redis.Client
		calendars domain.CalendarCache
	)
	rdb, err = cache.NewRedisClient(appCtx, cache.Options{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, using in-process calendar cache: %v", err)
		calendars = cache.NewMemoryCalendarCache()
	} else {
		defer rdb.Close()
		log.Println("[CACHE] Redis connected.")
		calendars = cache.NewRedisCalendarCache(rdb, cfg.CalendarCacheTTL)
		store.goals = repository.NewCachedGoalRepository(store.goals, rdb)
	}

	var publisher domain.EventPublisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("[EVENTS] Broker unavailable, check-in events disabled: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
		}
	}

	worker := workers.NewCalendarWorker(store.checkins, calendars, loc)
	worker.Start(appCtx)
	go worker.WarmCurrentYear(appCtx)

	scheduler := workers.NewScheduler(loc)
	if _, err := scheduler.ScheduleCalendarWarmup(cfg.CalendarWarmSchedule, worker); err != nil {
		log.Fatalf("Critical: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, store.users)
	goalService := services.NewGoalService(store.goals, store.categories, store.checkins, calendars, worker)
	categoryService := services.NewCategoryService(store.categories, goalService)
	authService := services.NewAuthService(store.users, categoryService)
	checkinService := services.NewCheckInService(store.checkins, store.goals, calendars, worker, publisher, loc)
	progressService := services.NewProgressService(store.goals, store.checkins, calendars, loc)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		CategoryHandler: adapterHTTP.NewCategoryHandler(categoryService),
		GoalHandler:     adapterHTTP.NewGoalHandler(goalService),
		CheckInHandler:  adapterHTTP.NewCheckInHandler(checkinService),
		ProgressHandler: adapterHTTP.NewProgressHandler(progressService),
		TokenService:    tokenService,
		Redis:           rdb,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		StartTime:       startTime,
	}
	if store.db != nil {
		deps.DB = store.db
	}
	router := adapterHTTP.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Progress running on http://localhost:%s (backend: %s, timezone: %s)", cfg.Port, cfg.DataBackend, loc)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}
	stopApp()

	log.Println("Server stopped gracefully.")
}

type store struct {
	db         *sqlx.DB
	users      domain.UserRepository
	categories domain.CategoryRepository
	goals      domain.GoalRepository
	checkins   domain.CheckInRepository
}

func (s *store) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.DataBackend == config.BackendMemory {
		log.Println("Using the in-memory backend. Data is lost on restart.")
		checkins := repository.NewInMemoryCheckInRepository()
		return &store{
			users:      repository.NewInMemoryUserRepository(),
			categories: repository.NewInMemoryCategoryRepository(),
			goals:      repository.NewInMemoryGoalRepository(checkins),
			checkins:   checkins,
		}, nil
	}

	dsn := cfg.DatabaseURL()

	log.Println("Applying database migrations...")
	if err := migrations.Up(dsn); err != nil {
		return nil, err
	}

	log.Println("Connecting to database...")
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	return &store{
		db:         db,
		users:      repository.NewPostgresUserRepository(db),
		categories: repository.NewPostgresCategoryRepository(db),
		goals:      repository.NewPostgresGoalRepository(db),
		checkins:   repository.NewPostgresCheckInRepository(db),
	}, nil
}
