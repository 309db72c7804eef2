package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"finid.backend/internal/config"
	"finid.backend/internal/infrastructure/datasources"
	"finid.backend/internal/infrastructure/repositories"
	"finid.backend/internal/infrastructure/storage"
	"finid.backend/internal/interfaces/http/handlers"
	"finid.backend/internal/interfaces/http/middleware"
	"finid.backend/internal/interfaces/web"
	"finid.backend/internal/usecases"
	"finid.backend/pkg/jwt"
	"finid.backend/pkg/logger"
	"finid.backend/pkg/redis"
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = datasources.Open
	migrateDB       = datasources.Migrate
	newSessionStore = redis.NewSessionStore
	newRenderer     = web.NewRenderer
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database, cfg.Server.Env == "development")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return err
		}
		logger.Info(ctx, "Database schema migrated", zap.String("driver", cfg.Database.Driver))
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	sessionStore, err := newSessionStore(cfg.Session.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessions := middleware.NewSessions(sessionStore, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.CookieSecure)

	renderer, err := newRenderer(cfg.Server.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	go func() {
		if err := renderer.Watch(ctx); err != nil {
			logger.Warn(ctx, "Template watcher stopped", zap.Error(err))
		}
	}()

	// Repositories and storage
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	uow := repositories.NewUnitOfWork(db)
	files := storage.NewLocalFileStore(cfg.Media.Root, cfg.Media.URL)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, profileRepo, uow, jwtService)
	profileUsecase := usecases.NewProfileUsecase(userRepo, profileRepo, uow, files, storage.NewPhotoNormalizer())
	documentUsecase := usecases.NewDocumentUsecase(profileRepo, documentRepo, uow, files)
	adminUsecase := usecases.NewAdminUsecase(userRepo, profileRepo, documentRepo, uow, files)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	registerHealthRoute(r, handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": sqlDB.PingContext,
		"redis":    redis.Ping,
	}))
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    handlers.NewAuthHandler(authUsecase),
		profileHandler: handlers.NewProfileHandler(profileUsecase),
		kycHandler:     handlers.NewKYCHandler(documentUsecase),
		adminHandler:   handlers.NewAdminHandler(adminUsecase),
		apiAuth:        middleware.AuthRequired(jwtService, sessions),
	})
	registerPageRoutes(r, pageDeps{
		pages:    web.NewPages(renderer, sessions, authUsecase, profileUsecase, documentUsecase, files),
		sessions: sessions,
		mediaURL: cfg.Media.URL,
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		cancel()
		logger.Sync()
		os.Exit(0)
	}()

	logger.Info(ctx, "FinId backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("media_root", cfg.Media.Root),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
