package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/cache"
	"github.com/jestfly/community-backend/internal/handlers"
	"github.com/jestfly/community-backend/internal/middleware"
	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/realtime"
	"github.com/jestfly/community-backend/internal/repositories"
	"github.com/jestfly/community-backend/pkg/config"
	"github.com/jestfly/community-backend/pkg/firebase"
)

// SetupRoutes migrates the relational schema, wires repositories into
// handlers and registers every route on the echo instance.
func SetupRoutes(
	e *echo.Echo,
	db *config.DB,
	cfg *config.Config,
	hub *realtime.Hub,
	notifier *realtime.Notifier,
	push *firebase.App,
	logger *zap.Logger,
) error {
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.Report{},
	); err != nil {
		return err
	}

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	reportRepo := repositories.NewPostgresReportRepository(db.Postgres)

	followingCache := cache.NewFollowingCache(db.Redis, followRepo, 5*time.Minute)
	dispatcher := handlers.NewNotificationDispatcher(notificationRepo, userRepo, notifier, hub, push, logger)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, dispatcher, notifier, logger)
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, likeRepo, followingCache, logger)
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, commentRepo, dispatcher, logger)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, likeRepo, dispatcher, logger)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, followingCache, dispatcher, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	reportHandler := handlers.NewReportHandler(reportRepo, postRepo, commentRepo)
	realtimeHandler := handlers.NewRealtimeHandler(hub, logger)
	healthHandler := handlers.NewHealthHandler(db, notifier)

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	healthHandler.RegisterHealthRoutes(e)

	authGroup := e.Group("/api/v1/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler.RegisterProfileRoutes(api)
	postHandler.RegisterPostRoutes(api)
	feedHandler.RegisterFeedRoutes(api)
	likeHandler.RegisterLikeRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	notificationHandler.RegisterNotificationRoutes(api)
	reportHandler.RegisterReportRoutes(api)
	realtimeHandler.RegisterRealtimeRoutes(api)

	return nil
}
