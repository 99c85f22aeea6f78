package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/config"
	"github.com/hungwahenry/cheevo-sub000/internal/infra/classifier"
	s3infra "github.com/hungwahenry/cheevo-sub000/internal/infra/s3"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	redrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/redis"
	authsvc "github.com/hungwahenry/cheevo-sub000/internal/services/auth"
	banescsvc "github.com/hungwahenry/cheevo-sub000/internal/services/banescalation"
	banssvc "github.com/hungwahenry/cheevo-sub000/internal/services/bans"
	commentssvc "github.com/hungwahenry/cheevo-sub000/internal/services/comments"
	"github.com/hungwahenry/cheevo-sub000/internal/services/contentgate"
	"github.com/hungwahenry/cheevo-sub000/internal/services/modconfig"
	modsvc "github.com/hungwahenry/cheevo-sub000/internal/services/moderation"
	postssvc "github.com/hungwahenry/cheevo-sub000/internal/services/posts"
	reviewsvc "github.com/hungwahenry/cheevo-sub000/internal/services/review"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	modConfigRepo := pgrepo.NewModerationConfigRepo(pool)
	modLogRepo := pgrepo.NewModerationLogRepo(pool)
	banRepo := pgrepo.NewBanRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)
	commentRepo := pgrepo.NewCommentRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)
	modConfigCache := redrepo.NewModConfigCacheRepo(redisClient)
	banCache := redrepo.NewBanCacheRepo(redisClient)

	tierDefaults := modconfig.TierSettings{
		TierDays:        cfg.Moderation.BanTierDays,
		MaxBanDays:      cfg.Moderation.MaxBanDays,
		ResetWindowDays: cfg.Moderation.ResetWindowDays,
	}
	settingsProvider := modconfig.NewProvider(modConfigRepo, modConfigCache, cfg.Moderation.ConfigCacheTTL, tierDefaults, log)

	engine := modsvc.NewEngine(settingsProvider, modLogRepo, log)
	escalator := banescsvc.NewService(banRepo, settingsProvider, tierDefaults, log)
	escalator.AttachBanCache(banCache)

	classifierClient := classifier.NewClient(classifier.Config{
		Endpoint: cfg.Classifier.Endpoint,
		APIKey:   cfg.Classifier.APIKey,
		Timeout:  cfg.Classifier.Timeout,
	})

	gate := contentgate.NewService(classifierClient, engine, postRepo, commentRepo, contentgate.Config{
		ClassifierTimeout: cfg.Classifier.Timeout,
	}, log)
	gate.AttachEscalator(escalator)

	banService := banssvc.NewService(banRepo, banCache, cfg.Moderation.BanCacheTTL, log)
	postService := postssvc.NewService(postRepo, gate, banService, log)
	commentService := commentssvc.NewService(commentRepo, postRepo, gate, banService, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	reviewService := reviewsvc.NewService(postRepo, commentRepo, userRepo, reviewsvc.Config{
		SignedURLTTL: cfg.Moderation.SignedURLTTL,
	}, log)
	if s3Client != nil {
		reviewService.AttachSigner(s3infra.NewStorage(s3Client, cfg.S3.Bucket))
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:     jwtManager,
		PostService:    postService,
		CommentService: commentService,
		ReviewService:  reviewService,
		BanService:     banService,
		RuleStore:      modConfigRepo,
		AuditLogStore:  modLogRepo,
		ModConfigCache: modConfigCache,
		Logger:         log,
		Config:         cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
