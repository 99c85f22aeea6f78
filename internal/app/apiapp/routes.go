package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/config"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	redrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/redis"
	authsvc "github.com/hungwahenry/cheevo-sub000/internal/services/auth"
	banssvc "github.com/hungwahenry/cheevo-sub000/internal/services/bans"
	commentssvc "github.com/hungwahenry/cheevo-sub000/internal/services/comments"
	postssvc "github.com/hungwahenry/cheevo-sub000/internal/services/posts"
	reviewsvc "github.com/hungwahenry/cheevo-sub000/internal/services/review"
	"github.com/hungwahenry/cheevo-sub000/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager      *authsvc.JWTManager
	PostService     *postssvc.Service
	CommentService  *commentssvc.Service
	ReviewService   *reviewsvc.Service
	BanService      *banssvc.Service
	RuleStore       handlers.RuleStore
	AuditLogStore   handlers.AuditLogStore
	ModConfigCache  *redrepo.ModConfigCacheRepo
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	postsHandler := handlers.NewPostsHandler(deps.PostService)
	postsHandler.AttachBans(deps.BanService)
	commentsHandler := handlers.NewCommentsHandler(deps.CommentService)
	reviewHandler := handlers.NewReviewHandler(deps.ReviewService)
	adminModerationHandler := handlers.NewAdminModerationHandler(deps.RuleStore, deps.AuditLogStore)
	if deps.ModConfigCache != nil {
		adminModerationHandler.AttachConfigCache(deps.ModConfigCache)
	}

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	moderatorMW := RequireRole(enums.RoleModerator)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/posts", postsHandler.Create)
		r.With(authMW).Delete("/posts/{id}", postsHandler.Delete)
		r.With(authMW).Post("/posts/{id}/comments", commentsHandler.Create)
		r.With(authMW).Delete("/comments/{id}", commentsHandler.Delete)

		r.Route("/review", func(r chi.Router) {
			r.Use(authMW, moderatorMW)
			r.Get("/posts", reviewHandler.ListPosts)
			r.Get("/posts/next", reviewHandler.NextPost)
			r.Post("/posts/{id}/approve", reviewHandler.ApprovePost)
			r.Post("/posts/{id}/reject", reviewHandler.RejectPost)
			r.Get("/comments", reviewHandler.ListComments)
			r.Post("/comments/{id}/approve", reviewHandler.ApproveComment)
			r.Post("/comments/{id}/reject", reviewHandler.RejectComment)
		})

		r.Route("/admin/moderation", func(r chi.Router) {
			r.Use(authMW, moderatorMW)
			r.Get("/rules", adminModerationHandler.ListRules)
			r.Put("/rules", adminModerationHandler.UpsertRule)
			r.Get("/logs", adminModerationHandler.ListLogs)
		})
	})
}
