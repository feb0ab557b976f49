package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/realtime"
	"github.com/hitoshi/postboard/internal/repository"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver          middleware.IdentityResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder

	// 認証
	AuthService   AuthServiceInterface
	AuthConfig    AuthHandlerConfig
	LoginRecorder LoginRecorder

	// コンテンツ
	PostRepo    repository.PostRepository
	CommentRepo repository.CommentRepository
	LikeRepo    repository.LikeRepository
	Sanitizer   Sanitizer

	// 通知
	Hub *realtime.Hub

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging
//
// 認証が必要なルートはさらに Session → RateLimit(General) を通す。
// 認証試行ルート（/login, /register）にはIPベースのレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Resolver, deps.LoginRecorder, deps.AuthConfig)
	postHandler := NewPostHandler(deps.PostRepo, deps.Sanitizer)
	commentHandler := NewCommentHandler(deps.PostRepo, deps.CommentRepo, deps.Sanitizer, deps.Hub)
	likeHandler := NewLikeHandler(deps.PostRepo, deps.LikeRepo, deps.Hub)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 通知購読（WebSocket）
	r.Handle("/ws", realtime.WSHandler(deps.Hub))

	// ローカル認証（IPベースのレート制限）
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthAttemptMiddleware())
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
	})

	// OAuthフロー
	r.Route("/auth/{provider}", func(r chi.Router) {
		r.Get("/", authHandler.OAuthLogin)
		r.Get("/callback", authHandler.OAuthCallback)
	})

	// セッション状態
	r.Get("/user", authHandler.CurrentUser)
	r.Get("/sign-out", authHandler.SignOut)

	// 投稿一覧は公開
	r.Get("/posts", postHandler.List)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Resolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/like/{postID}", likeHandler.Toggle)

		r.Post("/compose", postHandler.Compose)
		r.Delete("/post/{postID}", postHandler.Delete)

		r.Post("/comment/{postID}", commentHandler.Create)
		r.Delete("/comment/{commentID}", commentHandler.Delete)
	})

	return r
}

// healthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
					Code:     "UNHEALTHY",
					Message:  "Database connection is not available.",
					Category: "system",
					Action:   "Please wait a moment and try again.",
				})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	}
}
