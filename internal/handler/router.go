package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/taskboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	CookieConfig      middleware.CookieConfig
	RateLimiter       *middleware.RateLimiter

	// メトリクス（nilの場合は無効）
	Metrics        middleware.HTTPRecorder
	MetricsHandler http.Handler

	// サービス
	AuthService    AuthServiceInterface
	ProjectService ProjectServiceInterface
	TaskService    TaskServiceInterface
	UserService    UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → Metrics → SecurityHeaders → CORS → CSRF
//
// 認証が必要なルートには Session → RateLimit(General) を追加で適用する。
// サインアップとサインインには RateLimit(Auth) を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.CookieConfig)
	projectHandler := NewProjectHandler(deps.ProjectService)
	taskHandler := NewTaskHandler(deps.TaskService)
	userHandler := NewUserHandler(deps.UserService, deps.CookieConfig)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
		})
		r.Post("/signout", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Patch("/", projectHandler.UpdateProjectTitle)
				r.Delete("/", projectHandler.DeleteProject)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.ListTasks)
					r.Post("/", taskHandler.CreateTask)
					r.Put("/{taskID}", taskHandler.UpdateTask)
					r.Delete("/{taskID}", taskHandler.DeleteTask)
				})
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
