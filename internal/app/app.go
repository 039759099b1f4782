// Package app はtaskboardの起動処理と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/taskboard/internal/auth"
	"github.com/hitoshi/taskboard/internal/config"
	"github.com/hitoshi/taskboard/internal/database"
	"github.com/hitoshi/taskboard/internal/handler"
	"github.com/hitoshi/taskboard/internal/logger"
	"github.com/hitoshi/taskboard/internal/metrics"
	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/project"
	"github.com/hitoshi/taskboard/internal/repository"
	"github.com/hitoshi/taskboard/internal/security"
	"github.com/hitoshi/taskboard/internal/task"
	"github.com/hitoshi/taskboard/internal/user"
	"github.com/hitoshi/taskboard/internal/worker/cleanup"
)

// dbPingTimeout は起動時のDB疎通確認のタイムアウト。
const dbPingTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップしてから、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)
	if !cmd.needsServerConfig() {
		return runClientCommand(w, cmd, args)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	// LOG_LEVELの不正値はConfig側でデフォルトに丸められるため、確定値で再設定する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// runClientCommand はサーバー設定を読み込まずに動くサブコマンドを実行する。
func runClientCommand(w io.Writer, cmd Command, args []string) error {
	switch cmd {
	case CommandHealthcheck:
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	case CommandBoard:
		logger.SetupDefault(os.Stderr, logger.ParseLevel(os.Getenv("LOG_LEVEL")))
		boardCfg, err := loadBoardConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runBoard(ctx, w, boardCfg, args[1:])
	default:
		return writeUsage(w)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Server はAPIサーバーのハンドラーと、停止時に解放するリソースを保持する。
type Server struct {
	Handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// Close はサーバーが保持するバックグラウンド処理を停止する。
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// NewServer は全依存関係をワイヤリングしたAPIサーバーを構築する。
// regにはPrometheusメトリクスの登録先を渡す。
func NewServer(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) *Server {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)

	// 2. メトリクスとセキュリティの初期化
	collector := metrics.NewCollector(reg)
	titleGuard := security.NewTitleGuard()

	// 3. ドメインサービスの初期化
	authService := auth.NewService(
		userRepo, identRepo, sessionRepo,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	authService.SetRecorder(collector)

	projectService := project.NewService(projectRepo, titleGuard)
	projectService.SetRecorder(collector)

	taskService := task.NewService(taskRepo, projectService, titleGuard)
	taskService.SetRecorder(collector)

	userService := user.NewService(userRepo, sessionRepo, projectRepo)
	userService.SetRecorder(collector)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		HealthChecker:     db,
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CookieConfig: middleware.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		},
		RateLimiter:    rateLimiter,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),

		AuthService:    authService,
		ProjectService: projectService,
		TaskService:    taskService,
		UserService:    userService,
	}

	return &Server{
		Handler:     handler.NewRouter(deps),
		rateLimiter: rateLimiter,
	}
}

// newRegistry はプロセス・ランタイムのコレクターを含むレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	srv := NewServer(cfg, db, newRegistry())
	defer srv.Close()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 起動直後とCLEANUP_INTERVALごとにクリーンアップジョブを実行し、
// ctxがキャンセルされると終了する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	job := cleanup.NewCleanupJob(db, slog.Default())
	job.RetentionDays = cfg.OrphanTaskRetentionDays

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
		slog.Int("orphan_task_retention_days", cfg.OrphanTaskRetentionDays),
	)

	runCleanupLoop(ctx, job, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// cleanupRunner はクリーンアップジョブの実行を抽象化するインターフェース。
type cleanupRunner interface {
	Run(ctx context.Context) error
}

// runCleanupLoop は起動直後に1回、その後intervalごとにジョブを実行する。
// 失敗はログに記録し、次の周期で再実行する。
func runCleanupLoop(ctx context.Context, job cleanupRunner, interval time.Duration) {
	runOnce := func() {
		if err := job.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("cleanup job failed", slog.String("error", err.Error()))
		}
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.SchemaVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	latest, err := database.LatestVersion()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if dirty || version != latest {
		return fmt.Errorf("migration failed: schema version %d (dirty=%v), want %d", version, dirty, latest)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("schema_version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
