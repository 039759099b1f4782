// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config はサーバーとワーカーが共有する設定。
// 起動時に1回だけ読み込み、以降は変更しない。
type Config struct {
	DatabaseURL string `validate:"required"`
	BaseURL     string `validate:"required,url"`
	ServerPort  string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`

	// SessionMaxAge はセッションの有効期間（秒）。
	SessionMaxAge int `validate:"gt=0"`
	BcryptCost    int `validate:"min=4,max=31"`

	// 認証済みユーザーあたり / IPあたりの毎分リクエスト数。
	RateLimitGeneral int `validate:"gt=0"`
	RateLimitAuth    int `validate:"gt=0"`

	OrphanTaskRetentionDays int           `validate:"gt=0"`
	CleanupInterval         time.Duration `validate:"gt=0"`
	ShutdownTimeout         time.Duration `validate:"gt=0"`

	CookieSecure      bool
	CookieDomain      string
	CORSAllowedOrigin string
}

// env は環境変数の読み取り結果と未設定の必須キーを集める。
type env struct {
	missing []string
}

func (e *env) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		e.missing = append(e.missing, key)
	}
	return v
}

func (e *env) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// positiveInt は正の整数として解釈できない値をフォールバックに置き換える。
func (e *env) positiveInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Load は環境変数からConfigを読み込んで検証する。
// DATABASE_URL と BASE_URL は必須。その他は不正値の場合デフォルトを使う。
func Load() (*Config, error) {
	e := &env{}

	cfg := &Config{
		DatabaseURL: e.required("DATABASE_URL"),
		BaseURL:     e.required("BASE_URL"),
	}
	if len(e.missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", e.missing)
	}

	cfg.ServerPort = e.str("SERVER_PORT", "8080")
	cfg.LogLevel = strings.ToLower(e.str("LOG_LEVEL", "info"))
	cfg.SessionMaxAge = e.positiveInt("SESSION_MAX_AGE", 7*24*60*60)
	cfg.BcryptCost = e.positiveInt("BCRYPT_COST", 12)
	cfg.RateLimitGeneral = e.positiveInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = e.positiveInt("RATE_LIMIT_AUTH", 10)
	cfg.OrphanTaskRetentionDays = e.positiveInt("ORPHAN_TASK_RETENTION_DAYS", 30)
	cfg.CleanupInterval = e.duration("CLEANUP_INTERVAL", time.Hour)
	cfg.ShutdownTimeout = e.duration("SHUTDOWN_TIMEOUT", 30*time.Second)
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = e.str("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = e.str("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, describe(err)
	}
	return cfg, nil
}

// describe は検証エラーをフィールド名の一覧にまとめる。
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
}
