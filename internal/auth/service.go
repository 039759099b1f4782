// Package auth はメールアドレスとパスワードによるアカウント登録・ログイン、
// セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hitoshi/taskboard/internal/model"
	"github.com/hitoshi/taskboard/internal/repository"
)

const (
	// MinPasswordLength はパスワードの最小文字数。
	MinPasswordLength = 8
	// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
	MaxPasswordBytes = 72
)

// 認証操作の種別。メトリクスのラベルに使用する。
const (
	OperationSignUp  = "signup"
	OperationSignIn  = "signin"
	OperationSignOut = "signout"
)

// AttemptRecorder は認証試行の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type AttemptRecorder interface {
	RecordAuthAttempt(operation string, err error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	hasher      PasswordHasher
	validate    *validator.Validate
	recorder    AttemptRecorder
	config      ServiceConfig

	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		validate:    validator.New(),
		config:      config,
	}
}

// SetRecorder は認証試行の記録先を設定する。
func (s *Service) SetRecorder(recorder AttemptRecorder) {
	s.recorder = recorder
}

// SignUp はアカウントを作成し、セッションを発行する。
// 検証エラー・重複登録はAuthカテゴリのAPIErrorとして返す。
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (session *model.Session, user *model.User, err error) {
	defer func() { s.record(OperationSignUp, err) }()

	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, nil, model.NewAuthProviderError()
	}

	now := time.Now()
	user = &model.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	identity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Provider:       model.IdentityProviderPassword,
		ProviderUserID: email,
		PasswordHash:   hash,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithIdentity(ctx, user, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, model.NewEmailInUseError()
		}
		slog.Error("failed to create user and identity", slog.String("error", err.Error()))
		return nil, nil, model.NewAuthProviderError()
	}

	session, err = s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("new user created", slog.String("user_id", user.ID))
	return session, user, nil
}

// SignIn は認証情報を照合し、セッションを発行する。
// 未登録のメールアドレスとパスワード不一致は区別せず AUTH_INVALID_CREDENTIALS を返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (session *model.Session, user *model.User, err error) {
	defer func() { s.record(OperationSignIn, err) }()

	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, nil, err
	}

	identity, err := s.identRepo.FindPasswordIdentity(ctx, email)
	if err != nil {
		slog.Error("failed to find identity", slog.String("error", err.Error()))
		return nil, nil, model.NewAuthProviderError()
	}

	if identity == nil {
		// 応答時間からメールアドレスの登録有無を推測されないよう照合は必ず行う
		_ = s.hasher.Compare(s.dummyPasswordHash(), password)
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			slog.Error("failed to compare password", slog.String("error", err.Error()))
		}
		return nil, nil, model.NewInvalidCredentialsError()
	}

	user, err = s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		slog.Error("failed to find user", slog.String("error", err.Error()))
		return nil, nil, model.NewAuthProviderError()
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err = s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))
	return session, user, nil
}

// SignOut はセッションを破棄する。
func (s *Service) SignOut(ctx context.Context, sessionID string) (err error) {
	defer func() { s.record(OperationSignOut, err) }()

	if sessionID == "" {
		return model.NewUnauthorizedError()
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		slog.Error("failed to delete session", slog.String("error", err.Error()))
		return model.NewAuthProviderError()
	}

	slog.Info("user signed out")
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効な場合は UNAUTHORIZED を返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// validateEmail はメールアドレスの形式を検証する。
func (s *Service) validateEmail(email string) error {
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return model.NewInvalidEmailError()
	}
	return nil
}

// validatePassword はパスワードの長さを検証する。
// 上限はbcryptの制約によりバイト数で判定する。
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return model.NewWeakPasswordError(MinPasswordLength, MaxPasswordBytes)
	}
	return nil
}

// normalizeEmail は前後の空白を除去し小文字化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dummyPasswordHash は未登録ユーザーの照合に使うハッシュを返す。
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("taskboard-dummy-password")
		if err != nil {
			slog.Error("failed to prepare dummy hash", slog.String("error", err.Error()))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *Service) record(operation string, err error) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(operation, err)
	}
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", slog.String("error", err.Error()))
		return nil, model.NewAuthProviderError()
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		slog.Error("failed to save session", slog.String("error", err.Error()))
		return nil, model.NewAuthProviderError()
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
