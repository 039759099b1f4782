package client

import (
	"context"
	"sync"

	"github.com/hitoshi/taskboard/internal/model"
)

// AuthStatus はセッションの状態。
type AuthStatus int

const (
	// AuthAnonymous は未ログイン。
	AuthAnonymous AuthStatus = iota
	// AuthPending はサインアップ・サインイン・サインアウトの応答待ち。
	AuthPending
	// AuthAuthenticated はログイン済み。
	AuthAuthenticated
)

// String はAuthStatusの表示名を返す。
func (s AuthStatus) String() string {
	switch s {
	case AuthAnonymous:
		return "anonymous"
	case AuthPending:
		return "pending"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthSnapshot はある時点のセッション状態。
type AuthSnapshot struct {
	Status AuthStatus
	User   *model.User
	Err    error
}

// AuthSession はログイン中のユーザーと直近の認証操作の結果を保持する。
//
// 状態遷移:
//
//	anonymous → pending → authenticated | anonymous(+error)
//	authenticated → pending → anonymous
type AuthSession struct {
	client   *Client
	notifier Notifier

	mu     sync.RWMutex
	status AuthStatus
	user   *model.User
	err    error
}

// NewAuthSession はAuthSessionを生成する。notifierがnilの場合はslogに出力する。
func NewAuthSession(c *Client, notifier Notifier) *AuthSession {
	if notifier == nil {
		notifier = NewSlogNotifier(nil)
	}
	return &AuthSession{client: c, notifier: notifier}
}

// Snapshot は現在の状態を返す。
func (s *AuthSession) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthSnapshot{Status: s.status, User: s.user, Err: s.err}
}

// User はログイン中のユーザーを返す。未ログインの場合はnil。
func (s *AuthSession) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated はログイン済みかどうかを返す。
func (s *AuthSession) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == AuthAuthenticated
}

// SignUp はアカウントを作成してログイン状態にする。
func (s *AuthSession) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	return s.authenticate(func() (*model.User, error) {
		return s.client.SignUp(ctx, email, password, displayName)
	}, "アカウントを作成しました", "アカウントの作成に失敗しました")
}

// SignIn はログインする。
func (s *AuthSession) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	return s.authenticate(func() (*model.User, error) {
		return s.client.SignIn(ctx, email, password)
	}, "ログインしました", "ログインに失敗しました")
}

// SignOut はログアウトする。
// 失敗した場合はログイン状態を維持し、エラーのみを記録する。
func (s *AuthSession) SignOut(ctx context.Context) error {
	s.mu.Lock()
	prevStatus, prevUser := s.status, s.user
	s.status = AuthPending
	s.err = nil
	s.mu.Unlock()

	if err := s.client.SignOut(ctx); err != nil {
		s.mu.Lock()
		s.status, s.user, s.err = prevStatus, prevUser, err
		s.mu.Unlock()
		s.notifier.Notify(NotificationError, failureMessage("ログアウトに失敗しました", err))
		return err
	}

	s.mu.Lock()
	s.status, s.user, s.err = AuthAnonymous, nil, nil
	s.mu.Unlock()
	s.notifier.Notify(NotificationSuccess, "ログアウトしました")
	return nil
}

// Restore はセッションCookieからログイン状態を復元する。
// 未ログインの場合はエラーを記録せずanonymousのままにする。通知は行わない。
func (s *AuthSession) Restore(ctx context.Context) (*model.User, error) {
	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.status, s.user, s.err = AuthAuthenticated, user, nil
		return user, nil
	case IsUnauthorized(err):
		s.status, s.user, s.err = AuthAnonymous, nil, nil
		return nil, nil
	default:
		s.status, s.user, s.err = AuthAnonymous, nil, err
		return nil, err
	}
}

func (s *AuthSession) authenticate(call func() (*model.User, error), okMsg, failMsg string) (*model.User, error) {
	s.mu.Lock()
	s.status = AuthPending
	s.err = nil
	s.mu.Unlock()

	user, err := call()

	s.mu.Lock()
	if err != nil {
		s.status, s.user, s.err = AuthAnonymous, nil, err
	} else {
		s.status, s.user, s.err = AuthAuthenticated, user, nil
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage(failMsg, err))
		return nil, err
	}
	s.notifier.Notify(NotificationSuccess, okMsg)
	return user, nil
}
