// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, displayName string) (*model.Session, *model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	SignOut(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandler はアカウント登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookie  middleware.CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
	}
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp はアカウントを作成し、セッションCookieを発行する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, session, h.cookie)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// SignIn はメールアドレスとパスワードで認証し、セッションCookieを発行する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, session, h.cookie)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// SignOut はセッションを破棄し、Cookieを削除する。
// 破棄に失敗した場合はCookieを残し、エラーを返す。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), middleware.SessionIDFromRequest(r)); err != nil {
		if !model.HasCode(err, model.ErrCodeUnauthorized) {
			slog.Error("failed to sign out", slog.String("error", err.Error()))
		}
		middleware.WriteError(w, r, err)
		return
	}

	middleware.ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.SessionIDFromRequest(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
