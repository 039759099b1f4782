// Package view は画面遷移の解決、画面表示用のモデル、フォームの状態遷移を提供する。
// 描画手段には依存せず、client パッケージのキャッシュ状態から表示内容を組み立てる。
package view

import (
	"net/url"
	"strings"
)

// Screen は表示する画面の種別。
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenSignup    Screen = "signup"
	ScreenDashboard Screen = "dashboard"
	ScreenBoard     Screen = "board"
	ScreenDetail    Screen = "detail"
)

// 画面のパス
const (
	PathLogin     = "/"
	PathSignup    = "/signup"
	PathDashboard = "/dashboard"
	PathBoard     = "/projects"

	projectPathPrefix = "/project/"
)

// Resolution はパスの解決結果。
// Redirect が空でない場合、呼び出し側はそのパスへ遷移し直す。
type Resolution struct {
	Screen    Screen
	ProjectID string
	Redirect  string
}

// Resolve はパスとログイン状態から表示する画面を決める。
// 未ログインでは / と /signup のみ、ログイン済みでは /dashboard、/projects、
// /project/:projectId のみを受け付け、それ以外は状態に応じた既定の画面へ転送する。
func Resolve(path string, authenticated bool) Resolution {
	path = normalizePath(path)

	if !authenticated {
		switch path {
		case PathLogin:
			return Resolution{Screen: ScreenLogin}
		case PathSignup:
			return Resolution{Screen: ScreenSignup}
		}
		return Resolution{Screen: ScreenLogin, Redirect: PathLogin}
	}

	switch path {
	case PathDashboard:
		return Resolution{Screen: ScreenDashboard}
	case PathBoard:
		return Resolution{Screen: ScreenBoard}
	}
	if id, ok := strings.CutPrefix(path, projectPathPrefix); ok {
		if decoded, err := url.PathUnescape(id); err == nil && decoded != "" && !strings.Contains(decoded, "/") {
			return Resolution{Screen: ScreenDetail, ProjectID: decoded}
		}
	}
	return Resolution{Screen: ScreenDashboard, Redirect: PathDashboard}
}

// ProjectPath はプロジェクト詳細画面のパスを返す。
func ProjectPath(projectID string) string {
	return projectPathPrefix + url.PathEscape(projectID)
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathLogin
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return PathLogin
	}
	return path
}
