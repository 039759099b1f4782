// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// DisplayName と AvatarURL は任意項目で、未設定の場合は空文字列になる。
type User struct {
	ID          string
	Email       string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdentityProviderPassword はメールアドレスとパスワードによる認証を表すプロバイダー名。
const IdentityProviderPassword = "password"

// Identity は認証情報とユーザーの紐付けを表す。
// password プロバイダーでは ProviderUserID に正規化済みメールアドレス、
// PasswordHash に bcrypt ハッシュを保持する。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	PasswordHash   string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
