package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskboard/internal/model"
)

// PostgresIdentityRepo はパスワード認証情報を読み取る。
// 書き込みはユーザー作成と同じトランザクションで PostgresUserRepo が行う。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindPasswordIdentity はメールアドレスに対応するパスワードidentityを返す。
// 戻り値はpassword_hashを含むため、レスポンスに載せないこと。
func (r *PostgresIdentityRepo) FindPasswordIdentity(ctx context.Context, email string) (*model.Identity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_user_id, password_hash, created_at
		 FROM identities
		 WHERE provider = $1 AND provider_user_id = $2`,
		model.IdentityProviderPassword, email,
	)
	var id model.Identity
	err := row.Scan(&id.ID, &id.UserID, &id.Provider, &id.ProviderUserID, &id.PasswordHash, &id.CreatedAt)
	return optional(&id, err, "password identity")
}

// PostgresSessionRepo はサインインセッションを保存する。
// 期限切れ行の削除はcleanupジョブが行う。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	const q = `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, q, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は有効期限内のセッションのみを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1 AND expires_at > now()`,
		id,
	)
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return optional(&s, err, "session")
}

// DeleteByID はサインアウト時に呼ばれる。該当がなくてもエラーにしない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return r.delete(ctx, `DELETE FROM sessions WHERE id = $1`, id)
}

// DeleteByUserID は退会時に全端末のセッションを失効させる。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return r.delete(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
}

func (r *PostgresSessionRepo) delete(ctx context.Context, q, arg string) error {
	if _, err := r.db.ExecContext(ctx, q, arg); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var (
	_ IdentityRepository = (*PostgresIdentityRepo)(nil)
	_ SessionRepository  = (*PostgresSessionRepo)(nil)
)
