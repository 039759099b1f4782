// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/taskboard/internal/model"
)

// ErrNotFound は更新・削除対象のレコードが存在しない場合に返される。
// 呼び出し側は errors.Is で判定する。
var ErrNotFound = errors.New("record not found")

// ErrDuplicate は一意制約に違反した場合に返される。
var ErrDuplicate = errors.New("duplicate record")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// メールアドレスが登録済みの場合は ErrDuplicate をラップして返す。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は認証情報の永続化インターフェース。
type IdentityRepository interface {
	// FindPasswordIdentity はメールアドレスに対応するパスワードidentityを返す。
	// 見つからない場合はnilを返す。
	FindPasswordIdentity(ctx context.Context, email string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProjectFilter はプロジェクト一覧の絞り込み条件。
// OwnerIDが空の場合は全件を対象とする。
type ProjectFilter struct {
	OwnerID string
}

// ProjectRepository はプロジェクトの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// List は条件に一致するプロジェクトを返す。ページネーションは行わない。
	List(ctx context.Context, filter ProjectFilter) ([]*model.Project, error)

	// Create はプロジェクトを作成する。IDが空の場合は採番してprojectに設定する。
	Create(ctx context.Context, project *model.Project) error

	// UpdateTitle はタイトルのみを上書きする。対象がない場合は ErrNotFound をラップして返す。
	UpdateTitle(ctx context.Context, id, title string) error

	// Delete はプロジェクトを削除する。配下のタスクは削除しない。
	// 対象がない場合は ErrNotFound をラップして返す。
	Delete(ctx context.Context, id string) error
}

// TaskRepository はプロジェクト配下のタスクの永続化インターフェース。
type TaskRepository interface {
	// ListByProject はプロジェクト配下の全タスクを返す。プロジェクトの存在は確認しない。
	ListByProject(ctx context.Context, projectID string) ([]*model.Task, error)

	// Create はタスクを作成する。IDが空の場合は採番してtaskに設定する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタイトルとステータスを上書きする。
	// 対象がない場合は ErrNotFound をラップして返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete はタスクを削除する。対象がない場合は ErrNotFound をラップして返す。
	Delete(ctx context.Context, projectID, taskID string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
