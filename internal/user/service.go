// Package user はアカウントの退会処理を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskboard/internal/model"
	"github.com/hitoshi/taskboard/internal/repository"
)

// MutationRecorder は退会件数の記録先。metrics.Collectorが実装する。
type MutationRecorder interface {
	RecordMutation(resource, operation string)
}

// Service はアカウントのライフサイクルを扱う。
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	projects repository.ProjectRepository
	recorder MutationRecorder
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, sessions repository.SessionRepository, projects repository.ProjectRepository) *Service {
	return &Service{users: users, sessions: sessions, projects: projects}
}

// SetRecorder は退会件数の記録先を設定する。
func (s *Service) SetRecorder(recorder MutationRecorder) {
	s.recorder = recorder
}

// Withdraw はアカウントを削除する。
// 先に全セッションを失効させ、その後ユーザーを削除する。identitiesと所有プロジェクトはCASCADEで消える。
// 所有プロジェクト配下のタスクは孤立タスクとして残り、cleanupジョブが保持期間後に削除する。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError()
	}

	owned, err := s.projects.List(ctx, repository.ProjectFilter{OwnerID: userID})
	if err != nil {
		return fmt.Errorf("所有プロジェクトの取得に失敗しました: %w", err)
	}

	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	if err := s.users.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordMutation("user", "withdraw")
	}
	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
		slog.Int("deleted_projects", len(owned)),
	)
	return nil
}
