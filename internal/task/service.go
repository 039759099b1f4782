// Package task はプロジェクト配下のタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/taskboard/internal/model"
	"github.com/hitoshi/taskboard/internal/repository"
	"github.com/hitoshi/taskboard/internal/security"
)

// ProjectAuthorizer はプロジェクトの変更権限を判定するインターフェース。
// project.Serviceが実装する。
type ProjectAuthorizer interface {
	Authorize(ctx context.Context, requesterID, projectID string) (*model.Project, error)
}

// MutationRecorder は変更操作の件数を記録するインターフェース。
type MutationRecorder interface {
	RecordMutation(resource, operation string)
}

// Service はタスク管理のサービス層。
type Service struct {
	repo       repository.TaskRepository
	authorizer ProjectAuthorizer
	titles     security.TitleValidator
	recorder   MutationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.TaskRepository, authorizer ProjectAuthorizer, titles security.TitleValidator) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		titles:     titles,
	}
}

// SetRecorder は変更操作の記録先を設定する。
func (s *Service) SetRecorder(recorder MutationRecorder) {
	s.recorder = recorder
}

// List はプロジェクト配下の全タスクを返す。
// プロジェクトの存在は確認しないため、削除済みプロジェクトのタスクも返る。
func (s *Service) List(ctx context.Context, projectID string) ([]*model.Task, error) {
	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Create はタスクを作成する。statusが空の場合は pending として作成する。
func (s *Service) Create(ctx context.Context, requesterID, projectID, title, status string) (*model.Task, error) {
	if err := s.titles.Validate(title); err != nil {
		return nil, err
	}
	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.Authorize(ctx, requesterID, projectID); err != nil {
		return nil, err
	}

	task := &model.Task{
		ProjectID: projectID,
		Title:     title,
		Status:    parsed,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	s.record("create")
	return task, nil
}

// Update はタスクのタイトルとステータスを両方とも上書きする。
// 部分更新は行わないため、statusの省略はエラーになる。
func (s *Service) Update(ctx context.Context, requesterID, projectID, taskID, title, status string) (*model.Task, error) {
	if err := s.titles.Validate(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		return nil, model.NewInvalidStatusError(status)
	}
	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.Authorize(ctx, requesterID, projectID); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:        taskID,
		ProjectID: projectID,
		Title:     title,
		Status:    parsed,
	}
	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewTaskNotFoundError(taskID)
		}
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}

	s.record("update")
	return task, nil
}

// Delete はタスクを削除する。取り消しはできない。
func (s *Service) Delete(ctx context.Context, requesterID, projectID, taskID string) error {
	if _, err := s.authorizer.Authorize(ctx, requesterID, projectID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, projectID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTaskNotFoundError(taskID)
		}
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	s.record("delete")
	return nil
}

func (s *Service) record(operation string) {
	if s.recorder != nil {
		s.recorder.RecordMutation("task", operation)
	}
}
