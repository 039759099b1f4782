// Package project はプロジェクト管理のドメインロジックを提供する。
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/taskboard/internal/model"
	"github.com/hitoshi/taskboard/internal/repository"
	"github.com/hitoshi/taskboard/internal/security"
)

// MutationRecorder は変更操作の件数を記録するインターフェース。
// metrics.Collectorが実装する。
type MutationRecorder interface {
	RecordMutation(resource, operation string)
}

// Service はプロジェクト管理のサービス層。
// 一覧・作成・取得・改名・削除と、所有者による変更権限の判定を提供する。
type Service struct {
	repo     repository.ProjectRepository
	titles   security.TitleValidator
	recorder MutationRecorder
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProjectRepository, titles security.TitleValidator) *Service {
	return &Service{
		repo:   repo,
		titles: titles,
		now:    time.Now,
	}
}

// SetRecorder は変更操作の記録先を設定する。
func (s *Service) SetRecorder(recorder MutationRecorder) {
	s.recorder = recorder
}

// List はプロジェクト一覧を返す。ownerIDが空の場合は全ユーザーのプロジェクトを返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Project, error) {
	projects, err := s.repo.List(ctx, repository.ProjectFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}

// Create はownerIDを所有者とするプロジェクトを作成する。
// タイトルが不正な場合はストアにアクセスせずにバリデーションエラーを返す。
func (s *Service) Create(ctx context.Context, ownerID, title string) (*model.Project, error) {
	if ownerID == "" {
		return nil, model.NewUnauthorizedError()
	}
	if err := s.titles.Validate(title); err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: s.now(),
		Lists:     []model.ProjectList{},
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	s.record("create")
	slog.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("owner_id", ownerID),
	)
	return project, nil
}

// Get は指定IDのプロジェクトを返す。存在しない場合は PROJECT_NOT_FOUND を返す。
func (s *Service) Get(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	return project, nil
}

// Authorize はrequesterIDがプロジェクトを変更できるかを判定し、対象プロジェクトを返す。
// 存在しない場合は PROJECT_NOT_FOUND、所有者でない場合は NOT_PROJECT_OWNER を返す。
func (s *Service) Authorize(ctx context.Context, requesterID, projectID string) (*model.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanEdit(requesterID) {
		return nil, model.NewNotProjectOwnerError()
	}
	return project, nil
}

// UpdateTitle はプロジェクト名を変更し、変更後のプロジェクトを返す。
func (s *Service) UpdateTitle(ctx context.Context, requesterID, projectID, title string) (*model.Project, error) {
	if err := s.titles.Validate(title); err != nil {
		return nil, err
	}

	project, err := s.Authorize(ctx, requesterID, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTitle(ctx, projectID, title); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewProjectNotFoundError(projectID)
		}
		return nil, fmt.Errorf("プロジェクト名の更新に失敗しました: %w", err)
	}

	project.Title = title
	project.UpdatedAt = s.now()
	s.record("update")
	return project, nil
}

// Delete はプロジェクトを削除する。配下のタスクは削除せず残す。
// 削除済みのプロジェクトに対しては PROJECT_NOT_FOUND を返す。
func (s *Service) Delete(ctx context.Context, requesterID, projectID string) error {
	if _, err := s.Authorize(ctx, requesterID, projectID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewProjectNotFoundError(projectID)
		}
		return fmt.Errorf("プロジェクトの削除に失敗しました: %w", err)
	}

	s.record("delete")
	slog.Info("project deleted",
		slog.String("project_id", projectID),
		slog.String("owner_id", requesterID),
	)
	return nil
}

func (s *Service) record(operation string) {
	if s.recorder != nil {
		s.recorder.RecordMutation("project", operation)
	}
}
