package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskboard/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// ListByProject はプロジェクト配下の全タスクを返す。
// 順序フィールドは持たないため、作成日時順を保存順として扱う。
func (r *PostgresTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*model.Task, error) {
	tasks := []*model.Task{}
	if _, err := uuid.Parse(projectID); err != nil {
		return tasks, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, created_at, updated_at
		 FROM tasks
		 WHERE project_id = $1
		 ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t := &model.Task{}
		var status string
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = model.TaskStatus(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Create はタスクを作成する。IDが空の場合はUUIDを採番する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.ProjectID, task.Title, string(task.Status), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", classifyPQError(err))
	}
	return nil
}

// Update はタイトルとステータスを上書きし、updated_atを更新する。
// 保存済みのcreated_atをtaskに読み戻す。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if _, err := uuid.Parse(task.ID); err != nil {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	task.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = $3, status = $4, updated_at = $5
		 WHERE id = $1 AND project_id = $2
		 RETURNING created_at`,
		task.ID, task.ProjectID, task.Title, string(task.Status), task.UpdatedAt,
	).Scan(&task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete はタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, projectID, taskID string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND project_id = $2`,
		taskID, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectAffected(result, "task", taskID)
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
