package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskboard/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

const projectColumns = `id, title, created_by, lists, created_at, updated_at`

// scanProject はprojectsテーブルの1行をmodel.Projectに変換する。
func scanProject(scanner rowScanner) (*model.Project, error) {
	p := &model.Project{}
	var lists []byte
	if err := scanner.Scan(&p.ID, &p.Title, &p.OwnerID, &lists, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(lists) > 0 {
		if err := json.Unmarshal(lists, &p.Lists); err != nil {
			return nil, fmt.Errorf("failed to decode project lists: %w", err)
		}
	}
	return p, nil
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`,
		id,
	))
	return optional(p, err, "project")
}

// List は条件に一致するプロジェクトを作成日時の昇順で返す。
func (r *PostgresProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]*model.Project, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if filter.OwnerID != "" {
		if _, perr := uuid.Parse(filter.OwnerID); perr != nil {
			return []*model.Project{}, nil
		}
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE created_by = $1 ORDER BY created_at, id`,
			filter.OwnerID,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// Create はプロジェクトを作成する。IDが空の場合はUUIDを採番する。
// listsが未設定の場合は空配列として保存する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Lists == nil {
		project.Lists = []model.ProjectList{}
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = project.CreatedAt

	lists, err := json.Marshal(project.Lists)
	if err != nil {
		return fmt.Errorf("failed to encode project lists: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (id, title, created_by, lists, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		project.ID, project.Title, project.OwnerID, lists, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", classifyPQError(err))
	}
	return nil
}

// UpdateTitle はタイトルのみを上書きする。
func (r *PostgresProjectRepo) UpdateTitle(ctx context.Context, id, title string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET title = $2, updated_at = now() WHERE id = $1`,
		id, title,
	)
	if err != nil {
		return fmt.Errorf("failed to update project title: %w", err)
	}
	return expectAffected(result, "project", id)
}

// Delete はプロジェクトを削除する。tasksに外部キーはなく、配下のタスクは残る。
func (r *PostgresProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectAffected(result, "project", id)
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
