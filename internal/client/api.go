package client

import (
	"context"
	"net/url"
	"time"

	"github.com/hitoshi/taskboard/internal/model"
)

// userDTO はユーザー情報のレスポンス形式。
type userDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (d *userDTO) toModel() *model.User {
	return &model.User{
		ID:          d.ID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		AvatarURL:   d.AvatarURL,
	}
}

// projectDTO はプロジェクトのレスポンス形式。
// can_edit はクライアント側で再計算するため読み捨てる。
type projectDTO struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Lists     []model.ProjectList `json:"lists"`
}

func (d *projectDTO) toModel() *model.Project {
	return &model.Project{
		ID:        d.ID,
		Title:     d.Title,
		OwnerID:   d.CreatedBy,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Lists:     d.Lists,
	}
}

// taskDTO はタスクのレスポンス形式。
type taskDTO struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *taskDTO) toModel() *model.Task {
	return &model.Task{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Title:     d.Title,
		Status:    model.TaskStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
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

type titleRequest struct {
	Title string `json:"title"`
}

type taskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// SignUp はアカウントを作成し、発行されたセッションCookieを保持する。
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	var resp userDTO
	if err := c.post(ctx, "/auth/signup", signUpRequest{Email: email, Password: password, DisplayName: displayName}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// SignIn はログインし、発行されたセッションCookieを保持する。
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	var resp userDTO
	if err := c.post(ctx, "/auth/signin", signInRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// SignOut はセッションを破棄する。
func (c *Client) SignOut(ctx context.Context) error {
	return c.post(ctx, "/auth/signout", nil, nil)
}

// Me は現在のセッションのユーザーを返す。
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp userDTO
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// Withdraw はログイン中のユーザーを退会させる。
func (c *Client) Withdraw(ctx context.Context) error {
	return c.delete(ctx, "/api/users/me")
}

// ListProjects はプロジェクト一覧を返す。ownerIDが空の場合は全件を返す。
func (c *Client) ListProjects(ctx context.Context, ownerID string) ([]*model.Project, error) {
	var query url.Values
	if ownerID != "" {
		query = url.Values{"owner": {ownerID}}
	}
	var resp []projectDTO
	if err := c.get(ctx, "/api/projects", query, &resp); err != nil {
		return nil, err
	}
	projects := make([]*model.Project, 0, len(resp))
	for i := range resp {
		projects = append(projects, resp[i].toModel())
	}
	return projects, nil
}

// CreateProject はプロジェクトを作成する。
func (c *Client) CreateProject(ctx context.Context, title string) (*model.Project, error) {
	var resp projectDTO
	if err := c.post(ctx, "/api/projects", titleRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// GetProject は指定IDのプロジェクトを返す。
func (c *Client) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var resp projectDTO
	if err := c.get(ctx, projectPath(projectID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// UpdateProjectTitle はプロジェクト名を変更する。
func (c *Client) UpdateProjectTitle(ctx context.Context, projectID, title string) (*model.Project, error) {
	var resp projectDTO
	if err := c.patch(ctx, projectPath(projectID), titleRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// DeleteProject はプロジェクトを削除する。配下のタスクは削除されない。
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.delete(ctx, projectPath(projectID))
}

// ListTasks はプロジェクト配下のタスク一覧を返す。
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	var resp []taskDTO
	if err := c.get(ctx, tasksPath(projectID), nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]*model.Task, 0, len(resp))
	for i := range resp {
		tasks = append(tasks, resp[i].toModel())
	}
	return tasks, nil
}

// CreateTask はタスクを作成する。
func (c *Client) CreateTask(ctx context.Context, projectID, title string, status model.TaskStatus) (*model.Task, error) {
	var resp taskDTO
	if err := c.post(ctx, tasksPath(projectID), taskRequest{Title: title, Status: string(status)}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// UpdateTask はタスクのタイトルとステータスを上書きする。
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID, title string, status model.TaskStatus) (*model.Task, error) {
	var resp taskDTO
	if err := c.put(ctx, taskPath(projectID, taskID), taskRequest{Title: title, Status: string(status)}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// DeleteTask はタスクを削除する。
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return c.delete(ctx, taskPath(projectID, taskID))
}

func projectPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID)
}

func tasksPath(projectID string) string {
	return projectPath(projectID) + "/tasks"
}

func taskPath(projectID, taskID string) string {
	return tasksPath(projectID) + "/" + url.PathEscape(taskID)
}
