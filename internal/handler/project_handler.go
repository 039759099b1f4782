package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
)

// ownerQueryMe は自分が所有するプロジェクトに絞り込むクエリ値。
const ownerQueryMe = "me"

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	List(ctx context.Context, ownerID string) ([]*model.Project, error)
	Create(ctx context.Context, ownerID, title string) (*model.Project, error)
	Get(ctx context.Context, projectID string) (*model.Project, error)
	UpdateTitle(ctx context.Context, requesterID, projectID, title string) (*model.Project, error)
	Delete(ctx context.Context, requesterID, projectID string) error
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type projectTitleRequest struct {
	Title string `json:"title"`
}

// ListProjects はプロジェクト一覧を返す。
// ?owner=me は自分の所有分、?owner=<userID> はそのユーザーの所有分、指定なしは全件。
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ownerID := r.URL.Query().Get("owner")
	if ownerID == ownerQueryMe {
		ownerID = userID
	}

	projects, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p, userID))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateProject はリクエストユーザーを所有者としてプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req projectTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(project, userID))
}

// GetProject はプロジェクト詳細を返す。閲覧は所有者以外にも許可する。
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	project, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(project, userID))
}

// UpdateProjectTitle はプロジェクト名を変更する。所有者のみ実行できる。
// PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProjectTitle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req projectTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.service.UpdateTitle(r.Context(), userID, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(project, userID))
}

// DeleteProject はプロジェクトを削除する。配下のタスクは削除しない。
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
