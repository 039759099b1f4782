package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	List(ctx context.Context, projectID string) ([]*model.Task, error)
	Create(ctx context.Context, requesterID, projectID, title, status string) (*model.Task, error)
	Update(ctx context.Context, requesterID, projectID, taskID, title, status string) (*model.Task, error)
	Delete(ctx context.Context, requesterID, projectID, taskID string) error
}

// TaskHandler はプロジェクト配下のタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

type taskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// ListTasks はプロジェクト配下のタスク一覧を返す。
// プロジェクトが削除済みでも残っているタスクは返す。
// GET /api/projects/{id}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTask はタスクを作成する。statusを省略した場合は pending になる。
// POST /api/projects/{id}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Title, req.Status)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// UpdateTask はタスクのタイトルとステータスを上書きする。
// PUT /api/projects/{id}/tasks/{taskID}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), req.Title, req.Status)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask はタスクを削除する。
// DELETE /api/projects/{id}/tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "taskID")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
