package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
)

// --- モック定義 ---

// mockProjectService はProjectServiceInterfaceのモック実装。
type mockProjectService struct {
	listFn        func(ctx context.Context, ownerID string) ([]*model.Project, error)
	createFn      func(ctx context.Context, ownerID, title string) (*model.Project, error)
	getFn         func(ctx context.Context, projectID string) (*model.Project, error)
	updateTitleFn func(ctx context.Context, requesterID, projectID, title string) (*model.Project, error)
	deleteFn      func(ctx context.Context, requesterID, projectID string) error
}

func (m *mockProjectService) List(ctx context.Context, ownerID string) ([]*model.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockProjectService) Create(ctx context.Context, ownerID, title string) (*model.Project, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Get(ctx context.Context, projectID string) (*model.Project, error) {
	if m.getFn != nil {
		return m.getFn(ctx, projectID)
	}
	return nil, model.NewProjectNotFoundError(projectID)
}

func (m *mockProjectService) UpdateTitle(ctx context.Context, requesterID, projectID, title string) (*model.Project, error) {
	if m.updateTitleFn != nil {
		return m.updateTitleFn(ctx, requesterID, projectID, title)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) Delete(ctx context.Context, requesterID, projectID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, requesterID, projectID)
	}
	return nil
}

// --- ヘルパー ---

// withUserID はリクエストのコンテキストに認証済みユーザーIDを注入する。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// serveRoute はchiのURLパラメータを解決させるため、パターン付きで1リクエストを処理する。
func serveRoute(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleProject(id, ownerID, title string) *model.Project {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.Project{
		ID:        id,
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- GET /api/projects ---

func TestProjectHandler_ListProjects_OwnerFilter(t *testing.T) {
	tests := []struct {
		query     string
		wantOwner string
	}{
		{"", ""},
		{"?owner=me", "user-a"},
		{"?owner=user-b", "user-b"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotOwner string
			svc := &mockProjectService{
				listFn: func(ctx context.Context, ownerID string) ([]*model.Project, error) {
					gotOwner = ownerID
					return []*model.Project{
						sampleProject("p-1", "user-a", "Launch Plan"),
						sampleProject("p-2", "user-b", "Other"),
					}, nil
				},
			}
			h := NewProjectHandler(svc)

			req := withUserID(httptest.NewRequest(http.MethodGet, "/api/projects"+tt.query, nil), "user-a")
			w := httptest.NewRecorder()
			h.ListProjects(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if gotOwner != tt.wantOwner {
				t.Errorf("ownerID = %q, want %q", gotOwner, tt.wantOwner)
			}

			var got []projectResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if !got[0].CanEdit || got[1].CanEdit {
				t.Errorf("can_edit = (%v, %v), want (true, false)", got[0].CanEdit, got[1].CanEdit)
			}
			if got[0].Lists == nil {
				t.Error("lists should be encoded as an empty array")
			}
		})
	}
}

func TestProjectHandler_ListProjects_EmptyIsArray(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/projects", nil), "user-a")
	w := httptest.NewRecorder()
	h.ListProjects(w, req)

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", w.Body.String())
	}
}

// --- POST /api/projects ---

func TestProjectHandler_CreateProject(t *testing.T) {
	svc := &mockProjectService{
		createFn: func(ctx context.Context, ownerID, title string) (*model.Project, error) {
			if ownerID != "user-a" {
				t.Errorf("ownerID = %q", ownerID)
			}
			return sampleProject("p-new", ownerID, title), nil
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"Launch Plan"}`)), "user-a")
	w := httptest.NewRecorder()
	h.CreateProject(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var got projectResponse
	json.NewDecoder(w.Body).Decode(&got)
	if got.ID != "p-new" || got.Title != "Launch Plan" || got.CreatedBy != "user-a" || !got.CanEdit {
		t.Errorf("response = %+v", got)
	}
}

func TestProjectHandler_CreateProject_EmptyTitle(t *testing.T) {
	svc := &mockProjectService{
		createFn: func(ctx context.Context, ownerID, title string) (*model.Project, error) {
			return nil, model.NewEmptyTitleError()
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"   "}`)), "user-a")
	w := httptest.NewRecorder()
	h.CreateProject(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeEmptyTitle {
		t.Errorf("code = %q", body.Code)
	}
}

func TestProjectHandler_NoUser_Returns401(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	w := httptest.NewRecorder()
	h.CreateProject(w, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"x"}`)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- GET /api/projects/{id} ---

func TestProjectHandler_GetProject(t *testing.T) {
	svc := &mockProjectService{
		getFn: func(ctx context.Context, projectID string) (*model.Project, error) {
			if projectID != "p-1" {
				return nil, model.NewProjectNotFoundError(projectID)
			}
			return sampleProject("p-1", "user-a", "Launch Plan"), nil
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/projects/p-1", nil), "user-b")
	w := serveRoute(http.MethodGet, "/api/projects/{id}", h.GetProject, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got projectResponse
	json.NewDecoder(w.Body).Decode(&got)
	if got.CanEdit {
		t.Error("non-owner should not be able to edit")
	}

	req = withUserID(httptest.NewRequest(http.MethodGet, "/api/projects/missing", nil), "user-b")
	w = serveRoute(http.MethodGet, "/api/projects/{id}", h.GetProject, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- PATCH /api/projects/{id} ---

func TestProjectHandler_UpdateProjectTitle(t *testing.T) {
	svc := &mockProjectService{
		updateTitleFn: func(ctx context.Context, requesterID, projectID, title string) (*model.Project, error) {
			if requesterID != "user-a" {
				return nil, model.NewNotProjectOwnerError()
			}
			return sampleProject(projectID, requesterID, title), nil
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodPatch, "/api/projects/p-1", strings.NewReader(`{"title":"Renamed"}`)), "user-a")
	w := serveRoute(http.MethodPatch, "/api/projects/{id}", h.UpdateProjectTitle, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got projectResponse
	json.NewDecoder(w.Body).Decode(&got)
	if got.Title != "Renamed" || got.ID != "p-1" {
		t.Errorf("response = %+v", got)
	}

	req = withUserID(httptest.NewRequest(http.MethodPatch, "/api/projects/p-1", strings.NewReader(`{"title":"Hijack"}`)), "user-b")
	w = serveRoute(http.MethodPatch, "/api/projects/{id}", h.UpdateProjectTitle, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// --- DELETE /api/projects/{id} ---

func TestProjectHandler_DeleteProject(t *testing.T) {
	deleted := map[string]bool{}
	svc := &mockProjectService{
		deleteFn: func(ctx context.Context, requesterID, projectID string) error {
			if deleted[projectID] {
				return model.NewProjectNotFoundError(projectID)
			}
			deleted[projectID] = true
			return nil
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/projects/p-1", nil), "user-a")
	w := serveRoute(http.MethodDelete, "/api/projects/{id}", h.DeleteProject, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}

	// 2回目の削除はNotFound
	req = withUserID(httptest.NewRequest(http.MethodDelete, "/api/projects/p-1", nil), "user-a")
	w = serveRoute(http.MethodDelete, "/api/projects/{id}", h.DeleteProject, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestProjectHandler_StoreFailure_Returns500(t *testing.T) {
	svc := &mockProjectService{
		listFn: func(ctx context.Context, ownerID string) ([]*model.Project, error) {
			return nil, errors.New("connection reset")
		},
	}
	h := NewProjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/projects", nil), "user-a")
	w := httptest.NewRecorder()
	h.ListProjects(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q", body.Code)
	}
}
