package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskboard/internal/model"
)

func TestWriteErrorResponse_Format(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorResponse(w, http.StatusNotFound, model.NewProjectNotFoundError("p-1"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeProjectNotFound {
		t.Errorf("code = %q", body.Code)
	}
	if body.Category != model.CategoryProject {
		t.Errorf("category = %q", body.Category)
	}
	if body.Message == "" || body.Action == "" {
		t.Error("message and action should be set")
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewInvalidEmailError(), http.StatusBadRequest},
		{model.NewWeakPasswordError(8, 72), http.StatusBadRequest},
		{model.NewEmailInUseError(), http.StatusConflict},
		{model.NewAuthProviderError(), http.StatusServiceUnavailable},
		{model.NewUserNotFoundError(), http.StatusNotFound},
		{model.NewProjectNotFoundError("p"), http.StatusNotFound},
		{model.NewTaskNotFoundError("t"), http.StatusNotFound},
		{model.NewNotProjectOwnerError(), http.StatusForbidden},
		{model.NewCSRFValidationFailedError(), http.StatusForbidden},
		{model.NewEmptyTitleError(), http.StatusBadRequest},
		{model.NewTitleTooLongError(200), http.StatusBadRequest},
		{model.NewTitleHasMarkupError(), http.StatusBadRequest},
		{model.NewInvalidStatusError("done"), http.StatusBadRequest},
		{model.NewInvalidRequestError(), http.StatusBadRequest},
		{model.NewRateLimitExceededError(), http.StatusTooManyRequests},
		{model.NewStoreError(), http.StatusInternalServerError},
		{model.NewInternalError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

func TestWriteError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/projects/p-1", nil)
	err := fmt.Errorf("delete project: %w", model.NewNotProjectOwnerError())

	WriteError(w, r, err)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeNotProjectOwner {
		t.Errorf("code = %q", body.Code)
	}
}

func TestWriteError_PlainErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/projects", nil)

	WriteError(w, r, errors.New("pq: password authentication failed"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
	if body.Message == "pq: password authentication failed" {
		t.Error("internal error details must not leak to the response")
	}
}
