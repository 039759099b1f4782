package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    TaskStatus
		wantErr bool
	}{
		{"", TaskStatusPending, false},
		{"pending", TaskStatusPending, false},
		{"in progress", TaskStatusInProgress, false},
		{"in-progress", TaskStatusInProgress, false},
		{"in_progress", TaskStatusInProgress, false},
		{"  Completed ", TaskStatusCompleted, false},
		{"done", "", true},
		{"inprogress", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.input)
			if tt.wantErr {
				if !HasCode(err, ErrCodeInvalidStatus) {
					t.Errorf("ParseTaskStatus(%q) error = %v, want INVALID_STATUS", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTaskStatus(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTaskStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if TaskStatus("in-progress").Valid() {
		t.Error("persisted form uses a space, not a hyphen")
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		code  string
	}{
		{"通常のタイトル", "Launch Plan", ""},
		{"空文字列", "", ErrCodeEmptyTitle},
		{"空白のみ", " \t\n", ErrCodeEmptyTitle},
		{"最大長ちょうど", strings.Repeat("あ", MaxTitleLength), ""},
		{"最大長超過", strings.Repeat("a", MaxTitleLength+1), ErrCodeTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateTitle() error = %v", err)
				}
				return
			}
			if !HasCode(err, tt.code) {
				t.Errorf("ValidateTitle() error = %v, want %s", err, tt.code)
			}
			if !IsValidation(err) {
				t.Error("title errors should be validation errors")
			}
		})
	}
}

func TestProject_CanEdit(t *testing.T) {
	p := &Project{ID: "p1", OwnerID: "user-a"}

	if !p.CanEdit("user-a") {
		t.Error("owner should be able to edit")
	}
	if p.CanEdit("user-b") {
		t.Error("other user must not edit")
	}
	if p.CanEdit("") {
		t.Error("anonymous must not edit")
	}

	var nilProject *Project
	if nilProject.CanEdit("user-a") {
		t.Error("nil project must not be editable")
	}
	if (&Project{}).CanEdit("") {
		t.Error("empty owner and empty user must not match")
	}
}

func TestAPIError_Helpers(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewProjectNotFoundError("p1"))

	apiErr, ok := AsAPIError(wrapped)
	if !ok || apiErr.Code != ErrCodeProjectNotFound {
		t.Fatalf("AsAPIError() = %v, %v", apiErr, ok)
	}
	if !strings.Contains(apiErr.Error(), "PROJECT_NOT_FOUND") {
		t.Errorf("Error() = %q", apiErr.Error())
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(NewNotProjectOwnerError()) {
		t.Error("forbidden is not not-found")
	}
	if !IsNotFound(NewTaskNotFoundError("t1")) || !IsNotFound(NewUserNotFoundError()) {
		t.Error("task and user not found should be not-found")
	}
	if !IsAuth(NewInvalidCredentialsError()) || IsAuth(NewStoreError()) {
		t.Error("IsAuth mismatch")
	}
	if _, ok := AsAPIError(errors.New("plain")); ok {
		t.Error("plain errors are not APIError")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error has no code")
	}
}

func TestAPIError_Categories(t *testing.T) {
	tests := []struct {
		err      *APIError
		category string
	}{
		{NewUnauthorizedError(), CategoryAuth},
		{NewWeakPasswordError(8, 72), CategoryAuth},
		{NewEmailInUseError(), CategoryAuth},
		{NewAuthProviderError(), CategoryAuth},
		{NewCSRFValidationFailedError(), CategoryAuth},
		{NewEmptyTitleError(), CategoryValidation},
		{NewTitleHasMarkupError(), CategoryValidation},
		{NewInvalidStatusError("x"), CategoryValidation},
		{NewInvalidRequestError(), CategoryValidation},
		{NewNotProjectOwnerError(), CategoryProject},
		{NewStoreError(), CategorySystem},
		{NewInternalError(), CategorySystem},
		{NewRateLimitExceededError(), CategorySystem},
	}
	for _, tt := range tests {
		if tt.err.Category != tt.category {
			t.Errorf("%s category = %q, want %q", tt.err.Code, tt.err.Category, tt.category)
		}
		if tt.err.Message == "" || tt.err.Action == "" {
			t.Errorf("%s should have message and action", tt.err.Code)
		}
	}
}
