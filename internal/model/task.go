package model

import (
	"strings"
	"time"
)

// TaskStatus はタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusPending は未着手。
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress は作業中。永続化表現は空白を含む "in progress"。
	TaskStatusInProgress TaskStatus = "in progress"
	// TaskStatusCompleted は完了。
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid は定義済みのステータスかどうかを返す。
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// ParseTaskStatus は文字列をTaskStatusに変換する。
// 空文字列は pending として扱う。"in-progress" と "in_progress" も受け付ける。
func ParseTaskStatus(s string) (TaskStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "":
		return TaskStatusPending, nil
	case "in-progress", "in_progress":
		return TaskStatusInProgress, nil
	}
	status := TaskStatus(normalized)
	if !status.Valid() {
		return "", NewInvalidStatusError(s)
	}
	return status, nil
}

// Task はプロジェクト配下のタスクを表す。
// 並び順のフィールドは持たず、一覧の順序はストアの列挙順に従う。
type Task struct {
	ID        string
	ProjectID string
	Title     string
	Status    TaskStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
