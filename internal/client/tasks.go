package client

import (
	"context"
	"strings"
	"sync"

	"github.com/hitoshi/taskboard/internal/model"
)

// TaskStore は1つのプロジェクト配下のタスク一覧のキャッシュを保持する。
type TaskStore struct {
	client    *Client
	notifier  Notifier
	projectID string

	mu         sync.RWMutex
	tasks      State[[]*model.Task]
	generation uint64
}

// NewTaskStore はprojectIDのタスクを扱うTaskStoreを生成する。
func NewTaskStore(c *Client, projectID string, notifier Notifier) *TaskStore {
	if notifier == nil {
		notifier = NewSlogNotifier(nil)
	}
	return &TaskStore{client: c, notifier: notifier, projectID: projectID}
}

// ProjectID は対象プロジェクトのIDを返す。
func (s *TaskStore) ProjectID() string {
	return s.projectID
}

// Tasks はタスク一覧の状態を返す。Dataはキャッシュのコピー。
func (s *TaskStore) Tasks() State[[]*model.Task] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.tasks
	st.Data = cloneTasks(st.Data)
	return st
}

// Load はタスク一覧を取得してキャッシュを置き換える。
// プロジェクトが削除済みでも配下に残ったタスクは返る。
func (s *TaskStore) Load(ctx context.Context) ([]*model.Task, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.tasks = s.tasks.pending()
	s.mu.Unlock()

	tasks, err := s.client.ListTasks(ctx, s.projectID)

	s.mu.Lock()
	stale := gen != s.generation
	if !stale {
		if err != nil {
			s.tasks = s.tasks.failed(err)
		} else {
			s.tasks = s.tasks.ready(tasks)
		}
	}
	s.mu.Unlock()

	if err != nil {
		if !stale {
			s.notifier.Notify(NotificationError, failureMessage("タスクの読み込みに失敗しました", err))
		}
		return nil, err
	}
	return cloneTasks(tasks), nil
}

// Create はタスクを作成し、キャッシュの末尾に追加する。
// statusが空の場合はpendingとして作成する。
// タイトルまたはステータスが不正な場合はAPIを呼ばずにバリデーションエラーを返す。
func (s *TaskStore) Create(ctx context.Context, title, status string) (*model.Task, error) {
	st, err := validateTask(title, status)
	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("タスクの追加に失敗しました", err))
		return nil, err
	}

	task, err := s.client.CreateTask(ctx, s.projectID, title, st)
	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("タスクの追加に失敗しました", err))
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	s.tasks = s.tasks.ready(append(cloneTasks(s.tasks.Data), task))
	s.mu.Unlock()
	s.notifier.Notify(NotificationSuccess, "タスクを追加しました")
	return task, nil
}

// Update はタスクのタイトルとステータスを上書きし、キャッシュの該当エントリを置き換える。
// 全フィールドを上書きするため、空のステータスはpendingに補完せず拒否する。
func (s *TaskStore) Update(ctx context.Context, taskID, title, status string) (*model.Task, error) {
	st, err := validateTask(title, status)
	if err == nil && strings.TrimSpace(status) == "" {
		err = model.NewInvalidStatusError(status)
	}
	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("タスクの更新に失敗しました", err))
		return nil, err
	}

	task, err := s.client.UpdateTask(ctx, s.projectID, taskID, title, st)
	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("タスクの更新に失敗しました", err))
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	tasks := cloneTasks(s.tasks.Data)
	for i, t := range tasks {
		if t.ID == taskID {
			tasks[i] = task
		}
	}
	s.tasks.Data = tasks
	s.mu.Unlock()
	s.notifier.Notify(NotificationSuccess, "タスクを更新しました")
	return task, nil
}

// Delete はタスクを削除し、キャッシュから取り除く。取り消しはできない。
// 利用者への確認は呼び出し側で行う。
func (s *TaskStore) Delete(ctx context.Context, taskID string) error {
	if err := s.client.DeleteTask(ctx, s.projectID, taskID); err != nil {
		s.notifier.Notify(NotificationError, failureMessage("タスクの削除に失敗しました", err))
		return err
	}

	s.mu.Lock()
	s.generation++
	tasks := make([]*model.Task, 0, len(s.tasks.Data))
	for _, t := range s.tasks.Data {
		if t.ID != taskID {
			tasks = append(tasks, t)
		}
	}
	s.tasks.Data = tasks
	s.mu.Unlock()
	s.notifier.Notify(NotificationSuccess, "タスクを削除しました")
	return nil
}

func validateTask(title, status string) (model.TaskStatus, error) {
	if err := model.ValidateTitle(title); err != nil {
		return "", err
	}
	return model.ParseTaskStatus(status)
}

func cloneTasks(tasks []*model.Task) []*model.Task {
	if tasks == nil {
		return nil
	}
	out := make([]*model.Task, len(tasks))
	copy(out, tasks)
	return out
}
