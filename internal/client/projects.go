package client

import (
	"context"
	"sync"

	"github.com/hitoshi/taskboard/internal/model"
)

// ProjectStore はプロジェクト一覧のキャッシュを保持する。
//
// 一覧取得は成功時のみキャッシュを置き換える。後から発行された取得や書き込みが先に完了した場合、
// 古い取得の応答は破棄する。書き込みはAPI成功後にキャッシュへ反映する。
type ProjectStore struct {
	client   *Client
	notifier Notifier

	mu         sync.RWMutex
	list       State[[]*model.Project]
	current    State[*model.Project]
	generation uint64
}

// NewProjectStore はProjectStoreを生成する。notifierがnilの場合はslogに出力する。
func NewProjectStore(c *Client, notifier Notifier) *ProjectStore {
	if notifier == nil {
		notifier = NewSlogNotifier(nil)
	}
	return &ProjectStore{client: c, notifier: notifier}
}

// List は一覧スライスの状態を返す。Dataはキャッシュのコピー。
func (s *ProjectStore) List() State[[]*model.Project] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.list
	st.Data = cloneProjects(st.Data)
	return st
}

// Current は詳細スライスの状態を返す。
func (s *ProjectStore) Current() State[*model.Project] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load はプロジェクト一覧を取得してキャッシュを置き換える。
// ownerIDが空の場合は全件、"me" の場合はログイン中ユーザーの所有分を取得する。
// 失敗時はキャッシュを変更しない。
func (s *ProjectStore) Load(ctx context.Context, ownerID string) ([]*model.Project, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.list = s.list.pending()
	s.mu.Unlock()

	projects, err := s.client.ListProjects(ctx, ownerID)

	s.mu.Lock()
	if gen != s.generation {
		// より新しい取得か書き込みが反映済み
		s.mu.Unlock()
		return projects, err
	}
	if err != nil {
		s.list = s.list.failed(err)
	} else {
		s.list = s.list.ready(projects)
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクトの読み込みに失敗しました", err))
		return nil, err
	}
	s.notifier.Notify(NotificationInfo, "プロジェクトを読み込みました")
	return cloneProjects(projects), nil
}

// Create はプロジェクトを作成し、キャッシュの末尾に追加する。
// タイトルが不正な場合はAPIを呼ばずにバリデーションエラーを返す。
func (s *ProjectStore) Create(ctx context.Context, title string) (*model.Project, error) {
	if err := model.ValidateTitle(title); err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクトの作成に失敗しました", err))
		return nil, err
	}

	project, err := s.client.CreateProject(ctx, title)
	if err != nil {
		s.mu.Lock()
		s.list = s.list.failed(err)
		s.mu.Unlock()
		s.notifier.Notify(NotificationError, failureMessage("プロジェクトの作成に失敗しました", err))
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	s.list = s.list.ready(append(cloneProjects(s.list.Data), project))
	s.mu.Unlock()
	s.notifier.Notify(NotificationSuccess, "プロジェクトを作成しました")
	return project, nil
}

// FetchByID は指定IDのプロジェクトを取得し、詳細スライスに保持する。
func (s *ProjectStore) FetchByID(ctx context.Context, projectID string) (*model.Project, error) {
	s.mu.Lock()
	s.current = s.current.pending()
	s.mu.Unlock()

	project, err := s.client.GetProject(ctx, projectID)

	s.mu.Lock()
	if err != nil {
		s.current = State[*model.Project]{Phase: PhaseFailed, Err: err}
	} else {
		s.current = s.current.ready(project)
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクトの読み込みに失敗しました", err))
		return nil, err
	}
	return project, nil
}

// UpdateTitle はプロジェクト名を変更し、キャッシュの該当エントリを更新する。
// タイトルが不正な場合はAPIを呼ばずにバリデーションエラーを返す。
func (s *ProjectStore) UpdateTitle(ctx context.Context, projectID, title string) (*model.Project, error) {
	if err := model.ValidateTitle(title); err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクト名の変更に失敗しました", err))
		return nil, err
	}

	project, err := s.client.UpdateProjectTitle(ctx, projectID, title)
	if err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクト名の変更に失敗しました", err))
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	projects := cloneProjects(s.list.Data)
	for i, p := range projects {
		if p.ID == projectID {
			projects[i] = project
		}
	}
	s.list.Data = projects
	if s.current.Data != nil && s.current.Data.ID == projectID {
		s.current.Data = project
	}
	s.mu.Unlock()

	s.notifier.Notify(NotificationSuccess, "プロジェクト名を変更しました")
	return project, nil
}

// Delete はプロジェクトを削除し、キャッシュから取り除く。
func (s *ProjectStore) Delete(ctx context.Context, projectID string) error {
	if err := s.client.DeleteProject(ctx, projectID); err != nil {
		s.notifier.Notify(NotificationError, failureMessage("プロジェクトの削除に失敗しました", err))
		return err
	}

	s.mu.Lock()
	s.generation++
	projects := make([]*model.Project, 0, len(s.list.Data))
	for _, p := range s.list.Data {
		if p.ID != projectID {
			projects = append(projects, p)
		}
	}
	s.list.Data = projects
	if s.current.Data != nil && s.current.Data.ID == projectID {
		s.current = State[*model.Project]{}
	}
	s.mu.Unlock()

	s.notifier.Notify(NotificationSuccess, "プロジェクトを削除しました")
	return nil
}

// Reset はキャッシュを破棄する。ログアウト時に呼び出す。
func (s *ProjectStore) Reset() {
	s.mu.Lock()
	s.generation++
	s.list = State[[]*model.Project]{}
	s.current = State[*model.Project]{}
	s.mu.Unlock()
}

func cloneProjects(projects []*model.Project) []*model.Project {
	if projects == nil {
		return nil
	}
	out := make([]*model.Project, len(projects))
	copy(out, projects)
	return out
}
