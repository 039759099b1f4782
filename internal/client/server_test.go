package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/taskboard/internal/auth"
	"github.com/hitoshi/taskboard/internal/client"
	"github.com/hitoshi/taskboard/internal/handler"
	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
	"github.com/hitoshi/taskboard/internal/project"
	"github.com/hitoshi/taskboard/internal/repository"
	"github.com/hitoshi/taskboard/internal/security"
	"github.com/hitoshi/taskboard/internal/task"
	"github.com/hitoshi/taskboard/internal/user"
)

// memStore は全リポジトリが共有するインメモリのデータ。
type memStore struct {
	mu         sync.Mutex
	users      map[string]*model.User
	identities map[string]*model.Identity
	sessions   map[string]*model.Session
	projects   []*model.Project
	tasks      []*model.Task
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*model.User{},
		identities: map[string]*model.Identity{},
		sessions:   map[string]*model.Session{},
	}
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) CreateWithIdentity(_ context.Context, u *model.User, ident *model.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := ident.ProviderUserID
	if _, ok := r.s.identities[key]; ok {
		return repository.ErrDuplicate
	}
	uc, ic := *u, *ident
	r.s.users[u.ID] = &uc
	r.s.identities[key] = &ic
	return nil
}

func (r memUserRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	for k, ident := range r.s.identities {
		if ident.UserID == id {
			delete(r.s.identities, k)
		}
	}
	kept := r.s.projects[:0]
	for _, p := range r.s.projects {
		if p.OwnerID != id {
			kept = append(kept, p)
		}
	}
	r.s.projects = kept
	return nil
}

type memIdentityRepo struct{ s *memStore }

func (r memIdentityRepo) FindPasswordIdentity(_ context.Context, email string) (*model.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ident, ok := r.s.identities[email]
	if !ok {
		return nil, nil
	}
	cp := *ident
	return &cp, nil
}

type memSessionRepo struct{ s *memStore }

func (r memSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r memSessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (r memSessionRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r memSessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, session := range r.s.sessions {
		if session.UserID == userID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

type memProjectRepo struct{ s *memStore }

func (r memProjectRepo) FindByID(_ context.Context, id string) (*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Project
	for _, p := range r.s.projects {
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memProjectRepo) Create(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.projects = append(r.s.projects, &cp)
	return nil
}

func (r memProjectRepo) UpdateTitle(_ context.Context, id, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.projects {
		if p.ID == id {
			p.Title = title
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memProjectRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.projects {
		if p.ID == id {
			r.s.projects = append(r.s.projects[:i], r.s.projects[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memTaskRepo struct{ s *memStore }

func (r memTaskRepo) ListByProject(_ context.Context, projectID string) ([]*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Task
	for _, t := range r.s.tasks {
		if t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memTaskRepo) Create(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	r.s.tasks = append(r.s.tasks, &cp)
	return nil
}

func (r memTaskRepo) Update(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tasks {
		if existing.ID == t.ID && existing.ProjectID == t.ProjectID {
			existing.Title = t.Title
			existing.Status = t.Status
			existing.UpdatedAt = time.Now()
			t.CreatedAt, t.UpdatedAt = existing.CreatedAt, existing.UpdatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memTaskRepo) Delete(_ context.Context, projectID, taskID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.tasks {
		if t.ID == taskID && t.ProjectID == projectID {
			r.s.tasks = append(r.s.tasks[:i], r.s.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// testServer は実際のサービスとルーターをインメモリのリポジトリで起動したAPIサーバー。
type testServer struct {
	*httptest.Server
	store *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := newMemStore()
	sessions := memSessionRepo{store}
	titles := security.NewTitleGuard()
	projectService := project.NewService(memProjectRepo{store}, titles)

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionFinder: sessions,
		RateLimiter:   limiter,
		AuthService: auth.NewService(
			memUserRepo{store}, memIdentityRepo{store}, sessions,
			auth.NewBcryptHasher(4),
			auth.ServiceConfig{SessionMaxAge: 3600},
		),
		ProjectService: projectService,
		TaskService:    task.NewService(memTaskRepo{store}, projectService, titles),
		UserService:    user.NewService(memUserRepo{store}, sessions, memProjectRepo{store}),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

// newClient はCookieJarを個別に持つクライアントを生成する。
func (s *testServer) newClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient(s.URL, client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

// notification は記録された通知。
type notification struct {
	Kind    client.NotificationKind
	Message string
}

// recordingNotifier は通知を記録するテスト用のNotifier。
type recordingNotifier struct {
	mu    sync.Mutex
	items []notification
}

func (n *recordingNotifier) Notify(kind client.NotificationKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notification{Kind: kind, Message: message})
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return notification{}
	}
	return n.items[len(n.items)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}
