package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/taskboard/internal/model"
)

// countingNotifier は通知の種別ごとの件数を数える。
type countingNotifier struct {
	mu     sync.Mutex
	counts map[NotificationKind]int
	last   string
}

func (n *countingNotifier) Notify(kind NotificationKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = map[NotificationKind]int{}
	}
	n.counts[kind]++
	n.last = message
}

func (n *countingNotifier) count(kind NotificationKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[kind]
}

func TestProjectStore_LocalValidationSkipsRemoteCall(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	notes := &countingNotifier{}
	store := NewProjectStore(c, notes)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := store.Create(context.Background(), title)
		assert.True(t, model.HasCode(err, model.ErrCodeEmptyTitle), "title %q", title)

		_, err = store.UpdateTitle(context.Background(), "p1", title)
		assert.True(t, model.IsValidation(err), "title %q", title)
	}

	assert.Zero(t, calls.Load(), "no request should reach the server")
	assert.Equal(t, 6, notes.count(NotificationError))
}

func TestProjectStore_LoadFailureKeepsCache(t *testing.T) {
	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeTestError(w, http.StatusInternalServerError, model.NewStoreError())
			return
		}
		writeTestJSON(w, http.StatusOK, []projectDTO{{ID: "p1", Title: "Launch Plan", CreatedBy: "u1"}})
	})
	c := newTestClient(t, mux)
	notes := &countingNotifier{}
	store := NewProjectStore(c, notes)

	_, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, store.List().Phase)

	fail.Store(true)
	_, err = store.Load(context.Background(), "")
	require.Error(t, err)

	st := store.List()
	assert.Equal(t, PhaseFailed, st.Phase)
	require.Len(t, st.Data, 1)
	assert.Equal(t, "p1", st.Data[0].ID)
	assert.NotEmpty(t, st.ErrorMessage())
	assert.Equal(t, 1, notes.count(NotificationError))
}

func TestProjectStore_DiscardsStaleListResponse(t *testing.T) {
	slowArrived := make(chan struct{})
	releaseSlow := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("owner") == "slow" {
			close(slowArrived)
			<-releaseSlow
			writeTestJSON(w, http.StatusOK, []projectDTO{{ID: "stale", Title: "Old", CreatedBy: "slow"}})
			return
		}
		writeTestJSON(w, http.StatusOK, []projectDTO{{ID: "fresh", Title: "New", CreatedBy: "u1"}})
	})
	c := newTestClient(t, mux)
	store := NewProjectStore(c, &countingNotifier{})

	done := make(chan error, 1)
	go func() {
		_, err := store.Load(context.Background(), "slow")
		done <- err
	}()
	<-slowArrived

	_, err := store.Load(context.Background(), "")
	require.NoError(t, err)

	close(releaseSlow)
	require.NoError(t, <-done)

	st := store.List()
	assert.Equal(t, PhaseReady, st.Phase)
	require.Len(t, st.Data, 1)
	assert.Equal(t, "fresh", st.Data[0].ID)
}

func TestProjectStore_LoadStartedBeforeWriteIsDiscarded(t *testing.T) {
	loadArrived := make(chan struct{})
	releaseLoad := make(chan struct{})

	mux := csrfAwareMux(nil)
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		close(loadArrived)
		<-releaseLoad
		writeTestJSON(w, http.StatusOK, []projectDTO{{ID: "p1", Title: "One", CreatedBy: "u1"}})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusCreated, projectDTO{ID: "p2", Title: "Two", CreatedBy: "u1"})
	})
	c := newTestClient(t, mux)
	store := NewProjectStore(c, &countingNotifier{})

	done := make(chan error, 1)
	go func() {
		_, err := store.Load(context.Background(), "")
		done <- err
	}()
	<-loadArrived

	_, err := store.Create(context.Background(), "Two")
	require.NoError(t, err)

	close(releaseLoad)
	require.NoError(t, <-done)

	st := store.List()
	assert.Equal(t, PhaseReady, st.Phase)
	require.Len(t, st.Data, 1)
	assert.Equal(t, "p2", st.Data[0].ID)
}

func TestProjectStore_WritesPatchCache(t *testing.T) {
	mux := csrfAwareMux(nil)
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []projectDTO{
			{ID: "p1", Title: "One", CreatedBy: "u1"},
			{ID: "p2", Title: "Two", CreatedBy: "u1"},
		})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusCreated, projectDTO{ID: "p3", Title: "Three", CreatedBy: "u1"})
	})
	mux.HandleFunc("GET /api/projects/p2", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, projectDTO{ID: "p2", Title: "Two", CreatedBy: "u1"})
	})
	mux.HandleFunc("PATCH /api/projects/p2", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, projectDTO{ID: "p2", Title: "Renamed", CreatedBy: "u1"})
	})
	mux.HandleFunc("DELETE /api/projects/p1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	store := NewProjectStore(c, &countingNotifier{})
	ctx := context.Background()

	_, err := store.Load(ctx, "me")
	require.NoError(t, err)

	_, err = store.Create(ctx, "Three")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, projectIDs(store.List().Data))

	_, err = store.FetchByID(ctx, "p2")
	require.NoError(t, err)

	_, err = store.UpdateTitle(ctx, "p2", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", store.List().Data[1].Title)
	assert.Equal(t, "Renamed", store.Current().Data.Title)

	require.NoError(t, store.Delete(ctx, "p1"))
	assert.Equal(t, []string{"p2", "p3"}, projectIDs(store.List().Data))

	store.Reset()
	assert.Equal(t, PhaseIdle, store.List().Phase)
	assert.Empty(t, store.List().Data)
}

func TestProjectStore_FetchByIDNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/gone", func(w http.ResponseWriter, r *http.Request) {
		writeTestError(w, http.StatusNotFound, model.NewProjectNotFoundError("gone"))
	})
	c := newTestClient(t, mux)
	store := NewProjectStore(c, &countingNotifier{})

	_, err := store.FetchByID(context.Background(), "gone")
	assert.True(t, model.IsNotFound(err))
	assert.Equal(t, PhaseFailed, store.Current().Phase)
	assert.Nil(t, store.Current().Data)
}

func projectIDs(projects []*model.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}
