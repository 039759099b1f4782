package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(w.Result().Body)
	return string(body)
}

func TestHandler_ExposesRecordedSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordMutation("project", "create")
	c.RecordMutation("task", "delete")
	c.RecordHTTPRequest(http.MethodPatch, "/api/projects/{projectID}", http.StatusForbidden, 3*time.Millisecond)
	c.RecordCleanup("orphan_tasks", 4)

	body := scrape(t, reg)
	for _, want := range []string{
		`taskboard_mutations_total{operation="create",resource="project"} 1`,
		`taskboard_mutations_total{operation="delete",resource="task"} 1`,
		`route="/api/projects/{projectID}"`,
		`status_code="403"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %s", want)
		}
	}
}

func TestHandler_OnlyServesGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthAttempt("signin", nil)

	n, err := testutil.GatherAndCount(reg, "taskboard_auth_attempts_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("auth attempt series = %d, want 1", n)
	}
	if body := scrape(t, reg); strings.Contains(body, "go_goroutines") {
		t.Error("default process collectors should not leak into a private registry")
	}
}
