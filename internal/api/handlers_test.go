package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/pkgdb"
	"github.com/hbpm-labs/hbpm/internal/shell"
)

type fakeFetcher struct {
	catalog pkgdb.Catalog
	err     error
}

func (f *fakeFetcher) FetchCatalog(context.Context) (pkgdb.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog.Clone(), nil
}

// fakeRunner satisfies clone and git-config calls against the temp tree.
type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, dir string, argv ...string) (shell.Result, error) {
	if argv[0] == "git" && len(argv) > 1 {
		switch argv[1] {
		case "clone":
			if err := os.MkdirAll(argv[3], 0o755); err != nil {
				return shell.Result{}, err
			}
			return shell.Result{}, nil
		case "config":
			return shell.Result{ExitCode: 1}, nil
		}
	}
	return shell.Result{}, nil
}

func (fakeRunner) Start(context.Context, string, ...string) error { return nil }

func testServer(t *testing.T) (*Server, config.Runtime) {
	t.Helper()
	root := t.TempDir()
	plugins := filepath.Join(root, "HomeBoard", "plugins")
	if err := os.MkdirAll(plugins, 0o755); err != nil {
		t.Fatal(err)
	}
	rt := config.Runtime{
		DataDir:         filepath.Join(root, "data"),
		DashboardRoot:   filepath.Join(root, "HomeBoard"),
		PluginsRoot:     plugins,
		RefreshInterval: 24 * time.Hour,
		SelfName:        "hbpm",
	}
	fetch := &fakeFetcher{catalog: pkgdb.Catalog{
		"Clocks":  {{Title: "Clock1", Author: "ann", Description: "a clock", Repository: "https://github.com/a/Clock1"}},
		"Weather": {{Title: "Weather1", Author: "bob", Description: "a forecast", Repository: "https://github.com/b/Weather1"}},
	}}
	store := pkgdb.NewStore(rt, fetch, logging.Nop())
	return NewServer(rt, store, fakeRunner{}, logging.Nop(), "1.2.3"), rt
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("parsing response %q: %v", w.Body.String(), err)
		}
	}
	return w, parsed
}

func TestRootReportsVersion(t *testing.T) {
	s, _ := testServer(t)
	w, body := doRequest(t, s, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", body["version"])
	}
}

func TestListPackages(t *testing.T) {
	s, _ := testServer(t)
	w, body := doRequest(t, s, http.MethodGet, "/api/packages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestSearchPackages(t *testing.T) {
	s, _ := testServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/api/packages/search?q=forecast", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}

	w, _ = doRequest(t, s, http.MethodGet, "/api/packages/search", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q should be a 400, got %d", w.Code)
	}
}

func TestInstallPackages(t *testing.T) {
	s, rt := testServer(t)

	w, body := doRequest(t, s, http.MethodPost, "/api/packages/install", `{"titles": ["Clock1"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if _, err := os.Stat(filepath.Join(rt.PluginsRoot, "Clock1")); err != nil {
		t.Errorf("Clock1 should be cloned: %v", err)
	}
}

func TestInstallUnknownTitle(t *testing.T) {
	s, _ := testServer(t)

	w, _ := doRequest(t, s, http.MethodPost, "/api/packages/install", `{"titles": ["NoSuch"]}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDatabaseInfoAndRefresh(t *testing.T) {
	s, _ := testServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/api/database/info", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["packages"].(float64) != 2 {
		t.Errorf("packages = %v, want 2", body["packages"])
	}

	w, body = doRequest(t, s, http.MethodPost, "/api/database/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", w.Code)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
}

func TestRefreshDatabaseUpstreamDown(t *testing.T) {
	root := t.TempDir()
	plugins := filepath.Join(root, "HomeBoard", "plugins")
	if err := os.MkdirAll(plugins, 0o755); err != nil {
		t.Fatal(err)
	}
	rt2 := config.Runtime{
		DataDir:         filepath.Join(root, "data"),
		DashboardRoot:   filepath.Join(root, "HomeBoard"),
		PluginsRoot:     plugins,
		RefreshInterval: 24 * time.Hour,
	}
	store := pkgdb.NewStore(rt2, &fakeFetcher{err: context.DeadlineExceeded}, logging.Nop())
	s := NewServer(rt2, store, fakeRunner{}, logging.Nop(), "dev")

	w, _ := doRequest(t, s, http.MethodPost, "/api/database/refresh", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestExternalPackagesRoundTrip(t *testing.T) {
	s, _ := testServer(t)

	w, _ := doRequest(t, s, http.MethodPost, "/api/external-packages",
		`{"title": "MyPlugin", "author": "me", "repository": "https://github.com/me/MyPlugin", "description": "mine"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d", w.Code)
	}

	w, body := doRequest(t, s, http.MethodGet, "/api/external-packages", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	packages := body["packages"].([]any)
	if len(packages) != 1 {
		t.Fatalf("packages = %v, want one entry", packages)
	}

	w, _ = doRequest(t, s, http.MethodDelete, "/api/external-packages", `{"titles": ["MyPlugin"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	_, body = doRequest(t, s, http.MethodGet, "/api/external-packages", "")
	if len(body["packages"].([]any)) != 0 {
		t.Errorf("packages = %v, want empty", body["packages"])
	}
}

func TestRemoveExternalUnknownTitle(t *testing.T) {
	s, _ := testServer(t)

	doRequest(t, s, http.MethodPost, "/api/external-packages",
		`{"title": "MyPlugin", "author": "me", "repository": "https://github.com/me/MyPlugin", "description": "mine"}`)

	w, _ := doRequest(t, s, http.MethodDelete, "/api/external-packages", `{"titles": ["NoSuch"]}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEnv(t *testing.T) {
	s, rt := testServer(t)

	w, body := doRequest(t, s, http.MethodGet, "/api/env", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["HBPM_DASHBOARD_ROOT"] != rt.DashboardRoot {
		t.Errorf("HBPM_DASHBOARD_ROOT = %v, want %s", body["HBPM_DASHBOARD_ROOT"], rt.DashboardRoot)
	}
}
