package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/model"
)

func TestRouter_Healthz(t *testing.T) {
	router := NewRouter(Config{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_OptionalRoutes(t *testing.T) {
	router := NewRouter(Config{}, zerolog.Nop())

	for _, path := range []string{"/metrics", "/status", "/archive/"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 when not configured, got %d", path, rec.Code)
		}
	}
}

func TestRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "course_archiver_runs_total 1\n")
	})
	router := NewRouter(Config{MetricsHandler: metrics}, zerolog.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "course_archiver_runs_total") {
		t.Errorf("Unexpected metrics body: %s", rec.Body.String())
	}
}

func TestRouter_Archive(t *testing.T) {
	root := t.TempDir()
	lessonDir := filepath.Join(root, "0_M1", "0_L1")
	if err := os.MkdirAll(lessonDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(lessonDir, "content.md"), []byte("# Notes"), 0644); err != nil {
		t.Fatal(err)
	}

	router := NewRouter(Config{ArchiveRoot: root}, zerolog.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/0_M1/0_L1/content.md", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "# Notes" {
		t.Errorf("Expected file content, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "0_M1") {
		t.Errorf("Expected directory listing, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/archive/0_M1/0_L1/content.md", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST, got %d", rec.Code)
	}
}

func TestStatus_Lifecycle(t *testing.T) {
	status := NewStatus()
	router := NewRouter(Config{Status: status}, zerolog.Nop())
	start := time.Now()

	summary := &model.RunSummary{RunID: "run-1", Input: "data.json", Output: "downloads", StartedAt: start}
	status.OnRun(summary)
	status.OnAsset(&model.AssetTask{ID: "a1", Kind: model.AssetKindVideo, LessonTitle: "L1", Destination: "downloads/0_M/0_L1/v.mp4", Status: model.FetchStatusFetching})

	view := getStatus(t, router)
	if !view.Running || view.Current == nil || view.Current.RunID != "run-1" {
		t.Fatalf("Expected running run-1, got %+v", view)
	}
	if view.Asset == nil || view.Asset.Kind != "video" || view.Asset.Lesson != "L1" {
		t.Errorf("Expected current video asset, got %+v", view.Asset)
	}

	status.OnAsset(&model.AssetTask{ID: "a1", Kind: model.AssetKindVideo, Status: model.FetchStatusFetched})
	status.OnAsset(&model.AssetTask{ID: "a2", Kind: model.AssetKindFile, Status: model.FetchStatusFailed})

	view = getStatus(t, router)
	if view.Asset != nil {
		t.Errorf("Expected no asset in progress, got %+v", view.Asset)
	}
	if view.Current.Fetched != 1 || view.Current.Failed != 1 {
		t.Errorf("Expected running counts 1/1, got %+v", view.Current)
	}

	summary.Fetched, summary.Failed = 1, 1
	summary.FinishedAt = start.Add(time.Second)
	status.OnRun(summary)

	view = getStatus(t, router)
	if view.Running || view.Current != nil {
		t.Errorf("Expected no current run, got %+v", view)
	}
	if view.Last == nil || view.Last.Failed != 1 || view.Last.FinishedAt.IsZero() {
		t.Errorf("Expected last run with one failure, got %+v", view.Last)
	}
}

func getStatus(t *testing.T, router http.Handler) StatusView {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /status, got %d", rec.Code)
	}
	var view StatusView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return view
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, NewRouter(Config{}, zerolog.Nop()), zerolog.Nop())
	}()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never became reachable: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	err := Serve(context.Background(), "bad-address:-1", NewRouter(Config{}, zerolog.Nop()), zerolog.Nop())
	if err == nil {
		t.Error("Expected listen error")
	}
}
