package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/history"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/scanner"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/tools"
	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	logger := testLogger()

	sc := scanner.New(scanner.Config{
		ReportDir: filepath.Join(t.TempDir(), "reports"),
		Logger:    logger,
	})
	for _, tool := range tools.All(logger) {
		sc.RegisterTool(tool)
	}

	srv := New(Config{
		Scanner: sc,
		History: history.New(filepath.Join(t.TempDir(), "history.json")),
		Logger:  logger,
	})
	return srv, srv.Router()
}

// gitDir creates a directory that passes the worktree check.
func gitDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func postScan(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// waitForState polls until the run leaves the running state.
func waitForState(t *testing.T, srv *Server, id string) types.RunRecord {
	t.Helper()
	var rec types.RunRecord
	require.Eventually(t, func() bool {
		r, ok := srv.cfg.History.Get(id)
		if !ok || r.State == types.RunRunning {
			return false
		}
		rec = r
		return true
	}, 5*time.Second, 10*time.Millisecond)
	return rec
}

func runID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["run_id"])
	return resp["run_id"]
}

func TestHealthz(t *testing.T) {
	_, router := newTestServer(t)
	w := get(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestStartScanRequiresTarget(t *testing.T) {
	_, router := newTestServer(t)
	w := postScan(t, router, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartScanRejectsUnknownTool(t *testing.T) {
	_, router := newTestServer(t)
	w := postScan(t, router, `{"target": "/tmp/x", "tools": ["nmap"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nmap")
}

func TestScanLifecycleLocalTarget(t *testing.T) {
	// No scanner binaries on PATH besides git: the run still succeeds,
	// tools report failed/skipped, and the consolidated report carries
	// placeholders.
	srv, router := newTestServer(t)
	dir := gitDir(t)

	body, _ := json.Marshal(map[string]any{"target": dir})
	id := runID(t, postScan(t, router, string(body)))

	rec := waitForState(t, srv, id)
	assert.Equal(t, types.RunSucceeded, rec.State)
	assert.NotEmpty(t, rec.ReportPath)

	// Status endpoint
	w := get(router, "/api/v1/scans/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	// Report endpoint returns the consolidated document
	w = get(router, "/api/v1/scans/"+id+"/report")
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc, 2)
}

func TestScanFailsOnInvalidTarget(t *testing.T) {
	srv, router := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"target": filepath.Join(t.TempDir(), "missing")})
	id := runID(t, postScan(t, router, string(body)))

	rec := waitForState(t, srv, id)
	assert.Equal(t, types.RunFailed, rec.State)
	assert.NotEmpty(t, rec.Error)

	// No report for a failed run
	w := get(router, "/api/v1/scans/"+id+"/report")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScanUnknownID(t *testing.T) {
	_, router := newTestServer(t)
	w := get(router, "/api/v1/scans/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopUnknownScan(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/nope/stop", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopFinishedScanConflicts(t *testing.T) {
	srv, router := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"target": gitDir(t)})
	id := runID(t, postScan(t, router, string(body)))
	waitForState(t, srv, id)

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		_, active := srv.cancel[id]
		return !active
	}, 5*time.Second, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans/"+id+"/stop", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListToolsEndpoint(t *testing.T) {
	_, router := newTestServer(t)
	w := get(router, "/api/v1/tools")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "detect-secrets")
	assert.Contains(t, w.Body.String(), "nuclei")
	assert.Contains(t, w.Body.String(), "testssl.sh")
}
