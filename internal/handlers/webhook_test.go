package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/internal/services"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const githubWebhookBody = `{
	"action": "opened",
	"number": 42,
	"repository": {
		"name": "smartreview",
		"owner": {"login": "alimgiray"}
	},
	"pull_request": {
		"head": {"ref": "feature/webhooks"}
	}
}`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	entries, err := os.ReadDir("../../migrations")
	require.NoError(t, err)

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		script, err := os.ReadFile(filepath.Join("../../migrations", entry.Name()))
		require.NoError(t, err)
		_, err = db.Exec(string(script))
		require.NoError(t, err)
	}

	return db
}

func setupWebhookRouter(t *testing.T) (*gin.Engine, *services.QueueService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	queueService := services.NewQueueService(repositories.NewQueueRepository(db))
	handler := NewWebhookHandler(services.NewWebhookService(), queueService)

	router := gin.New()
	router.POST("/api/webhooks/github", handler.HandleGitHub)
	router.POST("/api/webhooks/gitlab", handler.HandleGitLab)
	router.GET("/api/webhooks/queue/status", handler.QueueStatus)
	return router, queueService
}

func TestHandleGitHubWebhookEnqueuesMessage(t *testing.T) {
	router, queueService := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github", strings.NewReader(githubWebhookBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["id"])

	assert.Equal(t, int64(1), queueService.Length())
	message := queueService.Dequeue()
	require.NotNil(t, message)
	assert.Equal(t, "alimgiray", message.Owner)
	assert.Equal(t, "smartreview", message.Repository)
	assert.Equal(t, 42, message.PullRequestNumber)
}

func TestHandleWebhookRejectsMalformedPayload(t *testing.T) {
	router, queueService := setupWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github", strings.NewReader(`{"action": "opened"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), queueService.Length())
}

func TestHandleGitLabWebhook(t *testing.T) {
	router, queueService := setupWebhookRouter(t)

	body := `{
		"object_kind": "merge_request",
		"object_attributes": {"state": "opened", "iid": 9, "source_branch": "fix/timeouts"},
		"project": {"path_with_namespace": "acme/backend"}
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/gitlab", strings.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	message := queueService.Dequeue()
	require.NotNil(t, message)
	assert.Equal(t, "acme", message.Owner)
	assert.Equal(t, "backend", message.Repository)
	assert.Equal(t, 9, message.PullRequestNumber)
}

func TestQueueStatus(t *testing.T) {
	router, queueService := setupWebhookRouter(t)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github", strings.NewReader(githubWebhookBody))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, int64(3), queueService.Length())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/webhooks/queue/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response["length"])
}
