package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberintel/internal/cache"
	"cyberintel/internal/processor"
	"cyberintel/internal/user"
)

func testFetch(_ context.Context, category string) []processor.Item {
	switch category {
	case "APT":
		return []processor.Item{
			{Title: "apt story", Link: "https://example.com/apt", Source: "t", Published: "2024-02-01T00:00:00Z"},
			{Title: "", Link: "https://example.com/untitled", Source: "t", Published: "2024-01-15T00:00:00Z"},
		}
	case "Phishing":
		return []processor.Item{
			{Title: "phish story", Link: "https://example.com/phish", Source: "t", Published: "2024-03-01T00:00:00Z"},
		}
	default:
		return nil
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *cache.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewStore([]string{"APT", "Phishing"}, testFetch, nil, nil, 10*time.Minute)
	users, err := user.NewStore(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)

	s := NewServer(store, users, Dashboard{
		Categories:         []string{"APT", "Phishing"},
		IOCSource:          "https://example.com/blocklist.txt",
		AutoRefreshSeconds: 60,
	})
	r := gin.New()
	s.RegisterRoutes(r)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w, payload
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", payload["status"])
}

func TestNewsDefaultsToMergedHomeView(t *testing.T) {
	r, _ := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, w.Code)

	items := payload["items"].([]any)
	require.Len(t, items, 3)

	// 跨分类合并后按 published 倒序
	first := items[0].(map[string]any)
	assert.Equal(t, "phish story", first["title"])

	// 空标题条目输出时兜底
	last := items[2].(map[string]any)
	assert.Equal(t, "(no title)", last["title"])

	assert.EqualValues(t, 3, payload["total_all"])
	assert.NotEmpty(t, payload["updated"])
}

func TestNewsCategoryScopedWithLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodGet, "/api/news?category=APT&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	items := payload["items"].([]any)
	require.Len(t, items, 1)
	// total_all 报告桶内全部条数，而不是截断后的条数
	assert.EqualValues(t, 2, payload["total_all"])
}

func TestNewsUnknownCategoryReturnsEmpty(t *testing.T) {
	r, _ := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodGet, "/api/news?category=Nope", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, payload["items"])
	assert.EqualValues(t, 0, payload["total_all"])
}

func TestNewsLimitClamped(t *testing.T) {
	r, _ := newTestRouter(t)
	// 非法 limit 回退默认值，不报错
	w, _ := doJSON(t, r, http.MethodGet, "/api/news?limit=bogus", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/news?limit=99999", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStats(t *testing.T) {
	r, store := newTestRouter(t)
	store.EnsureFresh(context.Background(), "APT")

	w, payload := doJSON(t, r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, payload["APT"])
	assert.EqualValues(t, 0, payload["Phishing"])
	assert.EqualValues(t, 2, payload["__all"])
}

func TestRefresh(t *testing.T) {
	r, _ := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodPost, "/api/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["updated"])

	// 刷新后 stats 立即可见
	_, stats := doJSON(t, r, http.MethodGet, "/api/stats", "")
	assert.EqualValues(t, 3, stats["__all"])
}

func TestRegisterLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w, payload := doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@example.com", payload["email"])

	w, payload = doJSON(t, r, http.MethodPost, "/api/register", `{"email":"a@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_email", payload["code"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/register", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexServesDashboard(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "CyberIntel")
	// 分类清单与 IOC 源注入到页面
	assert.Contains(t, body, `["APT","Phishing"]`)
	assert.Contains(t, body, "https://example.com/blocklist.txt")
}
