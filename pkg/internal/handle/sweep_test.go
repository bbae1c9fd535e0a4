package handle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/slacksweep/pkg/internal/handle"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/sweep", handle.RunSweep)
	r.POST("/sweep", handle.RunSweep)
	r.GET("/sweep/runs", handle.ListSweepRuns)

	return r
}

// TestRunSweepMalformedQuery 测试无法解析的查询参数返回 400.
func TestRunSweepMalformedQuery(t *testing.T) {
	r := newTestRouter()

	for _, q := range []string{"days=abc", "count=1.5", "just_a_test=yes"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sweep?"+q, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", q, w.Code)
		}
	}
}

// TestRunSweepInvalidBody 测试非法 JSON 请求体返回 400.
func TestRunSweepInvalidBody(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sweep", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid body, got %d", w.Code)
	}
}

// TestRunSweepRejectsOutOfRangeParams 测试参数越界时返回 400.
func TestRunSweepRejectsOutOfRangeParams(t *testing.T) {
	r := newTestRouter()

	for _, q := range []string{"days=0", "count=0", "count=5000"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sweep?"+q+"&just_a_test=1", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", q, w.Code)
		}
	}
}

// TestListSweepRunsInvalidLimit 测试 limit 非整数或越界时返回 400.
func TestListSweepRunsInvalidLimit(t *testing.T) {
	r := newTestRouter()

	for _, q := range []string{"limit=abc", "limit=0", "limit=-1", "limit=500"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sweep/runs?"+q, nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", q, w.Code)
		}
	}
}
