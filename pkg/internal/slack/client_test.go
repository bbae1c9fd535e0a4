package slack_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yeisme/slacksweep/pkg/internal/slack"
)

// newTestClient 构造指向测试服务器、不启用限流与熔断的客户端.
func newTestClient(t *testing.T, baseURL string) *slack.APIClient {
	t.Helper()

	cli, err := slack.NewClient(&slack.ClientOptions{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	return cli
}

// TestListFiles 测试 files.list 的参数传递与响应解析.
func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files.list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		q := r.URL.Query()
		if q.Get("token") != "xoxb-test" {
			t.Errorf("expected token in query, got %q", q.Get("token"))
		}

		if q.Get("count") != "100" || q.Get("ts_to") != "1600000000" {
			t.Errorf("unexpected count/ts_to: %s/%s", q.Get("count"), q.Get("ts_to"))
		}

		_, _ = w.Write([]byte(`{
			"ok": true,
			"files": [
				{"id": "F001", "name": "report.pdf", "timestamp": 1590000000, "mimetype": "application/document", "size": 2048, "url_private": "https://files.example.com/F001"},
				{"id": "F002", "name": "notes.txt", "timestamp": 1590000001, "mimetype": "text/plain", "size": 10}
			]
		}`))
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	files, err := cli.ListFiles(context.Background(), "xoxb-test", 100, 1600000000)
	if err != nil {
		t.Fatalf("ListFiles returned error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	first := files[0]
	if first.ID != "F001" || first.Name != "report.pdf" || first.Size != 2048 || first.Timestamp != 1590000000 {
		t.Errorf("unexpected first file: %+v", first)
	}

	if first.URLPrivate != "https://files.example.com/F001" {
		t.Errorf("unexpected url_private: %s", first.URLPrivate)
	}
}

// TestListFilesAPIError 测试 ok=false 返回 APIError.
func TestListFilesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "invalid_auth"}`))
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	_, err := cli.ListFiles(context.Background(), "bad-token", 10, 0)
	if err == nil {
		t.Fatal("expected error for ok=false response")
	}

	var apiErr *slack.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}

	if apiErr.Method != "files.list" || apiErr.Code != "invalid_auth" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

// TestDeleteFile 测试 files.delete 的成功与业务失败两种路径.
func TestDeleteFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files.delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		switch r.URL.Query().Get("file") {
		case "F001":
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			_, _ = w.Write([]byte(`{"ok": false, "error": "file_not_found"}`))
		}
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	if err := cli.DeleteFile(context.Background(), "xoxb-test", "F001"); err != nil {
		t.Errorf("expected successful delete, got %v", err)
	}

	err := cli.DeleteFile(context.Background(), "xoxb-test", "F404")
	var apiErr *slack.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}

	if apiErr.Code != "file_not_found" {
		t.Errorf("expected file_not_found, got %s", apiErr.Code)
	}
}

// TestDeleteFileServerError 测试 5xx 返回传输层错误而非 APIError.
func TestDeleteFileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	err := cli.DeleteFile(context.Background(), "xoxb-test", "F001")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}

	var apiErr *slack.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("server error must not be an APIError, got %+v", apiErr)
	}
}

// TestPing 测试 api.test 探测.
func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api.test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	if err := cli.Ping(context.Background()); err != nil {
		t.Errorf("Ping returned error: %v", err)
	}
}

// TestDownloadFile 测试 url_private 下载携带 Bearer 认证.
func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer xoxb-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		_, _ = w.Write([]byte("file-content"))
	}))
	defer srv.Close()

	cli := newTestClient(t, srv.URL)

	body, err := cli.DownloadFile(context.Background(), "xoxb-test", slack.File{
		ID:         "F001",
		URLPrivate: srv.URL + "/files-pri/F001/download",
	})
	if err != nil {
		t.Fatalf("DownloadFile returned error: %v", err)
	}
	defer func() { _ = body.Close() }()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	if string(content) != "file-content" {
		t.Errorf("unexpected content %q", content)
	}

	// 缺少 url_private 时直接报错
	if _, err := cli.DownloadFile(context.Background(), "xoxb-test", slack.File{ID: "F002"}); err == nil {
		t.Error("expected error for missing url_private")
	}
}
