// Package slack 封装 Slack Web API 的 files.list / files.delete 调用.
//
// 这两个接口是旧式的 GET + token 查询参数风格，返回 {"ok": bool, ...} 信封.
// 出站调用经过熔断器（gobreaker）保护；files.delete 额外经过速率限制器
// （golang.org/x/time/rate）以避免触发 Slack 的限流.
package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/metrics"
)

// File Slack 文件元数据，仅保留清理流程用到的字段.
type File struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Timestamp  int64  `json:"timestamp"`
	Mimetype   string `json:"mimetype"`
	Size       int64  `json:"size"`
	URLPrivate string `json:"url_private,omitempty"`
}

// APIError 表示 Slack 返回 ok=false 时的业务错误（如 file_not_found）.
// 业务错误不计入熔断统计，也不会中断批量删除.
type APIError struct {
	Method string // 如 files.delete
	Code   string // Slack 的 error 字段
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack api %s: %s", e.Method, e.Code)
}

// Client 定义清理流程依赖的 Slack 能力.
type Client interface {
	// ListFiles 列举 ts_to 之前上传的文件，最多 count 条.
	ListFiles(ctx context.Context, token string, count int, tsTo int64) ([]File, error)
	// DeleteFile 删除单个文件；ok=false 返回 *APIError，传输失败返回其它错误.
	DeleteFile(ctx context.Context, token, fileID string) error
	// DownloadFile 下载文件内容（url_private），供删除前归档.
	DownloadFile(ctx context.Context, token string, f File) (io.ReadCloser, error)
	// Ping 调用 api.test 探测 Web API 可达性，不需要令牌.
	Ping(ctx context.Context) error
}

// ClientOptions API 客户端配置项.
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// DeleteLimiter 控制 files.delete 的调用节奏；nil 表示不限速
	DeleteLimiter *rate.Limiter
	// Breaker 出站熔断；nil 表示不熔断
	Breaker *gobreaker.CircuitBreaker
}

// NewOptions 从全局配置构建客户端配置项.
func NewOptions(slackCfg configs.SlackConfig, cbCfg configs.CircuitBreakerConfig) *ClientOptions {
	opts := &ClientOptions{
		BaseURL:       slackCfg.APIBaseURL,
		Timeout:       slackCfg.GetTimeoutDuration(),
		DeleteLimiter: rate.NewLimiter(rate.Limit(slackCfg.DeleteRPS), slackCfg.DeleteBurst),
	}

	if cbCfg.Enabled {
		opts.Breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "slack-api",
			MaxRequests: cbCfg.MaxRequestsInHalf,
			Interval:    time.Duration(cbCfg.IntervalSeconds) * time.Second,
			Timeout:     time.Duration(cbCfg.TimeoutSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				total := counts.Requests
				if total < cbCfg.MinRequests {
					return false
				}
				// 失败比例
				failureRate := float64(counts.TotalFailures) / float64(total)

				return failureRate >= cbCfg.FailureRate
			},
		})
	}

	return opts
}

// APIClient 实现 Client 接口.
type APIClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient 创建 Slack API 客户端.
func NewClient(opts *ClientOptions) (*APIClient, error) {
	if opts == nil {
		return nil, fmt.Errorf("client options required")
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: opts.DeleteLimiter,
		breaker: opts.Breaker,
	}, nil
}

// listResponse files.list 响应信封.
type listResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Files []File `json:"files"`
}

// apiResponse 最小响应信封，files.delete / api.test 共用.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ListFiles 调用 files.list 并解析文件数组.
func (c *APIClient) ListFiles(ctx context.Context, token string, count int, tsTo int64) ([]File, error) {
	params := url.Values{}
	params.Set("token", token)
	params.Set("count", strconv.Itoa(count))
	params.Set("ts_to", strconv.FormatInt(tsTo, 10))

	body, err := c.get(ctx, "files.list", params)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode files.list response: %w", err)
	}

	if !resp.OK {
		return nil, &APIError{Method: "files.list", Code: resp.Error}
	}

	return resp.Files, nil
}

// DeleteFile 调用 files.delete，受速率限制器控制节奏.
func (c *APIClient) DeleteFile(ctx context.Context, token, fileID string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("delete rate limiter: %w", err)
		}
	}

	params := url.Values{}
	params.Set("token", token)
	params.Set("file", fileID)

	body, err := c.get(ctx, "files.delete", params)
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode files.delete response: %w", err)
	}

	if !resp.OK {
		return &APIError{Method: "files.delete", Code: resp.Error}
	}

	return nil
}

// Ping 调用 api.test 验证 Web API 可达.
func (c *APIClient) Ping(ctx context.Context) error {
	body, err := c.get(ctx, "api.test", url.Values{})
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode api.test response: %w", err)
	}

	if !resp.OK {
		return &APIError{Method: "api.test", Code: resp.Error}
	}

	return nil
}

// DownloadFile 拉取 url_private 内容；该地址要求 Bearer 认证.
func (c *APIClient) DownloadFile(ctx context.Context, token string, f File) (io.ReadCloser, error) {
	if f.URLPrivate == "" {
		return nil, fmt.Errorf("file %s has no private url", f.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URLPrivate, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.ID, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("download %s: unexpected status %d", f.ID, resp.StatusCode)
	}

	return resp.Body, nil
}

// get 执行一次 GET 调用并返回响应体；传输错误与 5xx 计入熔断统计.
func (c *APIClient) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	call := func() ([]byte, error) {
		start := time.Now()
		defer func() {
			metrics.SlackAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode()), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("call %s: server error %d", method, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	}

	if c.breaker == nil {
		return call()
	}

	body, err := c.breaker.Execute(func() (any, error) { return call() })
	if err != nil {
		return nil, err
	}

	return body.([]byte), nil
}
