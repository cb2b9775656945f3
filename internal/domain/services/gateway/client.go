package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"community-console-service/internal/infrastructure/metrics"
)

// Client 上游社区接口的 HTTP 客户端，每次调用携带调用方会话的 bearer token
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端，timeout 为 0 时使用默认 15 秒
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP 使用指定的 http.Client，便于测试
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL 上游地址
func (c *Client) BaseURL() string { return c.baseURL }

// request 描述一次上游调用
type request struct {
	resource string // 指标标签
	method   string
	path     string
	query    url.Values
	token    string
	body     interface{}
}

// do 执行请求并返回原始响应体；非 2xx 和网络错误都转换为 *APIError
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	start := time.Now()
	body, err := c.send(ctx, r)
	metrics.UpstreamDuration.WithLabelValues(r.resource, r.method).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(r.resource, r.method, outcome(err)).Inc()
	return body, err
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, serverMessage(respBody))
	}
	return respBody, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return "error"
	}
	if apiErr.StatusCode == 0 {
		return "transport"
	}
	return "http_" + strconv.Itoa(apiErr.StatusCode)
}
