package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hitoshi/taskboard/internal/middleware"
	"github.com/hitoshi/taskboard/internal/model"
)

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	contentTypeJSON   = "application/json"

	csrfTokenPath = "/api/csrf-token"

	// maxResponseBytes はレスポンスボディの読み取り上限。
	maxResponseBytes = 4 << 20
)

// doRequest はHTTPリクエストを実行し、成功時はresultへデコードする。
// 状態変更メソッドではCSRFトークンを取得してヘッダーに付与する。
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerUserAgent, c.userAgent)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	if !isSafeMethod(method) {
		token, err := c.csrf(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(middleware.CSRFHeaderName(), token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, respBody)
		if apiErr.Code == model.ErrCodeCSRFValidationFailed {
			c.resetCSRF()
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPatch, path, nil, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

// csrf は保持しているCSRFトークンを返す。未取得の場合はサーバーから取得する。
// トークンはCookieJarに保存されたCookieと対になる。
func (c *Client) csrf(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if c.csrfToken != "" {
		return c.csrfToken, nil
	}

	var resp middleware.CSRFTokenResponse
	if err := c.doRequest(ctx, http.MethodGet, csrfTokenPath, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch CSRF token: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("failed to fetch CSRF token: empty token")
	}
	c.csrfToken = resp.Token
	return c.csrfToken, nil
}

func (c *Client) resetCSRF() {
	c.csrfMu.Lock()
	c.csrfToken = ""
	c.csrfMu.Unlock()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
