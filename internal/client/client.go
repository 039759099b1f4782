// Package client はtaskboard APIのGoクライアントと、
// 画面側が参照するセッション・プロジェクト・タスクのキャッシュを提供する。
//
// キャッシュは読み取り時に埋め、書き込みはAPIの成功後にのみ反映する。
// 認可や一意性の判断にキャッシュを使ってはならない。
package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout はHTTPリクエストのデフォルトタイムアウト。
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "taskboard-go/1.0"
)

// Client はtaskboard APIとの通信を担う。
// セッションCookieとCSRFトークンはクライアント単位で保持する。
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	csrfMu    sync.Mutex
	csrfToken string
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithHTTPClient は使用するhttp.Clientを差し替える。
// Jarが未設定の場合はNewClientがCookieJarを設定したコピーを使う。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout はリクエストタイムアウトを設定する。
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent はUser-Agentヘッダーを設定する。
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient はbaseURLに接続するClientを生成する。
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}

	return c, nil
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}
