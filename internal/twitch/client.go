package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clipcache/clipcache/internal/clip"
)

const (
	defaultAuthBase = "https://id.twitch.tv"
	defaultAPIBase  = "https://api.twitch.tv"
)

// Credentials 承载一对不透明的上游凭证。
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete 表示凭证对是否完整可用。
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Client 封装对 Twitch Helix 的全部上游调用，共享同一个 http.Client。
type Client struct {
	http     *http.Client
	authBase string
	apiBase  string
	timeout  time.Duration
	now      func() time.Time
}

// Option configures the client.
type Option func(*Client)

// WithBaseURLs 覆盖认证/API 基地址，主要用于测试注入 httptest 服务。
func WithBaseURLs(authBase, apiBase string) Option {
	return func(c *Client) {
		if authBase != "" {
			c.authBase = authBase
		}
		if apiBase != "" {
			c.apiBase = apiBase
		}
	}
}

// WithClock 注入时钟，便于测试窗口起始时间的计算。
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient 构造 Helix 客户端；timeout 约束每一次上游调用而非整个流程。
func NewClient(httpClient *http.Client, timeout time.Duration, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		http:     httpClient,
		authBase: defaultAuthBase,
		apiBase:  defaultAPIBase,
		timeout:  timeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type usersResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type clipsResponse struct {
	Data []apiClip `json:"data"`
}

type apiClip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatorName string    `json:"creator_name"`
	Duration    float64   `json:"duration"`
	ViewCount   int       `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Token 以 client_credentials 方式交换 Bearer Token。
func (c *Client) Token(ctx context.Context, creds Credentials) (string, error) {
	endpoint := fmt.Sprintf("%s/oauth2/token?client_id=%s&client_secret=%s&grant_type=client_credentials",
		c.authBase, url.QueryEscape(creds.ClientID), url.QueryEscape(creds.ClientSecret))

	var payload tokenResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "", creds.ClientID, &payload); err != nil {
		return "", fmt.Errorf("failed to get OAuth token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("OAuth response missing access_token")
	}
	return payload.AccessToken, nil
}

// UserID 将主播登录名解析为内部 broadcaster ID，查不到视为错误。
func (c *Client) UserID(ctx context.Context, token string, creds Credentials, login string) (string, error) {
	endpoint := fmt.Sprintf("%s/helix/users?login=%s", c.apiBase, url.QueryEscape(login))

	var payload usersResponse
	if err := c.do(ctx, http.MethodGet, endpoint, token, creds.ClientID, &payload); err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	if len(payload.Data) == 0 {
		return "", fmt.Errorf("twitch user %q not found", login)
	}
	return payload.Data[0].ID, nil
}

// Clips 按 broadcaster 拉取候选剪辑；startedAt 为零值时不限制起始时间。
func (c *Client) Clips(ctx context.Context, token string, creds Credentials, broadcasterID string, limit int, startedAt time.Time) ([]clip.Record, error) {
	endpoint := fmt.Sprintf("%s/helix/clips?broadcaster_id=%s&first=%s",
		c.apiBase, url.QueryEscape(broadcasterID), strconv.Itoa(limit))
	if !startedAt.IsZero() {
		endpoint += "&started_at=" + url.QueryEscape(startedAt.UTC().Format(time.RFC3339))
	}

	var payload clipsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, token, creds.ClientID, &payload); err != nil {
		return nil, fmt.Errorf("failed to get clips: %w", err)
	}

	records := make([]clip.Record, 0, len(payload.Data))
	for _, item := range payload.Data {
		records = append(records, clip.Record{
			ID:        item.ID,
			Title:     item.Title,
			Creator:   item.CreatorName,
			Duration:  int(math.Round(item.Duration)),
			Views:     item.ViewCount,
			SourceURL: "https://clips.twitch.tv/" + item.ID,
			Created:   item.CreatedAt,
		})
	}
	return records, nil
}

// PopularClips 串联 token → 用户解析 → 剪辑列表三次上游调用。
// 任何一步失败都会中止整个请求，这是前置条件失败而非单条失败。
func (c *Client) PopularClips(ctx context.Context, creds Credentials, login string, limit int, period Period) ([]clip.Record, error) {
	token, err := c.Token(ctx, creds)
	if err != nil {
		return nil, err
	}

	broadcasterID, err := c.UserID(ctx, token, creds, login)
	if err != nil {
		return nil, err
	}

	return c.Clips(ctx, token, creds, broadcasterID, limit, period.Start(c.now()))
}

// do 执行单次上游调用：每次调用有独立的超时，超时只取消当次请求。
func (c *Client) do(ctx context.Context, method, endpoint, token, clientID string, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, endpoint, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Client-ID", clientID)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
