package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

// Client Bot API 的最小封装
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type ClientOption func(c *Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(cli *http.Client) ClientOption {
	return func(c *Client) {
		if cli != nil {
			c.http = cli
		}
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		// 长轮询需要比 poll timeout 更长的超时, 由 ctx 控制
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	res := apiResponse{Result: result}
	if err = json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("telegram %s decode (status %d): %w", method, resp.StatusCode, err)
	}
	if !res.Ok {
		return fmt.Errorf("telegram %s error %d: %s", method, res.ErrorCode, res.Description)
	}
	return nil
}

// SendMessage 发送 HTML 消息, markup 可为空
func (c *Client) SendMessage(ctx context.Context, chatId int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":                  chatId,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// GetUpdates 长轮询, timeout 为服务端等待时间
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}, &updates)
	return updates, err
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackId, text string) error {
	payload := map[string]any{
		"callback_query_id": callbackId,
	}
	if text != "" {
		payload["text"] = text
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}
