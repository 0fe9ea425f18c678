// Package bot posts operator notices to a Telegram chat.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/certhub/examdesk/internal/events"
)

const defaultAPI = "https://api.telegram.org"

type Client struct {
	token  string
	httpc  *http.Client
	apiURL string
}

func NewClient(token string) *Client {
	return &Client{
		token:  token,
		apiURL: defaultAPI + "/bot" + token,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at another Bot API host.
func (c *Client) WithBaseURL(base string) *Client {
	c.apiURL = base + "/bot" + c.token
	return c
}

func (c *Client) Enabled() bool { return c != nil && c.token != "" }

func (c *Client) send(ctx context.Context, method string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}

// Notifier forwards notices to the admin chat without blocking the caller.
type Notifier struct {
	c      *Client
	chatID int64
	log    *slog.Logger
	// sent, when set, is called after each delivery attempt.
	sent func(error)
}

func NewNotifier(c *Client, chatID int64, log *slog.Logger) *Notifier {
	return &Notifier{c: c, chatID: chatID, log: log}
}

func (n *Notifier) Notify(_ context.Context, ev events.Notice) {
	if !n.c.Enabled() || n.chatID == 0 {
		return
	}
	text := formatNotice(ev)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := n.c.SendMessage(ctx, n.chatID, text)
		if err != nil {
			n.log.Warn("telegram notice failed", "workflow", ev.Workflow, "err", err)
		}
		if n.sent != nil {
			n.sent(err)
		}
	}()
}

func formatNotice(ev events.Notice) string {
	icon := "ℹ️"
	if ev.Kind == events.KindError {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s <b>%s</b>\n%s", icon, html.EscapeString(ev.Workflow), html.EscapeString(ev.Text))
}
