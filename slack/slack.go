// Package slack posts sync summaries to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pantrysync"
)

type Client struct {
	webhookURL string
	httpClient pantrysync.HTTPClient
}

var _ pantrysync.Notifier = (*Client)(nil)

func NewClient(webhookURL string, httpClient pantrysync.HTTPClient) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	return c.post(ctx, map[string]any{
		"channel": channel,
		"text":    message,
	})
}

// PostSummary posts the outcome of one list sync. The plain text doubles as
// the notification fallback for the section block.
func (c *Client) PostSummary(ctx context.Context, channel string, summary pantrysync.SyncSummary) error {
	text := summary.String()
	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Removed*\n%d", summary.Removed)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Updated*\n%d", summary.Updated)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Still to buy*\n%d", summary.Remaining)},
	}
	return c.post(ctx, map[string]any{
		"channel": channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf(":shopping_trolley: Synced list `%s` with the pantry", summary.ListID)},
			},
			{
				"type":   "section",
				"fields": fields,
			},
		},
	})
}

func (c *Client) post(ctx context.Context, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}
