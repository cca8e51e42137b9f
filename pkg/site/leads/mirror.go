package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookMirror posts accepted submissions to the spreadsheet sync endpoint.
// The endpoint expects the row fields flattened next to a sheetType
// discriminator.
type WebhookMirror struct {
	url    string
	client *http.Client
}

func NewWebhookMirror(url string, client *http.Client) *WebhookMirror {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookMirror{url: url, client: client}
}

func (m *WebhookMirror) Send(ctx context.Context, sheetType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mirror payload: %w", err)
	}
	row := map[string]any{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return fmt.Errorf("flatten mirror payload: %w", err)
	}
	row["sheetType"] = sheetType

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal mirror row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mirror endpoint returned %d", resp.StatusCode)
	}
	return nil
}
