package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// WebhookNotifier posts each event as JSON to a URL.
type WebhookNotifier struct {
	url     string
	headers http.Header
	client  *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHeader adds a header to every request, such as an
// authorization token.
func WithWebhookHeader(key, value string) WebhookOption {
	return func(n *WebhookNotifier) { n.headers.Set(key, value) }
}

// WithWebhookClient replaces the HTTP client.
func WithWebhookClient(c *http.Client) WebhookOption {
	return func(n *WebhookNotifier) { n.client = c }
}

// NewWebhookNotifier creates a notifier posting to url.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:     url,
		headers: make(http.Header),
		client:  pkhttp.NewClient(pkhttp.ClientOptions{Timeout: 10 * time.Second}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements the naming used in Multi errors.
func (n *WebhookNotifier) Name() string { return "webhook" }

// Notify implements Notifier. The request carries the event type in the
// X-Pipekit-Event header so receivers can route without parsing the body.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return post(ctx, n.client, "webhook", n.url, body, func(h http.Header) {
		for k, v := range n.headers {
			h[k] = v
		}
		h.Set("X-Pipekit-Event", string(event.Type))
	})
}

// post sends a JSON body and turns error statuses into *pkhttp.APIError.
func post(ctx context.Context, client *http.Client, service, url string, body []byte, header func(http.Header)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if header != nil {
		header(req.Header)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return pkhttp.FromResponse(service, resp, "")
	}
	return nil
}
