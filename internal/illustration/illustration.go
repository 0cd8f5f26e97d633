// Package illustration generates a small decorative image for newly created
// tasks, projects, and equipment by calling a hosted image endpoint. The
// whole thing is fire-and-forget: a failed generation costs nothing but the
// placeholder staying in place.
package illustration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/aduval/foyer/internal/blob"
)

const (
	requestTimeout = 90 * time.Second
	maxRetries     = 3
)

// Client calls the image endpoint and stores results in the blob store.
type Client struct {
	baseURL    string
	apiKey     string
	blobs      *blob.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. With an empty base URL or an unconfigured
// blob store the client stays disabled and Enqueue is a no-op.
func NewClient(baseURL, apiKey string, blobs *blob.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		blobs:      blobs,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Enabled reports whether generations will actually run.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.blobs != nil && c.blobs.Configured()
}

// Enqueue starts a detached generation for the entity. It returns
// immediately; failures are logged and dropped.
func (c *Client) Enqueue(householdID int64, kind string, id int64, name string) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := c.generate(ctx, householdID, kind, id, name); err != nil {
			c.logger.Warn("illustration failed", "kind", kind, "id", id, "error", err)
		}
	}()
}

// Key returns the blob key an entity's illustration lives under.
func Key(householdID int64, kind string, id int64) string {
	return fmt.Sprintf("illustrations/%d/%s-%d.png", householdID, kind, id)
}

func (c *Client) generate(ctx context.Context, householdID int64, kind string, id int64, name string) error {
	image, err := c.fetch(ctx, kind, name)
	if err != nil {
		return err
	}
	key := Key(householdID, kind, id)
	if err := c.blobs.Put(ctx, key, "image/png", bytes.NewReader(image), int64(len(image))); err != nil {
		return fmt.Errorf("store illustration: %w", err)
	}
	return nil
}

// fetch runs the generation call under a bounded backoff.
func (c *Client) fetch(ctx context.Context, kind, name string) ([]byte, error) {
	var image []byte
	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		img, err := c.request(ctx, kind, name)
		if err != nil {
			return err
		}
		image = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// request performs one generation call. Server-side errors are marked
// retryable; client-side errors are not worth repeating.
func (c *Client) request(ctx context.Context, kind, name string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"kind": kind, "subject": name})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/illustrations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, retry.RetryableError(fmt.Errorf("image endpoint returned %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image endpoint returned %d", resp.StatusCode)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("read image: %w", err))
	}
	return image, nil
}
