// Package storageclient uploads objects to the object-storage service over
// its REST surface and resolves their durable URLs.
package storageclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	public     bool
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	// Public marks the bucket as publicly readable; ObjectURL then returns a
	// browsable URL instead of the internal object path.
	Public  bool
	Timeout time.Duration
}

func New(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		public:     cfg.Public,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Upload writes data to path in the configured bucket, overwriting any
// existing object at that path so re-submissions stay idempotent.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if c == nil {
		return fmt.Errorf("storage client not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Authorization", "Bearer "+c.serviceKey)
	request.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("upload %s: status %d: %s", path, resp.StatusCode, errBody["message"])
	}

	return nil
}

// ObjectURL resolves the durable URL for an uploaded object. Public buckets
// get a browsable URL; private buckets get the bucket-scoped object path for
// later resolution by downstream consumers.
func (c *Client) ObjectURL(path string) string {
	if c.public {
		return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
	}
	return fmt.Sprintf("%s/%s", c.bucket, path)
}
