// Package dbclient talks to the relational data store over its REST surface.
// Inserts are single-attempt and return the created row.
package dbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onboardhq/intake/internal/metrics"
	"github.com/onboardhq/intake/internal/models"
)

type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func New(baseURL, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// insert POSTs one record to a table and decodes the created row into out.
// The store replies with an array of created rows; the first one wins.
func (c *Client) insert(ctx context.Context, table string, record, out interface{}) error {
	if c == nil {
		return fmt.Errorf("data store client not configured")
	}

	bodyBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", table, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/"+table, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("apikey", c.serviceKey)
	request.Header.Set("Authorization", "Bearer "+c.serviceKey)
	request.Header.Set("Prefer", "return=representation")

	start := time.Now()
	resp, err := c.httpClient.Do(request)
	metrics.InsertDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InsertErrors.WithLabelValues(table).Inc()
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.InsertErrors.WithLabelValues(table).Inc()
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("insert %s: status %d: %s", table, resp.StatusCode, errBody["message"])
	}

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert %s: store returned no row", table)
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return fmt.Errorf("decode %s row: %w", table, err)
	}

	return nil
}

func (c *Client) CreateClient(ctx context.Context, record *models.Client) (*models.Client, error) {
	var created models.Client
	if err := c.insert(ctx, "clients", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateBrandKit(ctx context.Context, record *models.BrandKit) (*models.BrandKit, error) {
	var created models.BrandKit
	if err := c.insert(ctx, "brand_kits", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateMarket(ctx context.Context, record *models.Market) (*models.Market, error) {
	var created models.Market
	if err := c.insert(ctx, "markets", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateSystems(ctx context.Context, record *models.Systems) (*models.Systems, error) {
	var created models.Systems
	if err := c.insert(ctx, "systems", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateStatus(ctx context.Context, record *models.Status) (*models.Status, error) {
	var created models.Status
	if err := c.insert(ctx, "status", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
