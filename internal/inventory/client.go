package inventory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// API paths of the inventory service.
const (
	entitiesPath   = "/api/v1/entities"
	dataStoresPath = "/api/v1/datastores"
	networksPath   = "/api/v1/networks"
	healthPath     = "/api/v1/health"
)

// Client is an HTTP client for the inventory API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client from a Connection.
func NewClient(conn *models.Connection, timeout time.Duration, logger *zap.Logger) *Client {
	transport := &http.Transport{}
	if conn.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	} else if conn.CACert != "" {
		caCertPool := x509.NewCertPool()
		if caCertPool.AppendCertsFromPEM([]byte(conn.CACert)) {
			transport.TLSClientConfig = &tls.Config{RootCAs: caCertPool}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: conn.BaseURL(),
		token:   conn.Token,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: logger,
	}
}

// Get performs an authenticated GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	c.log.Debug("inventory request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// GetCollection fetches a collection endpoint and unwraps its envelope.
func (c *Client) GetCollection(ctx context.Context, path string, params url.Values) ([]models.Resource, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	items, skipped, err := ParseCollectionReport(body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if skipped > 0 {
		c.log.Warn("inventory: skipped undecodable records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
			zap.Int("kept", len(items)))
	}
	return items, nil
}

// GetEntities lists discovered entities matching the query.
func (c *Client) GetEntities(ctx context.Context, q EntityQuery) ([]models.Resource, error) {
	return c.GetCollection(ctx, entitiesPath, q.values())
}

// GetDataStores lists storage records matching the query.
func (c *Client) GetDataStores(ctx context.Context, q DataStoreQuery) ([]models.Resource, error) {
	return c.GetCollection(ctx, dataStoresPath, q.values())
}

// ListNetworks lists network records matching the query.
func (c *Client) ListNetworks(ctx context.Context, q NetworkQuery) ([]models.Resource, error) {
	return c.GetCollection(ctx, networksPath, q.values())
}

// Ping checks that the inventory API is reachable and accepts our token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, healthPath, nil)
	return err
}

// Describe returns a short human-readable name of the source.
func (c *Client) Describe() string {
	return "inventory " + c.baseURL
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
