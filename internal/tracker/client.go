package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stride-cli/stride/pkg/models"
)

// defaultTimeout bounds every tracking call so an unavailable platform
// cannot stall execution.
const defaultTimeout = 10 * time.Second

// HTTPClient implements Client against the platform's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// HTTPClientConfig contains configuration for creating an HTTPClient.
type HTTPClientConfig struct {
	// BaseURL is the platform's API root, e.g. "http://localhost:3400".
	BaseURL string
	// APIKey is the optional bearer token for authenticated deployments.
	APIKey string
	// Timeout overrides the default per-request timeout.
	Timeout time.Duration
}

// NewHTTPClient creates a new tracking client.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// collection maps an item type to its REST collection segment.
func collection(itemType models.ItemType) string {
	if itemType == models.ItemTypeFeature {
		return "features"
	}
	return "tasks"
}

// StartWork marks an item as in progress.
func (c *HTTPClient) StartWork(itemType models.ItemType, id string, opts StartWorkOptions) (*Item, error) {
	var item Item
	path := fmt.Sprintf("/api/v1/%s/%s/start", collection(itemType), id)
	if err := c.do(http.MethodPost, path, opts, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CompleteWork marks an item as done with a completion summary.
func (c *HTTPClient) CompleteWork(itemType models.ItemType, id string, opts CompleteWorkOptions) (*Item, error) {
	var item Item
	path := fmt.Sprintf("/api/v1/%s/%s/complete", collection(itemType), id)
	if err := c.do(http.MethodPost, path, opts, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// LogProgress records an intermediate progress message for an item.
func (c *HTTPClient) LogProgress(itemType models.ItemType, id string, opts ProgressOptions) error {
	path := fmt.Sprintf("/api/v1/%s/%s/progress", collection(itemType), id)
	return c.do(http.MethodPost, path, opts, nil)
}

// UpdateFeature mutates feature-level fields.
func (c *HTTPClient) UpdateFeature(featureID string, update FeatureUpdate) error {
	path := fmt.Sprintf("/api/v1/features/%s", featureID)
	return c.do(http.MethodPatch, path, update, nil)
}

// ListTasks returns the tasks belonging to a feature.
func (c *HTTPClient) ListTasks(featureID string) (*TaskList, error) {
	var list TaskList
	path := fmt.Sprintf("/api/v1/features/%s/tasks", featureID)
	if err := c.do(http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// EmitSessionEvent forwards an execution lifecycle event.
func (c *HTTPClient) EmitSessionEvent(event SessionEvent) error {
	return c.do(http.MethodPost, "/api/v1/sessions/events", event, nil)
}

// do performs a JSON request and decodes the response into out when
// out is non-nil.
func (c *HTTPClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Verify HTTPClient implements Client at compile time.
var _ Client = (*HTTPClient)(nil)
