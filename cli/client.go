package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"saasanalytics/models"
	"strings"
	"time"
)

// Client is the HTTP client for talking to the analytics API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// HealthStatus mirrors the /api/health payload
type HealthStatus struct {
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
	DBHealthy    bool   `json:"db_healthy"`
	Dialect      string `json:"dialect"`
	CacheEnabled bool   `json:"cache_enabled"`
	Version      string `json:"version"`

	SampleDataGeneratedAt string `json:"sample_data_generated_at,omitempty"`
}

// InitResponse mirrors the /api/initialize-database payload
type InitResponse struct {
	Success   bool                      `json:"success"`
	Message   string                    `json:"message"`
	UserCount int64                     `json:"user_count"`
	Generated *models.GenerationSummary `json:"generated"`
}

type generateResponse struct {
	Success   bool                     `json:"success"`
	Generated models.GenerationSummary `json:"generated"`
	Error     string                   `json:"error"`
}

// NewClient creates a new HTTP client. The timeout covers two model calls
// plus query execution on the server.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// BaseURL returns the server the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL switches the client to another server
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse decodes a 2xx body into result; other statuses become errors
// carrying the server's detail message when there is one.
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var detail struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if json.Unmarshal(bodyBytes, &detail) == nil {
			if detail.Detail != "" {
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail.Detail)
			}
			if detail.Error != "" {
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail.Error)
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// HealthCheck fetches the health endpoint. A degraded server is returned
// together with an error.
func (c *Client) HealthCheck() (*HealthStatus, error) {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return &health, fmt.Errorf("server unhealthy: HTTP %d (%s)", resp.StatusCode, health.Status)
	}

	return &health, nil
}

// Ask sends a natural-language question
func (c *Client) Ask(question string) (*models.QueryResponse, error) {
	resp, err := c.doRequest("POST", "/api/query", map[string]string{"question": question})
	if err != nil {
		return nil, err
	}

	var out models.QueryResponse
	if err := c.handleResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateData adds a batch of sample data
func (c *Client) GenerateData() (*models.GenerationSummary, error) {
	resp, err := c.doRequest("POST", "/api/generate-data", nil)
	if err != nil {
		return nil, err
	}

	var out generateResponse
	if err := c.handleResponse(resp, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("%s", out.Error)
	}
	return &out.Generated, nil
}

// InitializeDatabase seeds the database if it is empty
func (c *Client) InitializeDatabase() (*InitResponse, error) {
	resp, err := c.doRequest("POST", "/api/initialize-database", nil)
	if err != nil {
		return nil, err
	}

	var out InitResponse
	if err := c.handleResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListErrorLogs returns recent server-side failures, newest first
func (c *Client) ListErrorLogs() ([]models.ErrorLog, error) {
	resp, err := c.doRequest("GET", "/api/error-logs", nil)
	if err != nil {
		return nil, err
	}

	var logs []models.ErrorLog
	if err := c.handleResponse(resp, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ClearErrorLogs wipes the server's error log buffer
func (c *Client) ClearErrorLogs() error {
	resp, err := c.doRequest("DELETE", "/api/error-logs", nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}
