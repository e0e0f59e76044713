package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the advisory engine.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8090"
}

// NucleusClient is a pure HTTP client for the advisory engine API.
type NucleusClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewNucleusClient creates a new client for the advisory engine.
func NewNucleusClient(cfg Config) *NucleusClient {
	return &NucleusClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the engine.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// envelope is the engine's uniform success wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// doRequest makes an HTTP request to the engine and returns the response body.
func (c *NucleusClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// post sends an advisory operation request and unwraps the response envelope.
func (c *NucleusClient) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return env.Data, nil
	}
	return raw, nil
}

// ClassifyIntent classifies a bag of marketplace signals.
func (c *NucleusClient) ClassifyIntent(ctx context.Context, userID string, signals map[string]string) (json.RawMessage, error) {
	return c.post(ctx, "/v1/advisory/intent/classify", map[string]any{
		"userId":  userID,
		"signals": signals,
	})
}

// ComputeTrust computes a trust score from a party profile.
func (c *NucleusClient) ComputeTrust(ctx context.Context, profile map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/v1/advisory/trust/compute", profile)
}

// AssessRisk evaluates a prospective transaction.
func (c *NucleusClient) AssessRisk(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/v1/advisory/risk/assess", body)
}

// MatchUsers ranks candidate counterparties for a requester.
func (c *NucleusClient) MatchUsers(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/v1/advisory/match/users", body)
}

// GetRecommendation produces an advisory decision recommendation.
func (c *NucleusClient) GetRecommendation(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/v1/advisory/recommend", body)
}

// GetAuditLogs returns recent audit entries, optionally filtered by operation.
func (c *NucleusClient) GetAuditLogs(ctx context.Context, operation string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if operation != "" {
		q.Set("operation", operation)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/advisory/audit", q, nil)
}
