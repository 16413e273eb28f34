// Package client talks to the wumpus HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/google/uuid"
)

const defaultTimeout = 60 * time.Second

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wumpus API returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 60s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials are returned once when a tenant is created.
type Credentials struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// CreateTenant registers a tenant. It needs no API key.
func (c *Client) CreateTenant(ctx context.Context, name string) (*Credentials, error) {
	var out Credentials
	if err := c.do(ctx, http.MethodPost, "/v1/tenants", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSession(ctx context.Context, gridSize int, externalID string) (*domain.Session, error) {
	body := map[string]any{"grid_size": gridSize}
	if externalID != "" {
		body["external_id"] = externalID
	}
	var out domain.Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return c.session(ctx, http.MethodGet, id, "", nil)
}

func (c *Client) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil)
}

func (c *Client) SetGridSize(ctx context.Context, id uuid.UUID, n int) (*domain.Session, error) {
	return c.session(ctx, http.MethodPut, id, "/grid-size", map[string]int{"grid_size": n})
}

type factBody struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

func (c *Client) AssertFacts(ctx context.Context, id uuid.UUID, facts []domain.PerceptFact) (*domain.Session, error) {
	body := make([]factBody, 0, len(facts))
	for _, f := range facts {
		body = append(body, factBody{X: f.Cell.X, Y: f.Cell.Y, Kind: string(f.Kind)})
	}
	return c.session(ctx, http.MethodPost, id, "/facts", map[string]any{"facts": body})
}

type observationBody struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Breeze bool `json:"breeze"`
	Stench bool `json:"stench"`
}

func (c *Client) AssertObservations(ctx context.Context, id uuid.UUID, obs []domain.Observation) (*domain.Session, error) {
	body := make([]observationBody, 0, len(obs))
	for _, o := range obs {
		body = append(body, observationBody{X: o.Cell.X, Y: o.Cell.Y, Breeze: o.Breeze, Stench: o.Stench})
	}
	return c.session(ctx, http.MethodPost, id, "/observations", map[string]any{"observations": body})
}

func (c *Client) MarkWumpusDead(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return c.session(ctx, http.MethodPost, id, "/wumpus-dead", nil)
}

func (c *Client) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return c.session(ctx, http.MethodPost, id, "/reset", nil)
}

// Safe asks the service for the provably safe cells of a session.
func (c *Client) Safe(ctx context.Context, id uuid.UUID) (*domain.SafetyReport, error) {
	var out domain.SafetyReport
	if err := c.do(ctx, http.MethodGet, sessionPath(id, "/safe"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(id uuid.UUID, suffix string) string {
	return "/v1/sessions/" + id.String() + suffix
}

func (c *Client) session(ctx context.Context, method string, id uuid.UUID, suffix string, body any) (*domain.Session, error) {
	var out domain.Session
	if err := c.do(ctx, method, sessionPath(id, suffix), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
