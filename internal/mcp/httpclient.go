package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/storage"
)

// HTTPClient implements DataSource by calling the VoiceCoach REST API. Used
// for remote MCP mode where the binary runs locally (stdio) but data lives on
// the remote server. A stdio MCP process serves exactly one user, so the
// client carries that identity on every request.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	userID     uuid.UUID
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string, userID uuid.UUID) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-User-ID", c.userID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListSteps(ctx context.Context) ([]models.StepDefinition, error) {
	body, err := c.get(ctx, "/api/v1/workout/steps", nil)
	if err != nil {
		return nil, err
	}
	var steps []models.StepDefinition
	if err := json.Unmarshal(body, &steps); err != nil {
		return nil, fmt.Errorf("httpclient: decode steps: %w", err)
	}
	return steps, nil
}

func (c *HTTPClient) ListPackages(ctx context.Context) ([]models.WorkoutPackage, error) {
	body, err := c.get(ctx, "/api/v1/workout/packages", nil)
	if err != nil {
		return nil, err
	}
	var pkgs []models.WorkoutPackage
	if err := json.Unmarshal(body, &pkgs); err != nil {
		return nil, fmt.Errorf("httpclient: decode packages: %w", err)
	}
	return pkgs, nil
}

func (c *HTTPClient) GetPackage(ctx context.Context, id uuid.UUID) (*models.WorkoutPackage, error) {
	body, err := c.get(ctx, "/api/v1/workout/packages/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var pkg models.WorkoutPackage
	if err := json.Unmarshal(body, &pkg); err != nil {
		return nil, fmt.Errorf("httpclient: decode package: %w", err)
	}
	return &pkg, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, _ uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/workout/sessions", params)
	if err != nil {
		return nil, err
	}
	var sessions []models.WorkoutSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetSessionStats(ctx context.Context, _ uuid.UUID) (*storage.SessionStats, error) {
	body, err := c.get(ctx, "/api/v1/workout/sessions/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats storage.SessionStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
