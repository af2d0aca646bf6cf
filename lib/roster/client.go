// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ClientConfig holds configuration for creating a roster Client.
type ClientConfig struct {
	// BaseURL is the root URL of the game server's REST API, for
	// example "http://localhost:8000". Required.
	BaseURL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client is a typed client for the game server's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a roster client from the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("roster: BaseURL is required")
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("roster: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// APIError is a failure response from the game server. The server
// reports failures as {"error": {"message": ...}}; a body that does not
// parse as that envelope is carried verbatim in Message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Message)
}

// ServerConfig fetches the competition configuration.
func (client *Client) ServerConfig(ctx context.Context) (ServerConfig, error) {
	var config ServerConfig
	if err := client.get(ctx, "/config/server", &config); err != nil {
		return ServerConfig{}, err
	}
	return config, nil
}

// Teams fetches the team roster, keyed by team ID.
func (client *Client) Teams(ctx context.Context) (map[string]Team, error) {
	var teams map[string]Team
	if err := client.get(ctx, "/competition/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Services fetches the service roster, sorted by name.
func (client *Client) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := client.get(ctx, "/competition/services", &services); err != nil {
		return nil, err
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

// Exploits fetches the registered exploits, sorted by manifest name.
func (client *Client) Exploits(ctx context.Context) ([]Exploit, error) {
	var exploits []Exploit
	if err := client.get(ctx, "/exploits", &exploits); err != nil {
		return nil, err
	}
	sort.Slice(exploits, func(i, j int) bool {
		return exploits[i].Manifest.Name < exploits[j].Manifest.Name
	})
	return exploits, nil
}

// ExecuteExploit asks the server to schedule an immediate execution of
// the named exploit against all teams.
func (client *Client) ExecuteExploit(ctx context.Context, name string) error {
	return client.do(ctx, http.MethodPost, "/exploits/"+url.PathEscape(name)+"/execute", nil, nil)
}

// UpdateExploit replaces the named exploit's manifest and image, used
// to enable or disable an exploit from the dashboard.
func (client *Client) UpdateExploit(ctx context.Context, exploit Exploit) error {
	path := "/exploits/" + url.PathEscape(exploit.Manifest.Name)
	return client.do(ctx, http.MethodPut, path, exploit, nil)
}

// get fetches a path and decodes the success envelope's data field into
// result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	return client.do(ctx, http.MethodGet, path, nil, result)
}

// do executes one API request. requestBody (if non-nil) is
// JSON-encoded; result (if non-nil) receives the "data" field of the
// success envelope. Non-2xx responses are returned as *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("roster: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("roster: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("roster: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("roster: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, body)
	}

	if result != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("roster: decoding response envelope for %s: %w", path, err)
		}
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("roster: decoding response data for %s: %w", path, err)
		}
	}
	return nil
}

// parseAPIError reads the server's error envelope from a failure body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		apiError.Message = envelope.Error.Message
	} else {
		apiError.Message = strings.TrimSpace(string(body))
	}
	return apiError
}
