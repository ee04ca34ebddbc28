package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/identity"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

// HTTPClient implements GameClient over the HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	id         identity.Identity
	httpClient *http.Client
}

// NewHTTPClient targets baseURL (e.g. "http://localhost:8080") as id. When
// token is non-empty it is sent as a bearer token on every request.
func NewHTTPClient(baseURL, token string, id identity.Identity) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		id:         id,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) LoadGame(ctx context.Context) (*LoadGame, error) {
	var lg LoadGame
	if err := c.doJSON(ctx, http.MethodGet, "/loadgame", nil, &lg); err != nil {
		return nil, err
	}
	return &lg, nil
}

func (c *HTTPClient) Game(ctx context.Context) (*entity.Record, error) {
	var rec entity.Record
	if err := c.doJSON(ctx, http.MethodGet, "/game", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Navigation(ctx context.Context) (*ui.Menu, error) {
	var menu ui.Menu
	if err := c.doJSON(ctx, http.MethodGet, "/navigation", nil, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (c *HTTPClient) Get(ctx context.Context, section string) (*entity.Record, error) {
	path, err := sectionPath(section)
	if err != nil {
		return nil, err
	}
	var rec entity.Record
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Put(ctx context.Context, section string, data map[string]any) (*WriteResult, error) {
	path, err := sectionPath(section)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	var res WriteResult
	if err := c.doJSON(ctx, http.MethodPost, path, data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Reference(ctx context.Context, database, table, resource string) (map[string]any, error) {
	q := url.Values{}
	for k, v := range map[string]string{"database": database, "table": table, "resource": resource} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/reference"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into result.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.id.GameID != "" || c.id.PlayerID != "" {
		identity.Apply(req.Header, c.id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
