package client

// http_client.go = talks to the YaMDb REST API for the CLI commands.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
)

// APIError is a non-2xx response. Detail holds the "detail" message when
// the server sent one, Fields the per-field validation messages otherwise.
type APIError struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Detail)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msgs := range e.Fields {
			parts = append(parts, field+": "+strings.Join(msgs, " "))
		}
		return fmt.Sprintf("%d: %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// TitleFilter mirrors the query parameters of GET /titles/.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     int
	Page     int
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// Signup requests a confirmation code for username/email.
func (c *HTTPClient) Signup(ctx context.Context, request *dto.SignupRequest) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup/", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Token exchanges a confirmation code for an access token.
func (c *HTTPClient) Token(ctx context.Context, request *dto.TokenRequest) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token/", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges a password for an access token.
func (c *HTTPClient) Login(ctx context.Context, request *dto.LoginRequest) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListCategories(ctx context.Context, search string, page int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error) {
	return c.listCatalog(ctx, "/categories/", search, page)
}

func (c *HTTPClient) ListGenres(ctx context.Context, search string, page int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error) {
	return c.listCatalog(ctx, "/genres/", search, page)
}

func (c *HTTPClient) listCatalog(ctx context.Context, path, search string, page int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}

	var result dto.PaginatedResponse[dto.CatalogItemResponse]
	if err := c.do(ctx, http.MethodGet, withQuery(path, q), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListTitles(ctx context.Context, f TitleFilter) (*dto.PaginatedResponse[dto.TitleResponse], error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Year != 0 {
		q.Set("year", fmt.Sprint(f.Year))
	}
	if f.Page > 0 {
		q.Set("page", fmt.Sprint(f.Page))
	}

	var result dto.PaginatedResponse[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, withQuery("/titles/", q), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return apiErr
	}
	if d, ok := payload["detail"]; ok {
		_ = json.Unmarshal(d, &apiErr.Detail)
		return apiErr
	}

	apiErr.Fields = make(map[string][]string, len(payload))
	for field, v := range payload {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err == nil {
			apiErr.Fields[field] = msgs
		}
	}
	return apiErr
}
