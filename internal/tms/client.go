package tms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"freightpulse/internal/config"
	"freightpulse/internal/infrastructure"
)

// PersistFunc is called after a successful token refresh so the new
// credential pair can be written back to disk. Persistence failures are
// the callback's problem; the client never fails a request over them.
type PersistFunc func(creds config.Credentials)

// Client is a thin wrapper around the TMS REST API. Credentials are held
// as an immutable value; a 401 triggers a single refresh-and-retry and
// swaps in a new credential value under the mutex.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int
	logger     *slog.Logger
	persist    PersistFunc

	mu    sync.RWMutex
	creds config.Credentials
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPersist registers a callback invoked with the refreshed credential
// pair after a successful token refresh.
func WithPersist(fn PersistFunc) Option {
	return func(c *Client) { c.persist = fn }
}

// NewClient creates a TMS client from configuration and a credential pair.
func NewClient(cfg config.TMSConfig, creds config.Credentials, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	// The inter-page delay becomes a token-bucket rate so concurrent
	// callers share the same pacing.
	interval := cfg.PageDelay
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		pageSize: cfg.PageSize,
		logger:   logger,
		creds:    creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether the client has an access token.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds.IsConfigured()
}

// Credentials returns the current credential pair.
func (c *Client) Credentials() config.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// APIError is a non-2xx response from the TMS.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tms: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// refreshAccessToken exchanges the refresh token for a new access token
// via GET /token and persists the new pair.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.mu.RLock()
	refreshToken := c.creds.RefreshToken
	c.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("tms: no refresh token available")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token", nil)
	if err != nil {
		return fmt.Errorf("tms: create refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tms: refresh token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tms: read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: "/token", Body: string(body)}
	}

	// The API has been observed returning both camelCase and snake_case.
	var payload struct {
		AccessToken      string `json:"accessToken"`
		AccessTokenSnake string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("tms: decode refresh response: %w", err)
	}
	accessToken := payload.AccessToken
	if accessToken == "" {
		accessToken = payload.AccessTokenSnake
	}
	if accessToken == "" {
		return fmt.Errorf("tms: refresh response carried no access token")
	}

	c.mu.Lock()
	c.creds = c.creds.WithAccessToken(accessToken)
	newCreds := c.creds
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "access token refreshed")
	if c.persist != nil {
		c.persist(newCreds)
	}
	return nil
}

// request issues an authenticated GET, retrying exactly once through a
// token refresh on 401.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tms: rate limit wait: %w", err)
	}

	body, status, err := c.do(ctx, endpoint, params)
	if err != nil {
		infrastructure.TMSRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return err
	}

	if status == http.StatusUnauthorized {
		c.logger.WarnContext(ctx, "unauthorized response, refreshing token",
			slog.String("endpoint", endpoint))
		if refreshErr := c.refreshAccessToken(ctx); refreshErr != nil {
			infrastructure.TMSRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			return fmt.Errorf("tms: refresh after 401: %w", refreshErr)
		}
		body, status, err = c.do(ctx, endpoint, params)
		if err != nil {
			infrastructure.TMSRequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return err
		}
	}

	infrastructure.TMSRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Endpoint: endpoint, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tms: decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("tms: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	accessToken := c.creds.AccessToken
	c.mu.RUnlock()
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tms: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("tms: read %s response: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}

// GetLoads retrieves one page of loads. Pagination uses skip, not page.
func (c *Client) GetLoads(ctx context.Context, limit, skip int) (*LoadsPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))

	var page LoadsPage
	if err := c.request(ctx, "/loads", params, &page); err != nil {
		return nil, fmt.Errorf("get loads: %w", err)
	}
	return &page, nil
}

// GetAllLoads paginates through every load using skip-based pagination,
// stopping on an empty or short page.
func (c *Client) GetAllLoads(ctx context.Context) ([]Load, error) {
	pageSize := c.pageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}

	var all []Load
	skip := 0
	for {
		page, err := c.GetLoads(ctx, pageSize, skip)
		if err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			break
		}
		all = append(all, page.Data...)
		skip += len(page.Data)
		if len(page.Data) < pageSize {
			break
		}
	}

	c.logger.InfoContext(ctx, "fetched loads",
		slog.Int("count", len(all)))
	return all, nil
}

// GetCustomers retrieves the customer master list. The endpoint is
// singular, /customer, not /customers.
func (c *Client) GetCustomers(ctx context.Context) ([]Customer, error) {
	var resp CustomersResponse
	if err := c.request(ctx, "/customer", nil, &resp); err != nil {
		return nil, fmt.Errorf("get customers: %w", err)
	}
	return resp.Data, nil
}

// GetInvoices retrieves one page of invoices.
func (c *Client) GetInvoices(ctx context.Context, limit, skip int) (*InvoicesPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))

	var page InvoicesPage
	if err := c.request(ctx, "/invoices", params, &page); err != nil {
		return nil, fmt.Errorf("get invoices: %w", err)
	}
	return &page, nil
}

// TestConnection probes the API by pulling the first few loads.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	page, err := c.GetLoads(ctx, 5, 0)
	if err != nil {
		var apiErr *APIError
		status := "connection_failed"
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			status = "auth_error"
		}
		return ConnectionStatus{Status: status, Detail: err.Error()}
	}

	refs := make([]string, 0, 3)
	for i, load := range page.Data {
		if i == 3 {
			break
		}
		refs = append(refs, load.ReferenceNumber)
	}
	return ConnectionStatus{
		Status:     "connected",
		TotalLoads: page.Count,
		SampleRefs: refs,
	}
}
