// Package remote implements the HTTP client for the hosted backend. The
// backend speaks a PostgREST-style REST surface: one route per table with
// eq. filters and Prefer headers for upsert resolution.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote API error: %d - %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the backend's REST surface. It implements
// service.RemoteClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. The API key is sent
// as both the apikey header and a bearer token.
func NewClient(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote base URL cannot be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base URL: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/rest/v1/" + table
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, prefer string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are connectivity problems, not data
		// problems; callers may retry them.
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %v", common.ErrRateLimit, apiErr)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, apiErr)
		}
		return nil, apiErr
	}

	return respBody, nil
}

func fetchInto[T any](ctx context.Context, c *Client, table, userID string, out *[]T) error {
	u := c.tableURL(table) + "?user_id=eq." + url.QueryEscape(userID) + "&select=*"
	body, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

// FetchTransactions returns all of a user's transactions from the backend.
func (c *Client) FetchTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := fetchInto(ctx, c, model.TableTransactions, userID, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// FetchCategories returns all of a user's categories from the backend.
func (c *Client) FetchCategories(ctx context.Context, userID string) ([]model.Category, error) {
	var cats []model.Category
	if err := fetchInto(ctx, c, model.TableCategories, userID, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// FetchBudgets returns all of a user's budgets from the backend.
func (c *Client) FetchBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	var budgets []model.Budget
	if err := fetchInto(ctx, c, model.TableBudgets, userID, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// FetchGoals returns all of a user's goals from the backend.
func (c *Client) FetchGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	var goals []model.Goal
	if err := fetchInto(ctx, c, model.TableGoals, userID, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// FetchProfile returns the user's profile, or nil when the backend has
// none yet.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	u := c.tableURL(model.TableProfiles) + "?id=eq." + url.QueryEscape(userID) + "&select=*"
	body, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}

	var profiles []model.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// Create inserts a record.
func (c *Client) Create(ctx context.Context, table string, record any) error {
	_, err := c.do(ctx, http.MethodPost, c.tableURL(table), record, "return=minimal")
	return err
}

// Update replaces a record by id.
func (c *Client) Update(ctx context.Context, table, id string, record any) error {
	u := c.tableURL(table) + "?id=eq." + url.QueryEscape(id)
	_, err := c.do(ctx, http.MethodPatch, u, record, "return=minimal")
	return err
}

// Delete removes a record by id. Deleting an id the backend no longer has
// is success: the replay loop depends on this to retire stale queue
// entries instead of retrying them forever.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	u := c.tableURL(table) + "?id=eq." + url.QueryEscape(id)
	_, err := c.do(ctx, http.MethodDelete, u, nil, "")
	if err != nil && IsNotFound(err) {
		slog.Debug("remote record already absent", "table", table, "id", id)
		return nil
	}
	return err
}

// Upsert inserts or replaces a record using the given natural-key conflict
// target.
func (c *Client) Upsert(ctx context.Context, table string, record any, conflictKey string) error {
	u := c.tableURL(table)
	if conflictKey != "" {
		u += "?on_conflict=" + url.QueryEscape(conflictKey)
	}
	_, err := c.do(ctx, http.MethodPost, u, record, "resolution=merge-duplicates,return=minimal")
	return err
}
