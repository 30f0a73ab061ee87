package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/giannis84/character-favourites/internal/models"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	DefaultBaseURL = "https://rickandmortyapi.com/api"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var (
	ErrNotFound  = errors.New("character not found")
	ErrNoResults = errors.New("no characters match the search")
)

// APIError is returned for non-2xx answers that are not mapped to a sentinel.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API returned %d: %s", e.StatusCode, e.Message)
}

// Client reads the public character catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for baseURL (DefaultBaseURL when empty).
// A zero timeout selects a 10s default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Characters fetches one page of the catalog, optionally filtered by name.
// Pages below 1 are treated as 1 and a blank name is not sent. A search
// that matches nothing returns ErrNoResults.
func (c *Client) Characters(ctx context.Context, page int, name string) (*models.CharacterPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if name = strings.TrimSpace(name); name != "" {
		params.Set("name", name)
	}

	var result models.CharacterPage
	err := c.get(ctx, "/character?"+params.Encode(), &result)
	if errors.Is(err, errStatusNotFound) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.Character{}
	}
	return &result, nil
}

// Character fetches a single character by id.
func (c *Client) Character(ctx context.Context, id int) (*models.Character, error) {
	var result models.Character
	err := c.get(ctx, "/character/"+strconv.Itoa(id), &result)
	if errors.Is(err, errStatusNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

var errStatusNotFound = errors.New("catalog resource not found")

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling catalog API: %w", err)
	}
	defer resp.Body.Close()

	logging.Log(ctx).Layer("catalog").Str("path", path).Int("status_code", resp.StatusCode).
		Duration("elapsed", time.Since(start)).Debug("catalog request completed")

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return errStatusNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	return nil
}
