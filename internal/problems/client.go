package problems

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8000"

var (
	ErrServiceUnavailable = errors.New("problem service unavailable")
	ErrNotFound           = errors.New("problem not found")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
)

// APIError is returned for any non-2xx response from the problem source.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Is lets callers test a 404 with errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var payload HealthResponse
	if err := c.getJSON(ctx, "/api/health", &payload); err != nil {
		return HealthResponse{}, err
	}
	return payload, nil
}

func (c *Client) Random(ctx context.Context) (ProblemResponse, error) {
	return c.getProblem(ctx, "/api/problems/random")
}

func (c *Client) Today(ctx context.Context) (ProblemResponse, error) {
	return c.getProblem(ctx, "/api/problems/today")
}

func (c *Client) ByID(ctx context.Context, id int) (ProblemResponse, error) {
	return c.getProblem(ctx, "/api/problems/"+strconv.Itoa(id))
}

// ByDate fetches the problem published for a calendar day.
func (c *Client) ByDate(ctx context.Context, date string) (ProblemResponse, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ProblemResponse{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	payload, err := c.getProblem(ctx, "/api/problems/"+url.PathEscape(date))
	if err != nil {
		return ProblemResponse{}, err
	}
	if payload.Date == "" {
		payload.Date = date
	}
	return payload, nil
}

func (c *Client) getProblem(ctx context.Context, path string) (ProblemResponse, error) {
	var payload ProblemResponse
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return ProblemResponse{}, err
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, responseBody any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Detail)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(payload.Error)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
