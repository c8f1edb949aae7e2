// Package platform implements the generic messaging-platform ingestion
// client. It speaks a small REST surface: one endpoint paging message
// events by an opaque cursor. Provider-specific protocols live behind
// gateways outside this service.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
	"github.com/markoalleno/response-time-sub001/internal/domain/responses/service"
)

const (
	defaultBaseURL = "https://gateway.internal/v1"
	defaultTimeout = 30 * time.Second
)

// Client is a messaging-platform gateway client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new platform gateway client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the platform gateway
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error: %s (code: %d)", e.Message, e.Code)
}

// ErrorResponse represents an error response from the gateway
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// eventData is the wire representation of a message event
type eventData struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Platform       string    `json:"platform"`
	Timestamp      time.Time `json:"timestamp"`
	Direction      string    `json:"direction"`
	ParticipantID  string    `json:"participant_id"`
	Excluded       bool      `json:"excluded"`
}

// eventsResponse is one page of events from the gateway
type eventsResponse struct {
	Data   []eventData `json:"data"`
	Paging struct {
		NextCursor string `json:"next_cursor,omitempty"`
		HasMore    bool   `json:"has_more"`
	} `json:"paging"`
}

// GetEvents fetches one page of message events for an account.
// GET /accounts/{account-id}/events
func (c *Client) GetEvents(ctx context.Context, in service.GetEventsInput) (*service.GetEventsResult, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/events", c.baseURL, url.PathEscape(in.AccountID))

	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	if in.Limit > 0 {
		params.Set("limit", strconv.Itoa(in.Limit))
	}
	if in.Cursor != "" {
		params.Set("after", in.Cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out eventsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	events := make([]entity.MessageEvent, 0, len(out.Data))
	for _, d := range out.Data {
		events = append(events, entity.MessageEvent{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			Platform:       d.Platform,
			Timestamp:      d.Timestamp,
			Direction:      entity.Direction(d.Direction),
			ParticipantID:  d.ParticipantID,
			Excluded:       d.Excluded,
		})
	}

	return &service.GetEventsResult{
		Events:     events,
		NextCursor: out.Paging.NextCursor,
		HasMore:    out.Paging.HasMore,
	}, nil
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
