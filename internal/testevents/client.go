package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/internal/domain/types"
)

// Client talks to the event API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	code, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnexpectedStatus, code)
	}
	return nil
}

// LogEvent posts e without its event_id and returns the assigned id.
func (c *Client) LogEvent(ctx context.Context, e model.Event) (string, error) {
	e.EventID = ""
	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	code, env, err := c.do(ctx, http.MethodPost, "/events", body)
	if err != nil {
		return "", err
	}
	if code != http.StatusCreated || env.EventID == "" {
		return "", fmt.Errorf("%w: POST /events returned %d: %s", ErrUnexpectedStatus, code, env.Message)
	}
	return env.EventID, nil
}

// GetEvent fetches one event by id.
func (c *Client) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	code, env, err := c.do(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID), nil)
	if err != nil {
		return model.Event{}, err
	}
	if code != http.StatusOK || env.Event == nil {
		return model.Event{}, fmt.Errorf("%w: GET /event/%s returned %d: %s", ErrUnexpectedStatus, eventID, code, env.Message)
	}
	return *env.Event, nil
}

// ListMatchEvents fetches the latest events of a match.
func (c *Client) ListMatchEvents(ctx context.Context, matchID string) ([]model.Event, error) {
	code, env, err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(matchID), nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("%w: GET /events/%s returned %d: %s", ErrUnexpectedStatus, matchID, code, env.Message)
	}
	return env.MatchEvents, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, types.Envelope, error) {
	var env types.Envelope

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, env, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, env, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, env, fmt.Errorf("read response: %w", err)
	}
	if resp.Header.Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(data, &env); err != nil {
			return resp.StatusCode, env, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, env, nil
}
