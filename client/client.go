// Package client calls the healthcare API on behalf of front ends and the
// command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
)

const DefaultBaseURL = "http://localhost:8000"

type ErrorKind int

const (
	KindClient  ErrorKind = iota // 4xx other than 429
	KindServer                   // 5xx and 429
	KindTimeout
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "request timed out. Please try again"
	case KindNetwork:
		return fmt.Sprintf("unable to reach the server: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error (%d)", e.Kind, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Retryable() bool {
	return e.Kind != KindClient
}

type Client struct {
	baseURL string
	http    *http.Client
	retry   utils.RetryConfig
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithRetry(cfg utils.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		retry: utils.RetryConfig{
			MaxRetries:     2,
			InitialBackoff: 300 * time.Millisecond,
			MaxBackoff:     3 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type userAction struct {
	UserID uint   `json:"user_id"`
	Action string `json:"action,omitempty"`
}

func (c *Client) Greet(ctx context.Context, userID uint) (*GreetResponse, error) {
	var out GreetResponse
	return &out, c.do(ctx, http.MethodPost, "/api/greet", userAction{UserID: userID}, &out)
}

func (c *Client) LogMood(ctx context.Context, userID uint, mood string) (*MoodResponse, error) {
	body := struct {
		userAction
		Mood string `json:"mood"`
	}{userAction{userID, "log"}, mood}
	var out MoodResponse
	return &out, c.do(ctx, http.MethodPost, "/api/mood", body, &out)
}

func (c *Client) MoodStats(ctx context.Context, userID uint) (*MoodResponse, error) {
	var out MoodResponse
	return &out, c.do(ctx, http.MethodPost, "/api/mood", userAction{userID, "get_stats"}, &out)
}

func (c *Client) LogGlucose(ctx context.Context, userID uint, reading int) (*GlucoseResponse, error) {
	body := struct {
		userAction
		Reading int `json:"glucose_reading"`
	}{userAction{userID, "log"}, reading}
	var out GlucoseResponse
	return &out, c.do(ctx, http.MethodPost, "/api/cgm", body, &out)
}

func (c *Client) GenerateGlucose(ctx context.Context, userID uint) (*GlucoseResponse, error) {
	var out GlucoseResponse
	return &out, c.do(ctx, http.MethodPost, "/api/cgm", userAction{userID, "generate"}, &out)
}

func (c *Client) GlucoseStats(ctx context.Context, userID uint) (*GlucoseResponse, error) {
	var out GlucoseResponse
	return &out, c.do(ctx, http.MethodPost, "/api/cgm", userAction{userID, "get_stats"}, &out)
}

func (c *Client) LogFood(ctx context.Context, userID uint, description string) (*FoodResponse, error) {
	body := struct {
		userAction
		MealDescription string `json:"meal_description"`
	}{userAction{userID, "log"}, description}
	var out FoodResponse
	return &out, c.do(ctx, http.MethodPost, "/api/food", body, &out)
}

func (c *Client) FoodStats(ctx context.Context, userID uint) (*FoodResponse, error) {
	var out FoodResponse
	return &out, c.do(ctx, http.MethodPost, "/api/food", userAction{userID, "get_stats"}, &out)
}

// GenerateMealPlan asks for a new plan; special is free text such as
// "low sodium" and is omitted when empty.
func (c *Client) GenerateMealPlan(ctx context.Context, userID uint, special string) (*MealPlanResponse, error) {
	body := struct {
		userAction
		SpecialRequirements string `json:"special_requirements,omitempty"`
	}{userAction{userID, "generate"}, special}
	var out MealPlanResponse
	return &out, c.do(ctx, http.MethodPost, "/api/meal-plan", body, &out)
}

func (c *Client) LatestMealPlan(ctx context.Context, userID uint) (*MealPlanResponse, error) {
	var out MealPlanResponse
	return &out, c.do(ctx, http.MethodPost, "/api/meal-plan", userAction{userID, "get_latest"}, &out)
}

// Ask sends a free-form question. userID 0 is sent as null.
func (c *Client) Ask(ctx context.Context, userID uint, query string, current map[string]any) (*AskResponse, error) {
	body := struct {
		UserID         *uint          `json:"user_id"`
		Query          string         `json:"query"`
		CurrentContext map[string]any `json:"current_context,omitempty"`
	}{Query: query, CurrentContext: current}
	if userID != 0 {
		body.UserID = &userID
	}
	var out AskResponse
	return &out, c.do(ctx, http.MethodPost, "/api/interrupt", body, &out)
}

func (c *Client) Summary(ctx context.Context, userID uint) (*SummaryResponse, error) {
	var out SummaryResponse
	return &out, c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/summary", userID), nil, &out)
}

func (c *Client) AvailableMoods(ctx context.Context) (*MoodsResponse, error) {
	var out MoodsResponse
	return &out, c.do(ctx, http.MethodGet, "/api/available-moods", nil, &out)
}

func (c *Client) Alerts(ctx context.Context, userID uint, limit int) (*AlertsResponse, error) {
	path := fmt.Sprintf("/api/users/%d/alerts", userID)
	if limit > 0 {
		path += "?" + url.Values{"limit": {fmt.Sprint(limit)}}.Encode()
	}
	var out AlertsResponse
	return &out, c.do(ctx, http.MethodGet, path, nil, &out)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	op := method + " " + path
	_, err := utils.WithRetry(ctx, c.retry, c.log, op, func(ctx context.Context) (struct{}, error) {
		err := c.once(ctx, method, path, payload, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return struct{}{}, utils.Permanent(err)
		}
		return struct{}{}, err
	})
	return err
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return utils.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return utils.Permanent(fmt.Errorf("decode %s response: %w", path, err))
	}
	if r, ok := out.(interface{ setRaw([]byte) }); ok {
		r.setRaw(raw)
	}
	return nil
}

func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &APIError{Kind: KindTimeout, Err: err}
	}
	return &APIError{Kind: KindNetwork, Err: err}
}

func statusError(status int, raw []byte) *APIError {
	e := &APIError{Kind: KindClient, Status: status}
	if status >= 500 || status == http.StatusTooManyRequests {
		e.Kind = KindServer
	}

	var b errorBody
	if json.Unmarshal(raw, &b) == nil {
		e.Code = b.Error
		e.Message = b.Message
		if e.Message == "" {
			e.Message = b.Detail
		}
		if e.Message == "" {
			e.Message = b.Error
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
