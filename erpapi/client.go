package erpapi

import (
	"bytes"
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

	"clockfix/worklog"
)

const (
	dayLayout        = "2006-01-02"
	defaultUserAgent = "clockfix/1.0"
)

// ErrRejected is returned when the API answers 2xx but reports success=false.
var ErrRejected = errors.New("request rejected by api")

// Client defines the workforce API operations used for conflict resolution.
type Client interface {
	ListConflicts(ctx context.Context, from, to time.Time) ([]worklog.ConflictGroup, error)
	DeleteWorklog(ctx context.Context, recordID int64) (Outcome, error)
	SplitWorklog(ctx context.Context, segments []worklog.Segment) (Outcome, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	Token      string
	CompanyID  string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	token      string
	companyID  string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		companyID:  strings.TrimSpace(cfg.CompanyID),
		userAgent:  userAgent,
		httpClient: doer,
	}, nil
}

// Outcome is the API envelope for mutating calls.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type listConflictsResponse struct {
	Conflicts []worklog.ConflictGroup `json:"conflicts"`
}

type splitRequest struct {
	Segments []worklog.Segment `json:"segments"`
}

func (c *HTTPClient) ListConflicts(ctx context.Context, from, to time.Time) ([]worklog.ConflictGroup, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is after %s", FormatDay(from), FormatDay(to))
	}

	query := url.Values{}
	query.Set("from", FormatDay(from))
	query.Set("to", FormatDay(to))

	var out listConflictsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/worklogs/conflicts?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Conflicts, nil
}

// DeleteWorklog removes one record. Record ids are opaque: any value a
// conflict listing returned, including 0 or negative, is sent as is.
func (c *HTTPClient) DeleteWorklog(ctx context.Context, recordID int64) (Outcome, error) {
	path := "/api/worklogs/" + strconv.FormatInt(recordID, 10)
	// An empty 2xx body counts as success.
	out := Outcome{Success: true}
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return Outcome{}, err
	}
	return checkOutcome(out, fmt.Sprintf("delete worklog %d", recordID))
}

func (c *HTTPClient) SplitWorklog(ctx context.Context, segments []worklog.Segment) (Outcome, error) {
	if len(segments) == 0 {
		return Outcome{}, errors.New("split worklog payload must not be empty")
	}

	out := Outcome{Success: true}
	if err := c.doJSON(ctx, http.MethodPost, "/api/worklogs/split", splitRequest{Segments: segments}, &out); err != nil {
		return Outcome{}, err
	}
	return checkOutcome(out, "split worklog")
}

func checkOutcome(out Outcome, action string) (Outcome, error) {
	if out.Success {
		return out, nil
	}
	message := strings.TrimSpace(out.Message)
	if message == "" {
		message = "no message"
	}
	return out, fmt.Errorf("%s: %w: %s", action, ErrRejected, message)
}

func FormatDay(day time.Time) string {
	return day.Format(dayLayout)
}

func ParseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return parsed, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.companyID != "" {
		req.Header.Set("X-Company-Id", c.companyID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			upstreamMessage(responseBody),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}

// upstreamMessage prefers the "message" field of a JSON error body.
func upstreamMessage(body []byte) string {
	var envelope Outcome
	if err := json.Unmarshal(body, &envelope); err == nil && strings.TrimSpace(envelope.Message) != "" {
		return strings.TrimSpace(envelope.Message)
	}
	return strings.TrimSpace(string(body))
}
