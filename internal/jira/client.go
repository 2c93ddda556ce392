// Package jira is a minimal REST client for the four operations the
// automation needs: principal discovery, issue search, transition listing,
// and transition execution.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
)

// ErrMissingCredentials indicates the API token is not configured. This is
// fatal to the whole invocation; nothing can proceed without it.
var ErrMissingCredentials = errors.New("JIRA_API_TOKEN is not set")

const defaultTimeout = 30 * time.Second

// Config carries client construction values.
type Config struct {
	BaseURL        string
	Email          string
	APIToken       string
	Timeout        time.Duration
	MaxResults     int
	PlanStartField string
	PlanEndField   string
}

// Client talks to a Jira Cloud instance over REST with basic auth.
type Client struct {
	baseURL        string
	email          string
	token          string
	httpClient     *http.Client
	maxResults     int
	planStartField string
	planEndField   string
	logger         zerolog.Logger
}

// New builds a Client. A missing API token is a configuration error.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, ErrMissingCredentials
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		email:          cfg.Email,
		token:          cfg.APIToken,
		maxResults:     maxResults,
		planStartField: cfg.PlanStartField,
		planEndField:   cfg.PlanEndField,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "jira").Logger(),
	}, nil
}

// Myself fetches the authenticated principal.
func (c *Client) Myself(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, "myself", http.MethodGet, "/rest/api/3/myself", nil, &user); err != nil {
		return User{}, err
	}
	if user.AccountID == "" {
		return User{}, errors.New("myself response carries no account ID")
	}
	return user, nil
}

// Search runs a JQL query and returns at most MaxResults tickets with the
// summary, status, and plan timestamp fields populated when present.
func (c *Client) Search(ctx context.Context, jql string) ([]Ticket, error) {
	req := searchRequest{
		JQL:        jql,
		MaxResults: c.maxResults,
		Fields:     []string{"key", "summary", "status", c.planStartField, c.planEndField},
	}

	var resp searchResponse
	if err := c.do(ctx, "search", http.MethodPost, "/rest/api/3/search/jql", req, &resp); err != nil {
		return nil, err
	}

	tickets := make([]Ticket, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		tickets = append(tickets, c.toTicket(issue))
	}
	return tickets, nil
}

// Transitions lists the state changes currently available on an issue.
func (c *Client) Transitions(ctx context.Context, issueKey string) ([]Transition, error) {
	var resp transitionsResponse
	path := fmt.Sprintf("/rest/api/3/issue/%s/transitions", issueKey)
	if err := c.do(ctx, "transitions", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// ApplyTransition executes a transition on an issue. Jira acknowledges
// success with 204 No Content.
func (c *Client) ApplyTransition(ctx context.Context, issueKey, transitionID string) error {
	path := fmt.Sprintf("/rest/api/3/issue/%s/transitions", issueKey)
	req := applyTransitionRequest{Transition: transitionRef{ID: transitionID}}
	return c.do(ctx, "apply", http.MethodPost, path, req, nil)
}

func (c *Client) toTicket(issue searchIssue) Ticket {
	ticket := Ticket{Key: issue.Key}

	if summary, ok := issue.Fields["summary"].(string); ok {
		ticket.Summary = summary
	}
	if status, ok := issue.Fields["status"].(map[string]interface{}); ok {
		if name, ok := status["name"].(string); ok {
			ticket.Status = name
		}
	}
	if raw, ok := issue.Fields[c.planStartField].(string); ok {
		ticket.PlanStartRaw = raw
	}
	if raw, ok := issue.Fields[c.planEndField].(string); ok {
		ticket.PlanEndRaw = raw
	}
	return ticket
}

// do executes one request/response cycle, recording latency and status
// metrics per operation.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	telemetry.JiraRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.JiraRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	telemetry.JiraRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("body", string(detail)).
			Msg("jira request rejected")
		return fmt.Errorf("%s: jira responded %d: %s", operation, resp.StatusCode, string(detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
