package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"contribgraph/logger"
	"contribgraph/metrics"
	"contribgraph/models"
	"contribgraph/validation"
)

const (
	// DefaultEndpoint is the public GitHub GraphQL API
	DefaultEndpoint = "https://api.github.com/graphql"
	// DefaultUserAgent identifies this service to GitHub
	DefaultUserAgent = "contribgraph"
	// DefaultTimeout bounds a single GraphQL call
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 10 << 20
)

// contributionsQuery fetches the last year of contributions for a login
const contributionsQuery = `
query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            color
            weekday
          }
        }
      }
    }
  }
}`

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Client represents a GitHub GraphQL API client
type Client struct {
	httpClient  *http.Client
	endpoint    *url.URL
	userAgent   string
	cachePolicy models.CachePolicy
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// graphQLResponse keeps "user" raw so an explicit null can be told apart from a
// missing field.
type graphQLResponse struct {
	Data *struct {
		User json.RawMessage `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type userPayload struct {
	ContributionsCollection *models.ContributionsCollection `json:"contributionsCollection"`
}

// NewClient creates a client for the given GraphQL endpoint. An empty
// endpoint or user agent selects the defaults.
func NewClient(endpoint, userAgent string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid GraphQL endpoint %q: %w", endpoint, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid GraphQL endpoint %q: scheme and host are required", endpoint)
	}

	logger.Info("Initializing GitHub client",
		zap.String("endpoint", parsed.String()),
		zap.Duration("timeout", timeout))

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    parsed,
		userAgent:   userAgent,
		cachePolicy: models.DefaultCachePolicy,
	}, nil
}

// Endpoint returns the GraphQL endpoint this client talks to
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// FetchContributions fetches one year of contributions for a validated login.
// It never returns an error: every failure is folded into the outcome.
func (c *Client) FetchContributions(ctx context.Context, username validation.Identifier) (outcome models.FetchOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while fetching contributions",
				zap.Any("panic", r),
				zap.String("username", username.String()))
			outcome = models.TransportFailure("failed to fetch contributions")
		}
		metrics.RecordFetch(outcome.Kind.String(), time.Since(start))
		logger.Info("Fetched contributions",
			zap.String("username", username.String()),
			zap.String("outcome", outcome.Kind.String()),
			zap.Duration("elapsed", time.Since(start)))
	}()

	resp, err := c.post(ctx, username)
	if err != nil {
		logger.Error("Failed to fetch contributions",
			zap.Error(err),
			zap.String("username", username.String()))
		return models.TransportFailure(err.Error())
	}
	defer resp.Body.Close()

	rateLimit := parseRateLimit(resp)
	if resp.Header.Get("X-RateLimit-Remaining") != "" {
		metrics.RecordRateLimit(rateLimit.Remaining)
		logger.Debug("GitHub rate limit",
			zap.Int("limit", rateLimit.Limit),
			zap.Int("remaining", rateLimit.Remaining),
			zap.Time("reset", rateLimit.Reset))
	}

	if err := checkStatus(resp, rateLimit); err != nil {
		logger.Error("Unexpected GraphQL response status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("username", username.String()))
		return models.TransportFailure(err.Error())
	}

	var body graphQLResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		logger.Error("Failed to decode GraphQL response",
			zap.Error(err),
			zap.String("username", username.String()))
		return models.TransportFailure(fmt.Sprintf("failed to decode GraphQL response: %v", err))
	}

	return c.classify(username, body)
}

// classify maps a decoded response onto exactly one outcome. An explicit null
// user wins over an error list, since GitHub reports unknown logins with both.
func (c *Client) classify(username validation.Identifier, body graphQLResponse) models.FetchOutcome {
	if body.Data != nil && isJSONNull(body.Data.User) {
		return models.NotFound(fmt.Sprintf("User %q not found", username.String()), c.cachePolicy)
	}

	if len(body.Errors) > 0 {
		message := body.Errors[0].Message
		if message == "" {
			message = "GitHub API returned an error"
		}
		return models.TransportFailure(message)
	}

	if body.Data == nil || len(body.Data.User) == 0 {
		return models.Success(nil, models.CachePolicy{})
	}

	var user userPayload
	if err := json.Unmarshal(body.Data.User, &user); err != nil {
		return models.TransportFailure(fmt.Sprintf("failed to decode user payload: %v", err))
	}

	// a response without a calendar carries no cache directive
	policy := c.cachePolicy
	if user.ContributionsCollection.Calendar() == nil {
		policy = models.CachePolicy{}
	}
	return models.Success(user.ContributionsCollection, policy)
}

func (c *Client) post(ctx context.Context, username validation.Identifier) (*http.Response, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query:     contributionsQuery,
		Variables: map[string]string{"username": username.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach GitHub API: %w", err)
	}
	return resp, nil
}

// checkStatus rejects every non-2xx response
func checkStatus(resp *http.Response, rateLimit RateLimit) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if isRateLimited(resp) {
		return fmt.Errorf("%w: resets at %s", ErrRateLimited, rateLimit.Reset.UTC().Format(time.RFC3339))
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
}

// parseRateLimit parses rate limit information from response headers
func parseRateLimit(resp *http.Response) RateLimit {
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0),
	}
}

func isRateLimited(resp *http.Response) bool {
	return (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
