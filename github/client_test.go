package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contribgraph/logger"
	"contribgraph/models"
	"contribgraph/validation"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize("debug")
}

const calendarResponse = `{
  "data": {
    "user": {
      "contributionsCollection": {
        "contributionCalendar": {
          "totalContributions": 12,
          "weeks": [
            {"contributionDays": [
              {"contributionCount": 0, "date": "2024-01-07", "color": "#ebedf0", "weekday": 0},
              {"contributionCount": 5, "date": "2024-01-08", "color": "#40c463", "weekday": 1}
            ]},
            {"contributionDays": [
              {"contributionCount": 7, "date": "2024-01-14", "color": "#30a14e", "weekday": 0}
            ]}
          ]
        }
      }
    }
  }
}`

func newTestClient(t *testing.T, serverURL string, timeout time.Duration) *Client {
	t.Helper()
	endpoint, err := url.Parse(serverURL)
	require.NoError(t, err)
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    endpoint,
		userAgent:   "contribgraph-test",
		cachePolicy: models.DefaultCachePolicy,
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("", "", 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, models.DefaultCachePolicy, client.cachePolicy)
}

func TestNewClientInvalidEndpoint(t *testing.T) {
	_, err := NewClient("not a url", "", time.Second)
	assert.Error(t, err)

	_, err = NewClient("://missing-scheme", "", time.Second)
	assert.Error(t, err)
}

func TestFetchContributions(t *testing.T) {
	testCases := []struct {
		name            string
		mockStatusCode  int
		mockHeaders     map[string]string
		mockBody        string
		expectedKind    models.OutcomeKind
		expectedMessage string
		expectCache     bool
	}{
		{
			name:           "successful fetch",
			mockStatusCode: http.StatusOK,
			mockBody:       calendarResponse,
			expectedKind:   models.OutcomeSuccess,
			expectCache:    true,
		},
		{
			name:            "user explicitly null",
			mockStatusCode:  http.StatusOK,
			mockBody:        `{"data":{"user":null}}`,
			expectedKind:    models.OutcomeNotFound,
			expectedMessage: `User "torvalds" not found`,
			expectCache:     true,
		},
		{
			name:           "null user wins over error list",
			mockStatusCode: http.StatusOK,
			mockBody: `{"data":{"user":null},"errors":[{"type":"NOT_FOUND",
				"message":"Could not resolve to a User with the login of 'torvalds'."}]}`,
			expectedKind: models.OutcomeNotFound,
			expectCache:  true,
		},
		{
			name:            "application error list",
			mockStatusCode:  http.StatusOK,
			mockBody:        `{"errors":[{"message":"rate limited"},{"message":"second"}]}`,
			expectedKind:    models.OutcomeTransportError,
			expectedMessage: "rate limited",
		},
		{
			name:            "error list with empty message",
			mockStatusCode:  http.StatusOK,
			mockBody:        `{"errors":[{"message":""}]}`,
			expectedKind:    models.OutcomeTransportError,
			expectedMessage: "GitHub API returned an error",
		},
		{
			name:           "user without collection",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":{"user":{}}}`,
			expectedKind:   models.OutcomeSuccess,
		},
		{
			name:           "collection without calendar",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":{"user":{"contributionsCollection":{"contributionCalendar":null}}}}`,
			expectedKind:   models.OutcomeSuccess,
		},
		{
			name:           "null data",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":null}`,
			expectedKind:   models.OutcomeSuccess,
		},
		{
			name:           "empty data",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":{}}`,
			expectedKind:   models.OutcomeSuccess,
		},
		{
			name:            "server error",
			mockStatusCode:  http.StatusBadGateway,
			mockBody:        `upstream unavailable`,
			expectedKind:    models.OutcomeTransportError,
			expectedMessage: "GitHub API error: 502 Bad Gateway",
		},
		{
			name:           "rate limited",
			mockStatusCode: http.StatusForbidden,
			mockHeaders: map[string]string{
				"X-RateLimit-Limit":     "60",
				"X-RateLimit-Remaining": "0",
				"X-RateLimit-Reset":     "1700000000",
			},
			mockBody:        `{"message":"API rate limit exceeded"}`,
			expectedKind:    models.OutcomeTransportError,
			expectedMessage: "GitHub API rate limit exceeded: resets at 2023-11-14T22:13:20Z",
		},
		{
			name:           "invalid json",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":`,
			expectedKind:   models.OutcomeTransportError,
		},
		{
			name:           "unexpected user shape",
			mockStatusCode: http.StatusOK,
			mockBody:       `{"data":{"user":"octocat"}}`,
			expectedKind:   models.OutcomeTransportError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Create a test server
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Verify request headers
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "contribgraph-test", r.Header.Get("User-Agent"))
				assert.Empty(t, r.Header.Get("Authorization"))

				// Verify the GraphQL payload
				var req graphQLRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, map[string]string{"username": "torvalds"}, req.Variables)
				assert.Contains(t, req.Query, "contributionCalendar")

				for k, v := range tc.mockHeaders {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.mockStatusCode)
				_, _ = io.WriteString(w, tc.mockBody)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, 5*time.Second)

			outcome := client.FetchContributions(context.Background(), validation.Identifier("torvalds"))

			assert.Equal(t, tc.expectedKind, outcome.Kind)
			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, outcome.Message)
			}
			if tc.expectedKind == models.OutcomeTransportError {
				assert.NotEmpty(t, outcome.Message)
			}
			assert.Equal(t, tc.expectCache, outcome.Cache.Cacheable())
		})
	}
}

func TestFetchContributionsDecodesCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		_, _ = io.WriteString(w, calendarResponse)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5*time.Second)
	outcome := client.FetchContributions(context.Background(), validation.Identifier("torvalds"))

	require.Equal(t, models.OutcomeSuccess, outcome.Kind)
	calendar := outcome.Calendar()
	require.NotNil(t, calendar)
	assert.Equal(t, 12, calendar.TotalContributions)
	require.Len(t, calendar.Weeks, 2)
	assert.Len(t, calendar.Weeks[0].ContributionDays, 2)
	assert.Len(t, calendar.Weeks[1].ContributionDays, 1)
	assert.Equal(t, models.ContributionDay{
		ContributionCount: 5,
		Date:              "2024-01-08",
		Color:             "#40c463",
		Weekday:           1,
	}, calendar.Weeks[0].ContributionDays[1])
}

func TestFetchContributionsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL, 5*time.Second)
	outcome := client.FetchContributions(context.Background(), validation.Identifier("torvalds"))

	assert.Equal(t, models.OutcomeTransportError, outcome.Kind)
	assert.Contains(t, outcome.Message, "failed to reach GitHub API")
	assert.False(t, outcome.Cache.Cacheable())
}

func TestFetchContributionsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 50*time.Millisecond)
	outcome := client.FetchContributions(context.Background(), validation.Identifier("torvalds"))

	assert.Equal(t, models.OutcomeTransportError, outcome.Kind)
	assert.NotEmpty(t, outcome.Message)
}

func TestFetchContributionsCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, calendarResponse)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, server.URL, 5*time.Second)
	outcome := client.FetchContributions(ctx, validation.Identifier("torvalds"))

	assert.Equal(t, models.OutcomeTransportError, outcome.Kind)
}

func TestParseRateLimit(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Limit", "5000")
	resp.Header.Set("X-RateLimit-Remaining", "4990")
	resp.Header.Set("X-RateLimit-Reset", "1700000000")

	rl := parseRateLimit(resp)
	assert.Equal(t, 5000, rl.Limit)
	assert.Equal(t, 4990, rl.Remaining)
	assert.Equal(t, time.Unix(1700000000, 0), rl.Reset)
}
