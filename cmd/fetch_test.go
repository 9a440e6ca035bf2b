package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contribgraph/validation"
)

const userResponse = `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
	"totalContributions":4,
	"weeks":[{"contributionDays":[
		{"contributionCount":1,"date":"2024-01-07","color":"#9be9a8","weekday":0},
		{"contributionCount":3,"date":"2024-01-08","color":"#40c463","weekday":1}
	]}]}}}}}`

func runFetch(t *testing.T, body string, args ...string) (string, error) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("GITHUB_GRAPHQL_URL", srv.URL)
	configFile = ""

	var out bytes.Buffer
	cmd := newFetchCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchRendersHeatmap(t *testing.T) {
	out, err := runFetch(t, userResponse, "octocat")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "octocat", lines[0])
	assert.Equal(t, "4 contributions in the last year", lines[8])
}

func TestFetchJSON(t *testing.T) {
	out, err := runFetch(t, userResponse, "octocat", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalContributions": 4`)
}

func TestFetchNotFound(t *testing.T) {
	_, err := runFetch(t, `{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve"}]}`, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestFetchRejectsInvalidUsername(t *testing.T) {
	_, err := runFetch(t, userResponse, "--", "-bad-")
	assert.ErrorIs(t, err, validation.ErrInvalidIdentifier)
}
