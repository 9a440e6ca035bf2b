package github

import "errors"

// Transport errors surfaced in TransportError outcome messages
var (
	ErrUnexpectedStatus = errors.New("GitHub API error")
	ErrRateLimited      = errors.New("GitHub API rate limit exceeded")
)
