package fetcher

import (
	"context"

	"go.uber.org/zap"

	"contribgraph/logger"
	"contribgraph/models"
	"contribgraph/validation"
)

// ContributionsClient defines the upstream operation needed by the fetcher
type ContributionsClient interface {
	FetchContributions(ctx context.Context, username validation.Identifier) models.FetchOutcome
}

// Fetcher validates untrusted input before it reaches the upstream client
type Fetcher struct {
	client ContributionsClient
}

// New creates a Fetcher backed by client
func New(client ContributionsClient) *Fetcher {
	return &Fetcher{client: client}
}

// Contributions sanitizes and validates raw, then fetches contributions for
// the resulting login. Rejected input never reaches the client. The returned
// identifier is empty when the input was rejected.
func (f *Fetcher) Contributions(ctx context.Context, raw string) (validation.Identifier, models.FetchOutcome) {
	username, err := validation.Process(raw)
	if err != nil {
		logger.Debug("Rejected username",
			zap.Int("raw_length", len(raw)),
			zap.Error(err))
		return "", models.Rejected(validation.InvalidIdentifierMessage)
	}

	return username, f.client.FetchContributions(ctx, username)
}
