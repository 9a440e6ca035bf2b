package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"contribgraph/fetcher"
	"contribgraph/github"
	"contribgraph/graph"
	"contribgraph/models"
	"contribgraph/validation"
)

func newFetchCmd() *cobra.Command {
	var (
		theme    string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <username>",
		Short: "Fetch a user's contributions and print them",
		Long: `Fetch one year of contributions for a GitHub user and print them as a
terminal heatmap, or as the JSON returned by the API with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := github.NewClient(cfg.GraphQLEndpoint, cfg.UserAgent, cfg.RequestTimeout)
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}

			username, outcome := fetcher.New(client).Contributions(cmd.Context(), args[0])
			switch outcome.Kind {
			case models.OutcomeRejectedInput:
				return fmt.Errorf("%w: %s", validation.ErrInvalidIdentifier, outcome.Message)
			case models.OutcomeNotFound, models.OutcomeTransportError:
				return errors.New(outcome.Message)
			}

			out := cmd.OutOrStdout()
			if jsonMode {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcome.Collection)
			}

			calendar := outcome.Calendar()
			if calendar == nil {
				return fmt.Errorf("no contribution data available for %s", username)
			}
			fmt.Fprintf(out, "%s\n%s\n", username, graph.RenderTerminal(calendar, validation.ValidateTheme(theme)))
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", string(models.DefaultTheme), "Color theme: light or dark")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print the contributions collection as JSON")
	return cmd
}
