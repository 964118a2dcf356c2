package main

import (
	"github.com/spf13/cobra"

	"github.com/StreetLamp05/glassgov-be/internal/bootstrap"
	"github.com/StreetLamp05/glassgov-be/internal/discover"
)

func newDiscoverCommand() *cobra.Command {
	var (
		req     discover.Request
		fixture string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Build discovery sections for a place and print them as JSON",
		Example: `  glassgov discover --city "Los Angeles" --category housing --category crime --per-category 2
  glassgov discover --state California --fixture records.json
  glassgov discover --county "Los Angeles" --message "the bus never comes"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if fixture != "" {
				cfg.Database.Enabled = false
				cfg.Database.FixturePath = fixture
			}
			// one-shot runs never enrich in the background
			cfg.Enrichment.Enabled = false

			app, err := bootstrap.NewApp(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			result, err := app.Discover.Discover(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Geo.City, "city", "", "city name")
	f.StringVar(&req.Geo.County, "county", "", "county name (with or without the County suffix)")
	f.StringVar(&req.Geo.StateName, "state", "", "state name")
	f.StringVar(&req.Message, "message", "", "free-text message used to pick categories")
	f.StringSliceVar(&req.Categories, "category", nil, "explicit category (repeatable)")
	f.IntVar(&req.PerCategory, "per-category", 0, "items per list (default 5, max 50)")
	f.StringVar(&fixture, "fixture", "", "JSON records file used instead of Postgres")
	return cmd
}
