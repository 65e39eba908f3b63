// Package export implements the command that builds the codeplug from the
// local repeater store.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogdrb/ogdrb/internal/codeplug"
	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/datastore"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/exporter"
	"github.com/ogdrb/ogdrb/internal/logging"
	"github.com/ogdrb/ogdrb/internal/observability"
	"github.com/ogdrb/ogdrb/internal/observability/metrics"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Command creates the export command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a codeplug from the configured zones",
		Long: `Queries the local repeater store once per configured zone, consolidates
the overlapping results, and writes the Channels.csv and Zones.csv files
the radio's configuration software imports. Every record skipped or
truncated along the way is listed on completion.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVarP(&settings.Codeplug.OutputDir, "output", "o",
		settings.Codeplug.OutputDir, "Directory the codeplug CSV files are written to")

	return cmd
}

func runExport(ctx context.Context, settings *conf.Settings) error {
	filter, err := repeaterbook.FilterFromSettings(settings)
	if err != nil {
		return err
	}

	zones := make([]exporter.ZoneRequest, 0, len(settings.Export.Zones))
	for _, named := range settings.ZoneAreas() {
		zones = append(zones, exporter.ZoneRequest{Name: named.Name, Area: named.Area})
	}

	store := datastore.New(settings)
	if store == nil {
		return errors.Newf("no output database is enabled in the configuration").
			Category(errors.CategoryConfiguration).
			Component("main").
			Build()
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close the repeater store: %v\n", err)
		}
	}()

	pipeline := exporter.New(store, limitsFromSettings(settings))

	if settings.Metrics.Enabled {
		collectors, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		pipeline.SetMetrics(collectors.Exporter)
		if ms, ok := store.(interface {
			SetMetrics(*metrics.DatastoreMetrics)
		}); ok {
			ms.SetMetrics(collectors.Datastore)
		}
		if settings.Metrics.ListenAddr != "" {
			endpoint := observability.NewEndpoint(settings.Metrics.ListenAddr, collectors, logging.ForService("observability"))
			endpoint.Start()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = endpoint.Shutdown(shutdownCtx)
			}()
		}
	}

	plug, report, err := pipeline.Run(ctx, zones, filter)
	if err != nil {
		return err
	}

	if err := codeplug.WriteFiles(settings.Codeplug.OutputDir, plug, limitsFromSettings(settings)); err != nil {
		return err
	}

	fmt.Printf("Codeplug written to %s: %d channels in %d zones\n",
		settings.Codeplug.OutputDir, plug.ChannelCount(), len(plug.Zones))
	printReport(report)
	return nil
}

// printReport lists every skip and truncation of the run on stdout.
func printReport(report *exporter.Report) {
	if len(report.Entries) == 0 {
		return
	}
	fmt.Printf("%d records were excluded (run %s):\n", len(report.Entries), report.RunID)
	for _, e := range report.Entries {
		where := e.Zone
		if where == "" {
			where = "-"
		}
		fmt.Printf("  zone=%s repeater=%s reason=%s: %s\n", where, e.Repeater, e.Reason, e.Detail)
	}
}

// limitsFromSettings applies the configured capacity overrides on top of the
// default profile.
func limitsFromSettings(settings *conf.Settings) codeplug.Limits {
	limits := codeplug.DefaultLimits()
	c := settings.Codeplug
	if c.MaxChannels > 0 {
		limits.MaxChannels = c.MaxChannels
	}
	if c.MaxZones > 0 {
		limits.MaxZones = c.MaxZones
	}
	if c.MaxChannelsPerZone > 0 {
		limits.MaxChannelsPerZone = c.MaxChannelsPerZone
	}
	if c.MaxNameLength > 0 {
		limits.MaxNameLength = c.MaxNameLength
	}
	return limits
}
