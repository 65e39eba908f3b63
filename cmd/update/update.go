// Package update implements the command that refreshes the local repeater
// store from the directory service.
package update

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/datastore"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/observability"
	"github.com/ogdrb/ogdrb/internal/observability/metrics"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Command creates the update command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Download directory exports into the local repeater store",
		Long: `Downloads the full repeater listing for every configured country (and
every configured US state) from the directory service and upserts the
records into the local database. Run it before the first export and
whenever the listings may have changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), settings)
		},
	}
}

func runUpdate(ctx context.Context, settings *conf.Settings) error {
	filter, err := repeaterbook.FilterFromSettings(settings)
	if err != nil {
		return err
	}

	client, err := repeaterbook.NewClient(repeaterbook.ConfigFromSettings(settings))
	if err != nil {
		return err
	}

	store := datastore.New(settings)
	if store == nil {
		return errors.Newf("no output database is enabled in the configuration").
			Category(errors.CategoryConfiguration).
			Component("main").
			Build()
	}

	if settings.Metrics.Enabled {
		collectors, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		client.SetMetrics(collectors.RepeaterBook)
		if ms, ok := store.(interface {
			SetMetrics(*metrics.DatastoreMetrics)
		}); ok {
			ms.SetMetrics(collectors.Datastore)
		}
	}

	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close the repeater store: %v\n", err)
		}
	}()

	fmt.Printf("Downloading exports for %d countries...\n", len(filter.Countries))
	records, err := client.ExportAll(ctx, filter)
	if err != nil {
		return err
	}

	written, err := store.Populate(ctx, records)
	if err != nil {
		return err
	}

	total, err := store.CountRepeaters(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Stored %d records (%d written), %d total in the local store\n",
		len(records), written, total)
	return nil
}
