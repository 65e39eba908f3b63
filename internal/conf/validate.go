package conf

import (
	"github.com/ogdrb/ogdrb/internal/errors"
)

// ValidateSettings checks the loaded settings for inconsistencies that
// would only surface mid-run otherwise.
func ValidateSettings(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return errors.Newf("only one output database may be enabled").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return errors.Newf("output.sqlite.path is required when sqlite is enabled").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	if settings.Directory.TimeoutSeconds < 0 ||
		settings.Directory.CacheTTLMinutes < 0 ||
		settings.Directory.RequestsPerMinute < 0 ||
		settings.Directory.MaxConcurrent < 0 {
		return errors.Newf("directory settings must not be negative").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	cp := settings.Codeplug
	if cp.MaxChannels <= 0 || cp.MaxZones <= 0 || cp.MaxChannelsPerZone <= 0 || cp.MaxNameLength <= 0 {
		return errors.Newf("codeplug capacity limits must be positive").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	seen := make(map[string]bool, len(settings.Export.Zones))
	for _, zone := range settings.Export.Zones {
		if zone.Name == "" {
			return errors.Newf("zone names must not be empty").
				Category(errors.CategoryConfiguration).
				Component("conf").
				Build()
		}
		if seen[zone.Name] {
			return errors.Newf("duplicate zone name: %q", zone.Name).
				Category(errors.CategoryConfiguration).
				Component("conf").
				Build()
		}
		seen[zone.Name] = true

		if err := zone.Area().Validate(); err != nil {
			return errors.Newf("zone %q has an invalid search area: %w", zone.Name, err).
				Category(errors.CategoryConfiguration).
				Component("conf").
				Build()
		}
	}

	return nil
}
