package repeaterbook

import (
	"time"

	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/countries"
)

// ConfigFromSettings maps the directory section of the application settings
// onto a client config. Zero values fall back to the client defaults.
func ConfigFromSettings(settings *conf.Settings) Config {
	d := settings.Directory
	return Config{
		BaseURL:           d.BaseURL,
		AppName:           d.AppName,
		AppEmail:          d.AppEmail,
		Timeout:           time.Duration(d.TimeoutSeconds) * time.Second,
		CacheTTL:          time.Duration(d.CacheTTLMinutes) * time.Minute,
		RequestsPerMinute: d.RequestsPerMinute,
		MaxConcurrent:     d.MaxConcurrent,
	}
}

// FilterFromSettings resolves the configured country codes into a validated
// export filter.
func FilterFromSettings(settings *conf.Settings) (ExportFilter, error) {
	resolved, err := countries.LookupAll(settings.Export.Countries)
	if err != nil {
		return ExportFilter{}, err
	}
	filter := ExportFilter{
		Countries:  resolved,
		USStateIDs: settings.Export.USStates,
	}
	if err := filter.Validate(); err != nil {
		return ExportFilter{}, err
	}
	return filter, nil
}
