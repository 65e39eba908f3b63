// Package conf loads and validates the application settings from a YAML
// configuration file via viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ogdrb/ogdrb/internal/geo"
)

// LogConfig holds file logger rotation settings.
type LogConfig struct {
	MaxSizeMB  int `yaml:"maxsizemb" mapstructure:"maxsizemb"`
	MaxBackups int `yaml:"maxbackups" mapstructure:"maxbackups"`
	MaxAgeDays int `yaml:"maxagedays" mapstructure:"maxagedays"`
}

// MainSettings holds application-wide settings.
type MainSettings struct {
	Name string    `yaml:"name" mapstructure:"name"`
	Log  LogConfig `yaml:"log" mapstructure:"log"`
}

// DirectorySettings configures the repeater directory client.
type DirectorySettings struct {
	BaseURL           string `yaml:"baseurl" mapstructure:"baseurl"`
	AppName           string `yaml:"appname" mapstructure:"appname"`
	AppEmail          string `yaml:"appemail" mapstructure:"appemail"`
	TimeoutSeconds    int    `yaml:"timeoutseconds" mapstructure:"timeoutseconds"`
	CacheTTLMinutes   int    `yaml:"cachettlminutes" mapstructure:"cachettlminutes"`
	RequestsPerMinute int    `yaml:"requestsperminute" mapstructure:"requestsperminute"`
	MaxConcurrent     int    `yaml:"maxconcurrent" mapstructure:"maxconcurrent"`
}

// ZoneSetting is one named circular search zone from the config file.
type ZoneSetting struct {
	Name   string  `yaml:"name" mapstructure:"name"`
	Lat    float64 `yaml:"lat" mapstructure:"lat"`
	Lon    float64 `yaml:"lon" mapstructure:"lon"`
	Radius float64 `yaml:"radius" mapstructure:"radius"`
	Unit   string  `yaml:"unit" mapstructure:"unit"`
}

// Area converts the setting into a search area.
func (z ZoneSetting) Area() geo.SearchArea {
	unit := geo.Unit(z.Unit)
	if z.Unit == "" {
		unit = geo.Kilometers
	}
	return geo.SearchArea{
		Center: geo.Coordinate{Lat: z.Lat, Lon: z.Lon},
		Radius: z.Radius,
		Unit:   unit,
	}
}

// ExportSettings scopes which records are downloaded and which zones are
// built.
type ExportSettings struct {
	Countries []string      `yaml:"countries" mapstructure:"countries"`
	USStates  []string      `yaml:"usstates" mapstructure:"usstates"`
	Zones     []ZoneSetting `yaml:"zones" mapstructure:"zones"`
}

// CodeplugSettings overrides the target capacity profile and output location.
type CodeplugSettings struct {
	MaxChannels        int    `yaml:"maxchannels" mapstructure:"maxchannels"`
	MaxZones           int    `yaml:"maxzones" mapstructure:"maxzones"`
	MaxChannelsPerZone int    `yaml:"maxchannelsperzone" mapstructure:"maxchannelsperzone"`
	MaxNameLength      int    `yaml:"maxnamelength" mapstructure:"maxnamelength"`
	OutputDir          string `yaml:"outputdir" mapstructure:"outputdir"`
}

// SQLiteSettings configures the sqlite repeater store.
type SQLiteSettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// MySQLSettings configures the mysql repeater store.
type MySQLSettings struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
}

// OutputSettings selects the local store backend.
type OutputSettings struct {
	SQLite SQLiteSettings `yaml:"sqlite" mapstructure:"sqlite"`
	MySQL  MySQLSettings  `yaml:"mysql" mapstructure:"mysql"`
}

// MetricsSettings configures the optional prometheus endpoint.
type MetricsSettings struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	ListenAddr string `yaml:"listenaddr" mapstructure:"listenaddr"`
}

// Settings is the full application configuration.
type Settings struct {
	Debug     bool              `yaml:"debug" mapstructure:"debug"`
	Main      MainSettings      `yaml:"main" mapstructure:"main"`
	Directory DirectorySettings `yaml:"directory" mapstructure:"directory"`
	Export    ExportSettings    `yaml:"export" mapstructure:"export"`
	Codeplug  CodeplugSettings  `yaml:"codeplug" mapstructure:"codeplug"`
	Output    OutputSettings    `yaml:"output" mapstructure:"output"`
	Metrics   MetricsSettings   `yaml:"metrics" mapstructure:"metrics"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings value.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with defaults and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("OGDRB")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a default config file so the first run leaves
// something editable behind.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaults := defaultSettings()
	yamlData, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, yamlData, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the locations searched for config.yaml, in
// priority order: working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return paths, nil //nolint:nilerr // fall back to the working directory only
	}

	return append(paths, filepath.Join(userConfigDir, "ogdrb")), nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	return GetSettings()
}

// ZoneAreas returns the configured zones as name/area pairs in file order.
func (s *Settings) ZoneAreas() []NamedArea {
	areas := make([]NamedArea, 0, len(s.Export.Zones))
	for _, z := range s.Export.Zones {
		areas = append(areas, NamedArea{Name: z.Name, Area: z.Area()})
	}
	return areas
}

// NamedArea pairs a caller-chosen zone label with its search area.
type NamedArea struct {
	Name string
	Area geo.SearchArea
}
