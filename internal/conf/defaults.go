package conf

import "github.com/spf13/viper"

// defaultSettings returns the settings written to a fresh config file.
func defaultSettings() *Settings {
	return &Settings{
		Main: MainSettings{
			Name: "ogdrb",
			Log: LogConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Directory: DirectorySettings{
			BaseURL:           "https://www.repeaterbook.com/api",
			AppName:           "ogdrb",
			TimeoutSeconds:    60,
			CacheTTLMinutes:   360,
			RequestsPerMinute: 10,
			MaxConcurrent:     4,
		},
		Codeplug: CodeplugSettings{
			MaxChannels:        1024,
			MaxZones:           68,
			MaxChannelsPerZone: 80,
			MaxNameLength:      16,
			OutputDir:          "codeplug",
		},
		Output: OutputSettings{
			SQLite: SQLiteSettings{
				Enabled: true,
				Path:    "repeaters.db",
			},
			MySQL: MySQLSettings{
				Host: "localhost",
				Port: "3306",
			},
		},
		Metrics: MetricsSettings{
			ListenAddr: "localhost:9090",
		},
	}
}

// setDefaultConfig registers every default with viper so partial config
// files inherit the rest.
func setDefaultConfig() {
	d := defaultSettings()

	viper.SetDefault("debug", false)
	viper.SetDefault("main.name", d.Main.Name)
	viper.SetDefault("main.log.maxsizemb", d.Main.Log.MaxSizeMB)
	viper.SetDefault("main.log.maxbackups", d.Main.Log.MaxBackups)
	viper.SetDefault("main.log.maxagedays", d.Main.Log.MaxAgeDays)

	viper.SetDefault("directory.baseurl", d.Directory.BaseURL)
	viper.SetDefault("directory.appname", d.Directory.AppName)
	viper.SetDefault("directory.appemail", d.Directory.AppEmail)
	viper.SetDefault("directory.timeoutseconds", d.Directory.TimeoutSeconds)
	viper.SetDefault("directory.cachettlminutes", d.Directory.CacheTTLMinutes)
	viper.SetDefault("directory.requestsperminute", d.Directory.RequestsPerMinute)
	viper.SetDefault("directory.maxconcurrent", d.Directory.MaxConcurrent)

	viper.SetDefault("export.countries", []string{})
	viper.SetDefault("export.usstates", []string{})

	viper.SetDefault("codeplug.maxchannels", d.Codeplug.MaxChannels)
	viper.SetDefault("codeplug.maxzones", d.Codeplug.MaxZones)
	viper.SetDefault("codeplug.maxchannelsperzone", d.Codeplug.MaxChannelsPerZone)
	viper.SetDefault("codeplug.maxnamelength", d.Codeplug.MaxNameLength)
	viper.SetDefault("codeplug.outputdir", d.Codeplug.OutputDir)

	viper.SetDefault("output.sqlite.enabled", d.Output.SQLite.Enabled)
	viper.SetDefault("output.sqlite.path", d.Output.SQLite.Path)
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.host", d.Output.MySQL.Host)
	viper.SetDefault("output.mysql.port", d.Output.MySQL.Port)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listenaddr", d.Metrics.ListenAddr)
}
