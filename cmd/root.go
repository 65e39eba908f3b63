package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ogdrb/ogdrb/cmd/export"
	"github.com/ogdrb/ogdrb/cmd/update"
	"github.com/ogdrb/ogdrb/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ogdrb",
		Short: "Codeplug generator for repeater directory listings",
		Long: `ogdrb downloads amateur-radio repeater listings from the RepeaterBook
directory into a local database, then organizes the repeaters found inside
the configured geographic zones into an OpenGD77-compatible codeplug.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		update.Command(settings),
		export.Command(settings),
	)

	return rootCmd
}
