package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/qrscan/internal/app"
	"github.com/five82/qrscan/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var prefsFlag string

	rootCmd := &cobra.Command{
		Use:           "qrscan",
		Short:         "Scan QR codes from a camera in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: strings.TrimSpace(configFlag),
				PrefsPath:  strings.TrimSpace(prefsFlag),
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&prefsFlag, "prefs", "", "Preferences file path")

	loadConfig := func() (config.Config, error) {
		return config.Load(strings.TrimSpace(configFlag))
	}

	rootCmd.AddCommand(newDecodeCommand(loadConfig))
	rootCmd.AddCommand(newHistoryCommand(loadConfig))

	return rootCmd
}
