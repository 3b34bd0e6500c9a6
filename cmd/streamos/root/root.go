package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/config"
)

const Version = "0.1.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "streamos",
		Short:         "streamos: a gamified daily routine for streamers",
		Long:          "streamos tracks XP, levels, streaks and badges for a streamer's agenda, chores and studio pipeline.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML or TOML config file (default $STREAMOS_CONFIG_PATH)")

	load := func() (config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newStatusCmd(load),
		newXPCmd(load),
		newExportCmd(load),
		newImportCmd(load),
		newResetCmd(load),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}
