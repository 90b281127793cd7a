package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexisbeaulieu97/xyzplot/internal/config"
)

type rootFlags struct {
	configPath string
	verbose    bool
	viper      *viper.Viper
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{viper: config.NewViper()}

	cmd := &cobra.Command{
		Use:           "xyzplot",
		Short:         "xyzplot fans a graph out over an XYZ parameter grid and tracks the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"config file (default: ./xyzplot.yaml, then ~/.config/xyzplot/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("output-dir", "", "Directory holding result folders")
	_ = flags.viper.BindPFlag("output_dir", cmd.PersistentFlags().Lookup("output-dir"))

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// app loads settings once flags are parsed. Commands call it from RunE so that flag
// bindings registered by subcommands are visible.
func (f *rootFlags) app(cmd *cobra.Command) (*AppContext, error) {
	settings, used, err := config.LoadSettings(f.viper, f.configPath)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(settings, f.verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if used != "" {
		log.WithField("config", used).Debug("settings loaded")
	}
	return &AppContext{Settings: settings, ConfigPath: used, Log: log}, nil
}
