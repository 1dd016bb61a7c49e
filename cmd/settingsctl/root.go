package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config string
	url    string
	apiKey string
	user   string
	local  string
	tv     bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "settingsctl",
		Short:         "Edit backend settings and per-profile overrides",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ctx.logCloser = setupLogging(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.url, "url", "", "Backend base URL")
	pf.StringVar(&flags.apiKey, "api-key", "", "Backend API key")
	pf.StringVarP(&flags.user, "user", "u", "", "Profile whose overrides are edited")
	pf.StringVar(&flags.local, "local", "", "Edit the files in this backend data directory instead of calling the API")
	pf.BoolVar(&flags.tv, "tv", false, "Use the TV layout")

	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newSetCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))
	rootCmd.AddCommand(newMoveCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newBackupCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))

	return rootCmd
}
