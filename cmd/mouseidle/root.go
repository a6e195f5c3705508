package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mouseidle/mouseidle/internal/config"
)

var Version = "dev"

// runDaemon is replaced in tests
var runDaemon = run

func newRootCmd() *cobra.Command {
	var keepOSAlive bool

	cmd := &cobra.Command{
		Use:     "mouseidle",
		Short:   "Measure how long the mouse stays idle",
		Version: Version,
		Long: `mouseidle watches the pointer and reports every period during which it did not move,
together with the running total of idle time.

With --keep-os-alive it also nudges the pointer by a few pixels while idle and puts it
back right away, so the session does not sleep or lock.

Stop it with Ctrl+C or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.KeepAlive.Enabled = keepOSAlive
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDaemon(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&keepOSAlive, "keep-os-alive", false, "jiggle the pointer while idle so the OS does not sleep or lock")
	return cmd
}

func execute(ctx context.Context, args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
