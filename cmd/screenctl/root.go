package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute builds and runs the screenctl root command. screenctl is a
// thin, non-interactive entry point around the core: it has no wizard,
// no progress bar, and renders no report of its own.
func Execute(ctx context.Context) error {
	root := &cobra.Command{Use: "screenctl", Short: "Batch real-estate submarket screening"}
	root.AddCommand(runCmd(ctx))
	log.Info().Msg("screenctl starting")
	return root.ExecuteContext(ctx)
}
