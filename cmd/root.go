package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/idm-go/idm/logger"
	"github.com/idm-go/idm/ui"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "idm",
		Short:        "Hand downloads to Internet Download Manager from the command line",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetVerbose(flags.Verbose)
			if flags.Verbose {
				logger.SetLogger(logger.New(true))
			}
		},
	}

	root.Version = version
	root.SetVersionTemplate("idm {{.Version}} (" + commit + ", " + date + ")\n")

	flags.register(root)

	root.AddCommand(
		newDownloadCmd(flags),
		newBatchCmd(flags),
		newArgsCmd(flags),
	)
	return root
}

func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
