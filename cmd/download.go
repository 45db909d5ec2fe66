package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idm-go/idm/idman"
	"github.com/idm-go/idm/ui"
)

const idmPathHint = "Point --idm-path, IDM_PATH or \"idmPath\" in the config file at IDMan.exe"

func newDownloadCmd(flags *globalFlags) *cobra.Command {
	var (
		name   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Add one download to IDM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			cfg, err := flags.resolve(cmd)
			if err != nil {
				ui.ErrorMsg("Invalid configuration", err)
				return err
			}

			req := cfg.Apply(idman.New()).SetSourceURL(args[0])
			if cmd.Flags().Changed("name") {
				req.SetDestinationFileName(name)
			}

			if dryRun {
				ui.CommandLine(req.String())
				return nil
			}

			ui.Verbosef("running: %s", req.String())
			err = ui.RunWithSpinner("Handing download to IDM...", func() error {
				return req.RunContext(cmd.Context())
			})
			if err != nil {
				reportRunError(err)
				return err
			}

			ui.SuccessMsg(fmt.Sprintf("Sent %s to IDM (%s)", ui.Primary.Render(args[0]), ui.FormatDuration(time.Since(start))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "file name to save as, including the extension")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the IDM command line without running it")
	return cmd
}

func reportRunError(err error) {
	var spawnErr *idman.SpawnError
	if errors.As(err, &spawnErr) {
		ui.ErrorMsg("Failed to start IDM", err, idmPathHint)
		return
	}
	ui.ErrorMsg("IDM run interrupted", err)
}
