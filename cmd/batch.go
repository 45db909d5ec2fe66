package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idm-go/idm/batch"
	"github.com/idm-go/idm/ui"
)

func newBatchCmd(flags *globalFlags) *cobra.Command {
	var (
		concurrency int
		keepGoing   bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Add every download listed in a file to IDM",
		Long: `Add every download listed in a file to IDM.

Files ending in .txt or .list hold one URL per line (# starts a comment).
Any other file is a JSON array (comments and trailing commas allowed):

  [
    {"url": "https://example.com/a.iso", "path": "D:\\ISO", "name": "a.iso"},
    {"url": "https://example.com/b.zip", "silent": true},
  ]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			ui.Step(1, 2, "Reading batch file")
			cfg, err := flags.resolve(cmd)
			if err != nil {
				ui.ErrorMsg("Invalid configuration", err)
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if err := cfg.Validate(); err != nil {
				ui.ErrorMsg("Invalid configuration", err)
				return err
			}

			jobs, err := batch.ParseFile(args[0])
			if err != nil {
				ui.ErrorMsg("Failed to read batch file", err)
				return err
			}
			ui.Detail(fmt.Sprintf("Found %d downloads", len(jobs)))

			if len(jobs) == 0 {
				ui.WarnMsg("Nothing to download")
				return nil
			}

			if dryRun {
				ui.Println()
				ui.Println(ui.Bold.Render("Dry run mode - IDM will not be started"))
				ui.Println()
				for _, job := range jobs {
					ui.CommandLine(batch.BuildRequest(cfg, job).String())
				}
				return nil
			}

			ui.Step(2, 2, "Handing downloads to IDM")
			opts := batch.Options{
				Concurrency: cfg.Concurrency,
				KeepGoing:   keepGoing,
				OnDone: func(r batch.Result) {
					if r.Err != nil {
						ui.Detail(fmt.Sprintf("%s %s", ui.Error.Render("✗"), r.Job.URL))
						return
					}
					ui.Detail(fmt.Sprintf("%s %s", ui.Success.Render("✓"), r.Job.URL))
				},
			}

			var results []batch.Result
			err = ui.RunWithSpinner(fmt.Sprintf("Running %d downloads...", len(jobs)), func() error {
				var runErr error
				results, runErr = batch.Run(cmd.Context(), cfg, jobs, opts)
				return runErr
			})

			printBatchSummary(results, time.Since(start))
			if err != nil {
				reportRunError(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "how many IDMan.exe processes may run at once")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue with the remaining downloads after a failure")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the IDM command lines without running them")
	return cmd
}

func printBatchSummary(results []batch.Result, duration time.Duration) {
	var sent, failed, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
		default:
			sent++
		}
	}

	ui.Println()
	ui.SuccessMsg(fmt.Sprintf("Sent %d downloads to IDM (%s)", sent, ui.FormatDuration(duration)))
	if failed > 0 {
		ui.WarnMsg(fmt.Sprintf("%d failed", failed))
	}
	if skipped > 0 {
		ui.WarnMsg(fmt.Sprintf("%d skipped", skipped))
	}
}
