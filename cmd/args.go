package cmd

import (
	"github.com/spf13/cobra"

	"github.com/idm-go/idm/idman"
	"github.com/idm-go/idm/ui"
)

// newArgsCmd prints the IDM arguments one per line, for scripts that start
// IDMan.exe themselves.
func newArgsCmd(flags *globalFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "args <url>",
		Short: "Print the arguments IDM would be started with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			req := cfg.Apply(idman.New()).SetSourceURL(args[0])
			if cmd.Flags().Changed("name") {
				req.SetDestinationFileName(name)
			}

			for _, arg := range req.Args() {
				ui.Println(arg)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "file name to save as, including the extension")
	return cmd
}
