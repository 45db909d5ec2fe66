package cmd

import (
	"github.com/spf13/cobra"

	"github.com/idm-go/idm/config"
	"github.com/idm-go/idm/ui"
)

// globalFlags are shared by every subcommand and override config/env values
// when given explicitly.
type globalFlags struct {
	ConfigFile string
	EnvFile    string
	IDMPath    string
	Silent     bool
	Path       string
	Verbose    bool
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.ConfigFile, "config", "", "config file (default: <user config dir>/idm/config.jsonc)")
	pf.StringVar(&f.EnvFile, "env-file", "", "env file to load (default: .env)")
	pf.StringVar(&f.IDMPath, "idm-path", "", "full path to IDMan.exe")
	pf.BoolVarP(&f.Silent, "silent", "s", false, "don't let IDM ask any questions")
	pf.StringVarP(&f.Path, "path", "p", "", "directory to save downloads in")
	pf.BoolVarP(&f.Verbose, "verbose", "v", false, "show verbose output")
}

// resolve loads the config and applies flags the user actually set.
func (f *globalFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:    f.ConfigFile,
		EnvFile: f.EnvFile,
	})
	if err != nil {
		return config.Config{}, err
	}

	fs := cmd.Flags()
	if fs.Changed("idm-path") {
		cfg.IDMPath = f.IDMPath
	}
	if fs.Changed("silent") {
		cfg.Silent = f.Silent
	}
	if fs.Changed("path") {
		cfg.Path = f.Path
	}

	ui.Verbosef("idm path: %s", cfg.IDMPath)
	ui.Verbosef("mode: %s", cfg.Mode())
	if cfg.Path != "" {
		ui.Verbosef("download dir: %s", cfg.Path)
	}
	return cfg, cfg.Validate()
}
