package main

import (
	"os"

	"github.com/kysee/privacy/config"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "privacyctl",
		Short:         "Builds and inspects private token proofs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return cfg.Apply(os.Stderr)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")

	root.AddCommand(
		a.keyCmd(),
		a.noteCmd(),
		a.versionCmd(),
		a.plaintextCmd(),
		a.confidentialCmd(),
		a.resultCmd(),
	)
	return root
}
