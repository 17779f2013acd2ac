package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/cnpjlookup/internal/config"
)

func configCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the target file may not exist yet
			src := *f
			src.configPath = ""
			cfg, err := loadConfig(cmd, src)
			if err != nil {
				return err
			}
			path, err := config.Save(cfg, f.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
