package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/dicom2rdf/config"
)

func prefixesCmd() *cobra.Command {
	var configPath, qleverfileUI string

	cmd := &cobra.Command{
		Use:   "prefixes",
		Short: "Write the configured prefixes into a Qleverfile-ui.yml",
		Long: `Sets config.backend.suggestedPrefixes in a Qleverfile-ui.yml to the
Turtle prefix declarations of every configured vocabulary, so the QLever UI
abbreviates IRIs the same way the converter does.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(nil).Load(configPath, nil)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.WriteSuggestedPrefixes(cfg, qleverfileUI); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d prefixes to %s\n", len(cfg.PrefixPairs()), qleverfileUI)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML or TOML)")
	cmd.Flags().StringVar(&qleverfileUI, "qleverfile-ui", "", "Path to Qleverfile-ui.yml")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("qleverfile-ui")
	return cmd
}
