package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/opx/internal/formatter"
	"github.com/oakwood-commons/opx/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	Long: `config prints the merged configuration as YAML: the embedded defaults
with the user config file, if any, overlaid. The output is a valid config
file, so it doubles as a starting point for customization.`,
	Example: `
  opx config
  opx config > ~/.config/opx/config.yaml
  opx config --config custom.yaml`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadMergedConfig(resolveConfigPath(configFile))
		if err != nil {
			return err
		}

		doc := struct {
			App ui.AppConfig `yaml:"app"`
			UI  ui.Config    `yaml:"ui"`
		}{
			App: ui.AppConfig{About: cfg.About},
			UI: ui.Config{
				Theme:    cfg.Theme,
				Features: cfg.Features,
				Search:   cfg.Search,
				Themes:   cfg.Themes,
			},
		}

		out, err := formatter.FormatYAML(doc, formatter.YAMLFormatOptions{Indent: 2})
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
