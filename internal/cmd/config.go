package cmd

import (
	"github.com/jisaac01/health-stats/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config [input]",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			viper.Set("input", args[0])
		}
		cfg, err := config.Decode(viper.GetViper())
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	addChartFlags(configCmd)
	configCmd.Flags().Duration("debounce", 0, "watch debounce")
	rootCmd.AddCommand(configCmd)
}
