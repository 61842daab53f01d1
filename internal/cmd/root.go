package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jisaac01/health-stats/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "healthplot",
	Short: "healthplot: charts for a symptom-tracking log",
	Long: `healthplot reads a symptom log (one JSON object per line, each with a
Timestamp and a score per symptom) and charts it: daily means as one bar
facet per symptom, or every sample as one line chart per symptom.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.healthplot.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".healthplot")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("healthplot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		cobra.CheckErr(fmt.Errorf("read config %s: %w", cfgFile, err))
	}
}

// bindFlags binds the flags of the command being run, so that the same key
// can be offered by several subcommands.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

// loadConfig applies the optional input argument and validates the result.
func loadConfig(args []string) (config.Config, error) {
	if len(args) > 0 {
		viper.Set("input", args[0])
	}
	return config.Load(viper.GetViper())
}
