package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfgFile stores an optional explicit path to a config file (if not
// provided we try ./ductc.config.{json,yaml,toml} by default).
var cfgFile string

var (
	outputDir string
	watch     bool
)

var rootCmd = &cobra.Command{
	Use:   "ductc <entrypoint>",
	Short: "Bundle a CommonJS/ESM entrypoint into a single chunk",
	Args:  cobra.ExactArgs(1),
	// PersistentPreRunE executes before RunE; we use it to load config/env,
	// the same split the pack's other cobra CLIs use.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(".")
			viper.SetConfigName("ductc.config")
		}

		viper.SetEnvPrefix("DUCTC")
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context(), args[0], viper.GetString("output-dir"), viper.GetBool("watch"))
	},
}

// Execute is called from main.go and starts the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ductc.config.{json,yaml,toml})")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "dist", "directory the chunk is written to")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "rebuild whenever a module in the graph changes")

	_ = viper.BindPFlag("output-dir", rootCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
}
