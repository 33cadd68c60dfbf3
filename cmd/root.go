/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "golbm",
	Short: "Lattice Boltzmann (D2Q9) two dimensional flow solver",
	Long: `Lattice Boltzmann (D2Q9) two dimensional flow solver.

Prepare a scene from a YAML configuration and a domain bitmap with "prepare",
then run it with "2D", writing image frames, field streams and a history of
mass and speed diagnostics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := NewLogger(os.Stderr, viper.GetString("logFormat"), viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.golbm.yaml)")
	rootCmd.PersistentFlags().String("logFormat", "text", "log output format, text or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log per frame diagnostics")
	_ = viper.BindPFlag("logFormat", rootCmd.PersistentFlags().Lookup("logFormat"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".golbm" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".golbm")
	}

	viper.SetEnvPrefix("GOLBM")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// NewLogger builds the structured logger used by all commands.
func NewLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	var (
		opts = &slog.HandlerOptions{Level: slog.LevelInfo}
	)
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q, must be text or json", format)
}
