// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pipenv2uv CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from log_level before any subcommand runs.
var logger = slog.New(slog.DiscardHandler)

// rootCmd is the base command for the pipenv2uv CLI.
var rootCmd = &cobra.Command{
	Use:   "pipenv2uv",
	Short: "Convert Pipfile projects to uv pyproject.toml",
	Long: `pipenv2uv reads a Pipfile and writes an equivalent pyproject.toml for the
uv package manager: dependencies, the dev dependency group, package indexes
and the packages pinned to them.

Settings uv cannot express (SSL verification, pre-release allowance,
credentials in index URLs) are reported as warnings and left out.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", viper.GetString("log_level"), err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pipenv2uv.yaml or ~/.config/pipenv2uv/pipenv2uv.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pipenv2uv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pipenv2uv"))
		}
	}

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	meta := types.DefaultProjectMeta()
	viper.SetDefault("project.name", meta.Name)
	viper.SetDefault("project.version", meta.Version)
	viper.SetDefault("project.description", meta.Description)
	viper.SetDefault("project.readme", meta.Readme)
	viper.SetDefault("output.path", "")
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.docker", false)
	viper.SetDefault("strict", false)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "")
	viper.SetDefault("history.max_results", 20)

	viper.SetEnvPrefix("PIPENV2UV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
