/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/longkey1/ragchat/internal/ragchat/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "A terminal client for the RAG news chatbot",
	Long: `ragchat talks to a RAG news chat backend from the terminal.
It keeps one chat session per machine, restores its history on startup and
shows answers as they stream in.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ragchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory supplies API_URL like the web build did
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("RAGCHAT")
	viper.AutomaticEnv()

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "ragchat")

	defaultConfig := config.NewDefaultConfig(userConfigDir)

	// Set default values. store_path stays empty so the database follows the config file.
	viper.SetDefault("api_url", defaultConfig.APIURL)
	viper.SetDefault("reveal_interval_ms", defaultConfig.RevealIntervalMs)
	viper.SetDefault("request_timeout_seconds", defaultConfig.RequestTimeoutSeconds)
	viper.SetDefault("markdown_style", defaultConfig.MarkdownStyle)
	viper.SetDefault("log_level", defaultConfig.LogLevel)

	// Bind environment variables
	viper.BindEnv("api_url", "RAGCHAT_API_URL", "API_URL")
	viper.BindEnv("store_path", "RAGCHAT_STORE_PATH")
	viper.BindEnv("log_level", "RAGCHAT_LOG_LEVEL")
	viper.BindEnv("log_file", "RAGCHAT_LOG_FILE")

	if verbose {
		viper.Set("log_level", "debug")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/ragchat",
			"/usr/local/etc/ragchat",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  RAGCHAT_API_URL / API_URL:", viper.GetString("api_url"))
		fmt.Fprintln(os.Stderr, "  RAGCHAT_STORE_PATH:", viper.GetString("store_path"))
		fmt.Fprintln(os.Stderr, "  RAGCHAT_LOG_FILE:", viper.GetString("log_file"))
	}
}
