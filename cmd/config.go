package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/longkey1/ragchat/internal/ragchat/config"
	"github.com/longkey1/ragchat/internal/ragchat/session"
)

const configFields = "configfile, api_url, store_path, reveal_interval_ms, request_timeout_seconds, markdown_style, log_level, log_file"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the .env file, the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  ragchat config                 # Show all configuration
  ragchat config api_url         # Show only the backend URL
  ragchat config store_path      # Show where the session ID is kept`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		storePath := cfg.StorePath
		if storePath == "" {
			storePath, err = session.DefaultStorePath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error resolving store path: %v\n", err)
				os.Exit(1)
			}
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "api_url", "apiurl":
				fmt.Println(cfg.APIURL)
			case "store_path", "storepath":
				fmt.Println(storePath)
			case "reveal_interval_ms":
				fmt.Println(cfg.RevealIntervalMs)
			case "request_timeout_seconds":
				fmt.Println(cfg.RequestTimeoutSeconds)
			case "markdown_style":
				fmt.Println(cfg.MarkdownStyle)
			case "log_level":
				fmt.Println(cfg.LogLevel)
			case "log_file":
				fmt.Println(cfg.LogFile)
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				os.Exit(1)
			}
			return
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("APIURL: %s\n", cfg.APIURL)
		fmt.Printf("StorePath: %s\n", storePath)
		fmt.Printf("RevealIntervalMs: %d\n", cfg.RevealIntervalMs)
		fmt.Printf("RequestTimeoutSeconds: %d\n", cfg.RequestTimeoutSeconds)
		fmt.Printf("MarkdownStyle: %s\n", cfg.MarkdownStyle)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		fmt.Printf("LogFile: %s\n", cfg.LogFile)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
