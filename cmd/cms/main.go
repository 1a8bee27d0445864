package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/cms-client/cmd/cms/commands"
	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cms",
	Short: "Headless CMS content API CLI",
	Long: `A command-line interface for a headless CMS content API.

Read, create, replace, update and delete records of any endpoint. Reads use
the API key, writes use the write API key; both can come from flags, CMS_*
environment variables, a .env file or ~/.cms/config.yml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.cms/config.yml)")
	rootCmd.PersistentFlags().StringP("service", "s", "", "service name (the API subdomain)")
	rootCmd.PersistentFlags().String("api-key", "", "read API key")
	rootCmd.PersistentFlags().String("write-api-key", "", "write API key")
	rootCmd.PersistentFlags().String("global-draft-key", "", "global draft key, sent with --global-key")
	rootCmd.PersistentFlags().String("api-host", "", "API domain (default "+constants.DefaultAPIHost+")")
	rootCmd.PersistentFlags().String("base-url", "", "override scheme and host, e.g. http://127.0.0.1:8080")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().String("transport", "retryable", "HTTP transport (retryable, resty)")
	rootCmd.PersistentFlags().String("schema", "", "schema file (YAML or TOML) to validate requests against")
	rootCmd.PersistentFlags().String("nats-url", "", "publish write events to this NATS server")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "per-request timeout")
	rootCmd.PersistentFlags().BoolP("debug", "v", false, "log requests and responses to stderr")

	// Bind flags to viper
	bindings := map[string]string{
		commands.KeyConfig:         "config",
		commands.KeyService:        "service",
		commands.KeyAPIKey:         "api-key",
		commands.KeyWriteAPIKey:    "write-api-key",
		commands.KeyGlobalDraftKey: "global-draft-key",
		commands.KeyAPIHost:        "api-host",
		commands.KeyBaseURL:        "base-url",
		commands.KeyOutput:         "output",
		commands.KeyTransport:      "transport",
		commands.KeySchema:         "schema",
		commands.KeyNATSURL:        "nats-url",
		commands.KeyTimeout:        "timeout",
		commands.KeyDebug:          "debug",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewReplaceCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewPurgeCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
}

func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfgFile := viper.GetString(commands.KeyConfig)

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.cms/config.yml
		viper.AddConfigPath(filepath.Join(home, ".cms"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("CMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool(commands.KeyDebug) {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
