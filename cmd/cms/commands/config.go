package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	Service        string `json:"service,omitempty"          yaml:"service,omitempty"`
	APIKey         string `json:"api_key,omitempty"          yaml:"api_key,omitempty"`
	WriteAPIKey    string `json:"write_api_key,omitempty"    yaml:"write_api_key,omitempty"`
	GlobalDraftKey string `json:"global_draft_key,omitempty" yaml:"global_draft_key,omitempty"`
	APIHost        string `json:"api_host,omitempty"         yaml:"api_host,omitempty"`
	BaseURL        string `json:"base_url,omitempty"         yaml:"base_url,omitempty"`
	Output         string `json:"output,omitempty"           yaml:"output,omitempty"`
	Transport      string `json:"transport,omitempty"        yaml:"transport,omitempty"`
	Schema         string `json:"schema,omitempty"           yaml:"schema,omitempty"`
	NATSURL        string `json:"nats_url,omitempty"         yaml:"nats_url,omitempty"`
}

// secretKeys are masked on display and may be entered at a prompt.
var secretKeys = map[string]bool{
	KeyAPIKey:         true,
	KeyWriteAPIKey:    true,
	KeyGlobalDraftKey: true,
}

// field returns the setting stored under key.
func (c *Config) field(key string) (*string, bool) {
	fields := map[string]*string{
		KeyService:        &c.Service,
		KeyAPIKey:         &c.APIKey,
		KeyWriteAPIKey:    &c.WriteAPIKey,
		KeyGlobalDraftKey: &c.GlobalDraftKey,
		KeyAPIHost:        &c.APIHost,
		KeyBaseURL:        &c.BaseURL,
		KeyOutput:         &c.Output,
		KeyTransport:      &c.Transport,
		KeySchema:         &c.Schema,
		KeyNATSURL:        &c.NATSURL,
	}

	value, ok := fields[key]

	return value, ok
}

// masked returns a copy safe to display.
func (c Config) masked() Config {
	for key := range secretKeys {
		if value, _ := c.field(key); *value != "" {
			*value = constants.MaskedSecret
		}
	}

	return c
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the service name, API keys and output settings stored in ~/.cms/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged. Keys are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().masked()

			return renderOutput(cmd.OutOrStdout(), config, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.Header("Key", "Value")

				for _, key := range configKeys() {
					value, _ := config.field(key)

					display := *value
					if display == "" {
						display = constants.NotAvailable
					}

					_ = table.Append(key, display)
				}

				return table.Render()
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: service, api_key, write_api_key,
global_draft_key, api_host, base_url, output, transport, schema, nats_url.

When VALUE is omitted for a key setting, it is read from a hidden prompt.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := normalizeKey(args[0])

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				prompted, err := promptSecret(cmd, key)
				if err != nil {
					return err
				}

				value = prompted
			}

			if strings.TrimSpace(value) == "" {
				return constants.ErrEmptyKeyValue
			}

			return updateConfigFile(func(config *Config) error {
				field, ok := config.field(key)
				if !ok {
					return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
				}

				*field = strings.TrimSpace(value)

				display := *field
				if secretKeys[key] {
					display = constants.MaskedSecret
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, display)

				return nil
			})
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := normalizeKey(args[0])

			return updateConfigFile(func(config *Config) error {
				field, ok := config.field(key)
				if !ok {
					return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
				}

				*field = ""

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

				return nil
			})
		},
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func configKeys() []string {
	keys := []string{
		KeyService, KeyAPIKey, KeyWriteAPIKey, KeyGlobalDraftKey, KeyAPIHost,
		KeyBaseURL, KeyOutput, KeyTransport, KeySchema, KeyNATSURL,
	}
	sort.Strings(keys)

	return keys
}

func promptSecret(cmd *cobra.Command, key string) (string, error) {
	if !secretKeys[key] {
		return "", fmt.Errorf("%w: %s needs a value", constants.ErrEmptyKeyValue, key)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", key)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	return string(secret), nil
}

// loadConfig returns the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		Service:        viper.GetString(KeyService),
		APIKey:         viper.GetString(KeyAPIKey),
		WriteAPIKey:    viper.GetString(KeyWriteAPIKey),
		GlobalDraftKey: viper.GetString(KeyGlobalDraftKey),
		APIHost:        viper.GetString(KeyAPIHost),
		BaseURL:        viper.GetString(KeyBaseURL),
		Output:         viper.GetString(KeyOutput),
		Transport:      viper.GetString(KeyTransport),
		Schema:         viper.GetString(KeySchema),
		NATSURL:        viper.GetString(KeyNATSURL),
	}
}

// configFilePath returns the file in use, or ~/.cms/config.yml.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".cms", "config.yml"), nil
}

// updateConfigFile applies fn to the stored configuration only, so values
// coming from flags or the environment are never written to disk.
func updateConfigFile(fn func(config *Config) error) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	config := &Config{}

	// configFile is either chosen by the user or built from the home directory
	// #nosec G304
	data, err := os.ReadFile(configFile)

	switch {
	case err == nil:
		err = yaml.Unmarshal(data, config)
		if err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = fn(config)
	if err != nil {
		return err
	}

	return saveConfigStruct(configFile, config)
}

func saveConfigStruct(configFile string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
