package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/playarr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing playarr configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the default configuration",
	Long: `Dump the default configuration values in YAML format.

This shows all available configuration options with their default values.
You can redirect this output to a file to create a configuration template:

  playarr config dump > config.yaml

Configuration can be set via:
  - Config file (config.yaml, .playarr.yaml, /etc/playarr/config.yaml)
  - Environment variables (PLAYARR_SERVER_PORT, PLAYARR_DATABASE_DSN, etc.)
  - Command-line flags (for some options)

Environment variables use the PLAYARR_ prefix and underscores for nesting.
Example: server.port -> PLAYARR_SERVER_PORT`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// toMap converts a config struct to a map keyed by mapstructure tags,
// formatting durations and bitrates for human readability.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key := fieldType.Tag.Get("mapstructure")
		if key == "" {
			key = fieldType.Name
		}

		switch fv := field.Interface().(type) {
		case time.Duration:
			result[key] = fv.String()
		case config.BitRate:
			result[key] = fv.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	// Load with defaults only; no file argument means env vars still apply,
	// which is what an operator dumping their effective config wants.
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	yamlData, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	fmt.Println("# playarr Configuration File")
	fmt.Println("# ==========================")
	fmt.Println("#")
	fmt.Println("# All values shown below are defaults.")
	fmt.Println("# Duration format: 30s, 5m, 1h")
	fmt.Println("# Bitrate format: 3Mbps, 140Mbps, 20000000")
	fmt.Println("#")
	fmt.Println("# Environment variable overrides:")
	fmt.Println("#   PLAYARR_SERVER_HOST, PLAYARR_SERVER_PORT")
	fmt.Println("#   PLAYARR_DATABASE_DRIVER, PLAYARR_DATABASE_DSN")
	fmt.Println("#   PLAYARR_MEDIA_SERVER_BASE_URL, PLAYARR_MEDIA_SERVER_TOKEN")
	fmt.Println("#   PLAYARR_LOGGING_LEVEL, PLAYARR_LOGGING_FORMAT")
	fmt.Println("#   etc.")
	fmt.Println("#")
	fmt.Println("")
	fmt.Print(string(yamlData))

	return nil
}
