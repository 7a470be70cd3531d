package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"

	"github.com/rezonia/etims-client/internal/config"
	"github.com/rezonia/etims-client/internal/logging"
	"github.com/rezonia/etims-client/internal/validation"
	"github.com/rezonia/etims-client/pkg/etims"
)

var (
	version = "1.0.0"

	// Global flags
	configFile   string
	envName      string
	schema       string
	verbose      bool
	outputFormat string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "etims",
	Short: "KRA eTIMS OSCU compliance client",
	Long: `etims validates and submits OSCU messages to the KRA eTIMS API.

Payloads are checked against their message contract before any network
call. Access tokens are cached and renewed once when the API rejects them.

Configuration is read from --config (YAML or JSON) and KRA_* variables:
  KRA_ENV, KRA_CONSUMER_KEY, KRA_CONSUMER_SECRET,
  KRA_TIN, KRA_BHF_ID, KRA_CMC_KEY, KRA_TOKEN_CACHE

Examples:
  # Check a sales transaction offline
  etims validate saveTrnsSalesOsdc sale.json

  # Fetch a token and print its expiry
  etims token

  # Initialize the device, then submit a sale
  etims send saveTrnsSalesOsdc sale.json --init init.json

  # Run the local compliance gateway
  etims serve --address :8080`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", "", "Environment: sbx or prod (env: KRA_ENV)")
	rootCmd.PersistentFlags().StringVar(&schema, "schema", "", "Contract registry version (1 legacy, 2 current)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// loadConfig resolves the configuration with flags taking precedence
func loadConfig() (config.Config, error) {
	lookup := func(key string) (string, bool) {
		if key == config.EnvName && envName != "" {
			return envName, true
		}
		return os.LookupEnv(key)
	}

	opts := []config.LoadOption{config.WithLookup(lookup)}
	if configFile != "" {
		opts = append(opts, config.WithFile(configFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, err
	}
	if schema != "" {
		cfg.Schema.Version = schema
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (glog.Logger, error) {
	return logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func newClient(ctx context.Context) (*etims.Client, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, cfg, err
	}
	client, err := etims.New(ctx, cfg, etims.WithLogger(logger))
	return client, cfg, err
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// readPayload reads a JSON object from path, or stdin when path is "" or "-"
func readPayload(path string) (map[string]any, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	payload, err := validation.DecodePayload(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return payload, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func tableOutput() bool {
	return strings.EqualFold(outputFormat, "table")
}
