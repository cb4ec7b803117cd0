package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/plantquery/plantquery/internal/config"
	"github.com/plantquery/plantquery/internal/logging"
	"github.com/plantquery/plantquery/internal/session"
	"github.com/plantquery/plantquery/internal/transport"
)

var (
	cfgFile    string
	backendURL string
	verbose    bool
	jsonOut    bool

	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plantquery",
	Short: "Ask questions about P&ID plant diagrams",
	Long: `PlantQuery uploads DEXPI P&ID diagrams to an analysis backend and lets
you interrogate them in plain language.

The backend parses each diagram into a component/connection graph and
answers questions about valves, pumps, tanks, instrumentation, flow
paths and subsystems. Sessions live on the backend; this client keeps a
local transcript mirror for the lifetime of the process.

Quick Start:
  plantquery upload plant.xml            # Start a session from a diagram
  plantquery chat <session-id>           # Ask questions interactively
  plantquery chat --file plant.xml       # Upload and chat in one go
  plantquery status                      # Check backend and AI availability
  plantquery export <session-id>         # Save the graph as GraphML

Configuration comes from the environment (BACKEND_URL, EXPORT_DIR, ...),
an optional .env file, or an explicit --config YAML/TOML file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML or TOML config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON output")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves configuration for a command invocation: an explicit
// --config file when given, the environment otherwise. A .env file in the
// working directory is layered under the environment first; flags win last.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.FromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.Must(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		// Command output owns stdout; logs go to stderr.
		OutputPaths: []string{"stderr"},
	})
}

// newSessionClient wires a transport and session client from configuration.
// The transport is returned alongside so commands can report breaker state.
func newSessionClient(cfg *config.Config, logger *logging.Logger) (*session.Client, *transport.Client) {
	tc := transport.New(transport.Options{
		BaseURL:          cfg.Backend.URL,
		Timeout:          cfg.Backend.RequestTimeout,
		RetryMax:         cfg.Backend.RetryMax,
		RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:   cfg.RateLimit.Burst,
		BreakerDisabled:  !cfg.Breaker.Enabled,
		BreakerThreshold: cfg.Breaker.Threshold,
		BreakerCooldown:  cfg.Breaker.Cooldown,
		UserAgent:        "plantquery/" + version,
	})

	client := session.New(tc, session.Options{
		Logger:         logger,
		IdleThreshold:  cfg.Session.IdleThreshold,
		ProbeTimeout:   cfg.Backend.ProbeTimeout,
		ExportDir:      cfg.Export.Dir,
		ExportCompress: cfg.Export.Compress,
	})
	return client, tc
}
