// Package cli implements the rosario command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/config"
	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/logging"
)

var (
	cfgFile        string
	jsonOutput     bool
	jsonlOutput    bool
	noProgress     bool
	nonInteractive bool
	logLevel       string

	appConfig *config.Config
	logger    = zerolog.Nop()

	version = "dev"

	// terminalDetector reports whether stdin and stdout are a terminal.
	terminalDetector = hasTTY
)

var rootCmd = &cobra.Command{
	Use:           "rosario",
	Short:         "Guided Rosary recitation",
	Long:          "Build and play the Rosary as a sequence of recorded prayers, alone or in call-and-response.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput && jsonlOutput {
			return fmt.Errorf("--json and --jsonl are mutually exclusive")
		}
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/rosario/config.yaml)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	flags.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// Options configures Execute.
type Options struct {
	Version string
	// IsTerminal overrides TTY detection.
	IsTerminal func() bool
}

// Execute runs the root command.
func Execute(opts Options) error {
	if opts.Version != "" {
		version = opts.Version
	}
	if opts.IsTerminal != nil {
		terminalDetector = opts.IsTerminal
	}
	rootCmd.Version = version
	return rootCmd.Execute()
}

func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	l, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	return nil
}

// GetConfig returns the loaded configuration, or the defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func openDatabase() (*db.DB, error) {
	cfg := GetConfig()
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.MigrateUp(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput writes v as JSON (indented) or JSON lines. With --jsonl a
// slice is written one element per line.
func WriteOutput(out io.Writer, v any) error {
	if IsJSONLOutput() {
		enc := json.NewEncoder(out)
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				if err := enc.Encode(rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
		return enc.Encode(v)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PreflightError is a user-facing error with a hint and a suggested command.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
	// Err is the underlying cause, if any.
	Err error
}

func (e *PreflightError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\nHint: " + e.Hint
	}
	if e.NextStep != "" {
		msg += "\nNext: " + e.NextStep
	}
	return msg
}

func (e *PreflightError) Unwrap() error {
	return e.Err
}
