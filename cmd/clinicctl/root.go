package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/dentalcare/internal/app"
	"github.com/jwalitptl/dentalcare/internal/config"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

type options struct {
	configDir string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "clinicctl",
		Short: "Administer the dental clinic store",
		Long: `clinicctl reads and writes the same store as the API server.

Configuration is loaded like the server's: config.yml from --config, "."
or "./config", then DENTALCARE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config", "", "directory containing config.yml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newSeedCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSnapshotCmd(opts),
		newStatsCmd(opts),
		newUsersCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// open loads configuration and wires the application. Logs go to stderr so
// stdout carries only command output.
func open(cmd *cobra.Command, opts *options) (*app.App, error) {
	var paths []string
	if opts.configDir != "" {
		paths = append(paths, opts.configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	// Seeding is an explicit command here.
	cfg.Clinic.Seed = false

	level := logger.WarnLevel
	if opts.verbose {
		level = logger.DebugLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     cmd.ErrOrStderr(),
	})
	return app.New(cmd.Context(), cfg, log)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
