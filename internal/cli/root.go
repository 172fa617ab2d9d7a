// Package cli implements the fncall command: inspect, document, check and export the
// functions declared in a catalog file.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skosovsky/fncall"
	"github.com/skosovsky/fncall/internal/catalog"
	"github.com/skosovsky/fncall/internal/config"
)

// app carries state shared by subcommands; it is filled in PersistentPreRunE.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	caller     *fncall.Caller
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "fncall",
		Short: "Inspect and check function declarations for language model tool calling",
		Long: `fncall loads a catalog of function declarations, validates it, renders documentation
and system prompts, checks argument payloads, and exports provider tool definitions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./fncall.yaml or $HOME/.fncall/fncall.yaml)")
	flags.StringP("catalog", "c", "functions.yaml", "function catalog (YAML or JSON)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Bool("allow-unknown", false, "accept arguments that are not declared")
	flags.Bool("strict", false, "export strict schemas (OpenAI Structured Outputs)")

	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newDocsCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newExportCommand(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	schemas, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}
	reg := fncall.NewRegistry(fncall.WithRegistryLogger(a.logger))
	if err := catalog.Register(reg, schemas, catalog.EchoHandler); err != nil {
		return err
	}
	a.logger.Debug("catalog loaded", "path", cfg.Catalog, "functions", reg.Len())

	opts := []fncall.CallerOption{fncall.WithLogger(a.logger)}
	if cfg.AllowUnknown {
		opts = append(opts, fncall.WithAllowUnknown())
	}
	a.caller = fncall.NewCaller(reg, opts...)
	return nil
}
