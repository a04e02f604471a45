// =============================================================================
// DFP/ITR Reader - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dfpitr)
//   ├── readCmd     (dfpitr read)
//   ├── balancesCmd (dfpitr balances <archive>)
//   ├── layoutsCmd  (dfpitr layouts <archive>)
//   └── versionCmd  (dfpitr version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   call setup to load the configuration and build the logger.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "dfpitr",
	Short: "DFP/ITR Reader - Read CVM financial statement archives",
	Long: `DFP/ITR Reader reads the yearly (DFP) and quarterly (ITR) financial
statement archives published by the CVM. Each archive holds one head file and
one file per statement kind; the reader reassembles every filing, matches its
balance sheet and income statement against the chart-of-accounts layouts in
force at the time, and exports the result as XML.

Example Usage:
  dfpitr read                                   # Process every archive in the input directory
  dfpitr read --file dfp_cia_aberta_2023.zip    # Process one archive
  dfpitr balances dfp_cia_aberta_2023.zip       # Print the consolidated balances
  dfpitr layouts --kind DRE itr_cia_aberta_2023.zip`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main(). An interrupt
// cancels the context of the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// setup loads the configuration and builds the logger. Log lines go to
// stderr so that command output on stdout stays clean.
func setup() (*config.MainConfig, *slog.Logger, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logging.New(os.Stderr, level, cfg.LogFormat), nil
}
