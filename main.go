// =============================================================================
// DFP/ITR Reader - Main Entry Point
// =============================================================================
//
// This is the main entry point for the DFP/ITR Reader CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   dfpitr read        - Export every archive in the input directory to XML
//   dfpitr balances    - Print the balances of the filings in one archive
//   dfpitr layouts     - List the account layouts found in one archive
//   dfpitr version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Archive reading, layout matching and export
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/dfpitr-reader/cmd"
)

func main() {
	cmd.Execute()
}
