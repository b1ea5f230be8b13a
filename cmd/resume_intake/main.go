// Package main provides the entry point for the resume intake CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_intake",
	Short: "Resume intake: extract, repair and consolidate resumes",
	Long: `Resume intake turns resume documents (PDF, DOCX, HTML, plain text) into one
canonical structured resume. Each document is extracted by an LLM, the output is
repaired once when it is not well-formed, and all extractions are consolidated.

Configuration can be loaded from a JSON or YAML file using --config. Environment
variables override file values and command-line flags override both.`,
	SilenceUsage: true,
}

func init() {
	addGlobalFlags(rootCmd)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
