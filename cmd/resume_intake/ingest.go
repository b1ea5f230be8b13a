package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-intake/internal/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <sourceId> [file]",
	Short: "Store a source document's text",
	Long: `Load a resume document (.pdf, .docx, .html, .txt, .md) or pasted text and store
its cleaned text as the raw text of a configured source.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

var ingestText string

func init() {
	ingestCmd.Flags().StringVarP(&ingestText, "text", "t", "", "Text to store instead of a file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		return a.ingest(ctx, args, ingestText)
	})
}

func (a *app) ingest(ctx context.Context, args []string, text string) error {
	sourceID := args[0]
	if _, ok := a.cfg.Mapping(sourceID); !ok {
		return fmt.Errorf("unknown source %q", sourceID)
	}

	var (
		meta *ingestion.Metadata
		err  error
	)
	switch {
	case len(args) == 2 && text != "":
		return fmt.Errorf("a file and --text are mutually exclusive; provide only one")
	case len(args) == 2:
		meta, err = ingestion.IngestFile(ctx, a.store, sourceID, args[1])
	case text != "":
		meta, err = ingestion.IngestText(ctx, a.store, sourceID, text)
	default:
		return fmt.Errorf("either a file or --text must be provided")
	}
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", sourceID, err)
	}

	_, _ = fmt.Fprintf(a.out, "Stored %s (%s, %d characters, sha256 %s)\n", sourceID, meta.Format, meta.Characters, meta.Hash[:12])
	return nil
}
