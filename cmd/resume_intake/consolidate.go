package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge every extracted document into the canonical resume",
	Long: `Merge every extracted document into the canonical resume.

Extraction records must already be in the store. With the default memory
store nothing survives between invocations, so either pass --file (which
ingests and extracts first) or use a persistent store driver.`,
	Args: cobra.NoArgs,
	RunE: runConsolidate,
}

var (
	consolidateExtract bool
	consolidateFiles   map[string]string
)

func init() {
	consolidateCmd.Flags().BoolVar(&consolidateExtract, "extract", false, "Run extract-all first")
	consolidateCmd.Flags().StringToStringVar(&consolidateFiles, "file", nil, "Ingest sourceId=path, then extract all before consolidating (repeatable, implies --extract)")
	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app) error {
		return a.consolidateWith(ctx, consolidateFiles, consolidateExtract)
	})
}

// consolidateWith ingests files, runs extract-all when asked (or when files
// were given) and then consolidates.
func (a *app) consolidateWith(ctx context.Context, files map[string]string, extractFirst bool) error {
	if err := a.ingestFiles(ctx, files); err != nil {
		return err
	}
	if extractFirst || len(files) > 0 {
		if _, err := a.extractAll(ctx); err != nil {
			return err
		}
	}
	return a.consolidate(ctx)
}

func (a *app) consolidate(ctx context.Context) error {
	res, err := a.coordinator.Consolidate(ctx, a.cfg.Mappings)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("consolidation: %w", res.Err)
	}
	for _, skipped := range res.Skipped {
		_, _ = fmt.Fprintf(a.out, "Skipped %s (not extracted yet)\n", skipped)
	}
	a.printer.PrintCanonical(res.Record)
	_, _ = fmt.Fprintln(a.out, res.Status)
	return nil
}
