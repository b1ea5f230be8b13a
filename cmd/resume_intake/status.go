package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the stored extraction records and canonical resume",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		return a.status(ctx)
	})
}

func (a *app) status(ctx context.Context) error {
	for _, m := range a.cfg.Mappings {
		var rec types.ExtractionRecord
		err := store.GetJSON(ctx, a.store, store.ExtractionKey(m.TargetID), &rec)
		switch {
		case errors.Is(err, store.ErrNotFound):
			_, _ = fmt.Fprintf(a.out, "%s: not extracted\n", m.Name())
			continue
		case err != nil:
			return fmt.Errorf("failed to read %s: %w", m.TargetID, err)
		}
		a.printer.PrintExtraction(m.TargetID, &rec)
	}

	var canonical types.CanonicalResumeRecord
	err := store.GetJSON(ctx, a.store, store.CanonicalKey(a.cfg.UserID), &canonical)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_, _ = fmt.Fprintln(a.out, "Canonical resume: not consolidated")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read canonical resume: %w", err)
	}
	a.printer.PrintCanonical(&canonical)
	return nil
}
