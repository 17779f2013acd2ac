package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jask/cnpjlookup/internal/config"
	"github.com/jask/cnpjlookup/internal/metrics"
	"github.com/jask/cnpjlookup/internal/session"
	"github.com/jask/cnpjlookup/internal/tui"
)

// maxParallelLookups bounds concurrent one-shot lookups.
const maxParallelLookups = 4

func lookupCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <cnpj>...",
		Short: "Look up one or more CNPJs and print the records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
			return runLookups(cmd.Context(), cfg, logger, cmd.OutOrStdout(), args)
		},
	}
}

// runLookups queries every input in its own session and prints the results
// in argument order.
func runLookups(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer, inputs []string) error {
	client, err := newClient(cfg, logger, metrics.New())
	if err != nil {
		return err
	}

	snaps := make([]session.Snapshot, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, raw := range inputs {
		i, raw := i, raw
		g.Go(func() error {
			snaps[i] = queryOnce(gctx, client, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, snap := range snaps {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s\n", inputs[i])
		fmt.Fprintln(out, tui.Render(snap, tui.PlainStyles()))
		if snap.State != session.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(inputs))
	}
	return nil
}

// queryOnce drives a fresh controller through keystroke, submit and resolve.
func queryOnce(ctx context.Context, client tui.Lookuper, raw string) session.Snapshot {
	s := session.New()
	s.Keystroke(raw)
	req, ok := s.Submit()
	if !ok {
		return s.Snapshot()
	}
	rec, err := client.Lookup(ctx, req.ID)
	s.Resolve(session.Resolution{Request: req, Record: rec, Err: err})
	return s.Snapshot()
}
