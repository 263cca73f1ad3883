package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/tabkit/bus"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/ingest"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/storage"
)

type runOptions struct {
	*rootOptions
	format string
	events bool
}

// result is one line of run output.
type result struct {
	Index   int                 `json:"index"`
	Records any                 `json:"records,omitempty"`
	Error   *apperrors.AppError `json:"error,omitempty"`
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Run every setting of a job and print one JSON line per result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "format of url sources: csv, json or yaml")
	cmd.Flags().BoolVar(&opts.events, "events", false, "print notifications to stderr")
	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, jobPath string) error {
	job, err := readJob(jobPath)
	if err != nil {
		return err
	}

	cfg, a, err := o.setup(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	baseDir := ""
	if cfg.Storage.Provider == storage.ProviderLocal && cfg.Storage.BasePath == "" {
		baseDir = filepath.Dir(jobPath)
	}
	settings, err := job.ingestSettings(baseDir)
	if err != nil {
		return err
	}

	if o.events {
		unsubscribe, err := a.emitter.On("*", eventPrinter(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer unsubscribe()
	}

	format := o.format
	if format == "" {
		format = job.Format
	}
	if format == "" {
		format = cfg.Ingest.Format
	}

	batch, dispatchErr := a.dispatcher.DispatchBatch(cmd.Context(), settings, format)
	if dispatchErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", dispatchErr)
	}

	failed, err := writeResults(cmd.Context(), cmd.OutOrStdout(), batch)
	if err != nil {
		return err
	}
	a.log.Info("job finished", logger.Fields(
		logger.FieldBatchID, batch.ID,
		"settings", batch.Len(),
		"failed", failed,
	))
	if failed > 0 {
		return fmt.Errorf("%d of %d settings failed", failed, batch.Len())
	}
	return nil
}

// writeResults prints each member of b in order as it settles and returns
// how many failed.
func writeResults(ctx context.Context, w io.Writer, b *ingest.Batch) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for i := 0; i < b.Len(); i++ {
		line := result{Index: i}
		f := b.Future(i)
		if f == nil {
			line.Error = apperrors.InvalidSetting("settings", fmt.Sprintf("setting %d was not dispatched", i))
		} else {
			records, err := f.Await(ctx)
			switch {
			case ctx.Err() != nil:
				return failed, ctx.Err()
			case err != nil:
				line.Error = apperrors.Wrap(err)
			default:
				line.Records = bus.Sanitize(records)
			}
		}
		if line.Error != nil {
			failed++
		}
		if err := enc.Encode(line); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// eventPrinter writes each event as a JSON line to w.
func eventPrinter(w io.Writer) bus.Handler {
	var mu sync.Mutex
	return func(_ context.Context, e bus.Event) {
		b, err := bus.Encode(e)
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s\n", b)
	}
}
