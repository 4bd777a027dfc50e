package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"boardpoints/internal/board"
	"boardpoints/internal/runner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file.html]",
	Short: "Re-annotate a saved board page whenever it changes",
	Long: `Annotates the file once, then again every time it settles after a change.
The file is only rewritten when a pass changed something, so the command's own
write leads to a single no-op pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	path := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := func(ctx context.Context, p string) error {
		report, written, err := annotateAndWrite(ctx, p, c.Selectors)
		if err != nil {
			return err
		}
		if written {
			fmt.Println(renderReport(p, report))
		}
		return nil
	}

	if err := handler(ctx, path); err != nil {
		return err
	}

	fw, err := runner.NewFileWatcher([]string{path}, c.GetDebounce(), handler)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)

	<-ctx.Done()
	fw.Stop()

	stats := fw.Stats()
	getLogger().Info("watch stopped", zap.Int("events", stats.Events), zap.Int("runs", stats.Runs))
	return nil
}

// annotateAndWrite runs one pass over path and writes it back only when the
// pass changed the document.
func annotateAndWrite(ctx context.Context, path string, sel board.Selectors) (board.Report, bool, error) {
	doc, report, err := annotateFile(ctx, path, sel)
	if err != nil {
		return board.Report{}, false, err
	}
	if !report.Changed() {
		return report, false, nil
	}
	if err := writeDocument(path, doc); err != nil {
		return report, false, err
	}
	return report, true, nil
}
