package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"boardpoints/internal/board"
	"boardpoints/internal/htmltree"
	"boardpoints/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	annotateJobs    int
	annotateInPlace bool
	annotateOutput  string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file.html...]",
	Short: "Write point totals into saved board pages",
	Long: `Runs one pass over each HTML file. With --in-place every file is rewritten
when the pass changed it; otherwise a single file's annotated HTML goes to
stdout (or --output). A summary for each file is printed to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

type annotated struct {
	path   string
	doc    *htmltree.Document
	report board.Report
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if !annotateInPlace && len(args) > 1 {
		return fmt.Errorf("annotating %d files needs --in-place", len(args))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sel := currentConfig().Selectors
	results := make([]annotated, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(annotateJobs, 1))
	for i, path := range args {
		g.Go(func() error {
			doc, report, err := annotateFile(gctx, path, sel)
			if err != nil {
				return err
			}
			results[i] = annotated{path: path, doc: doc, report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		switch {
		case annotateInPlace:
			if res.report.Changed() {
				if err := writeDocument(res.path, res.doc); err != nil {
					return err
				}
			}
		case annotateOutput != "":
			if err := writeDocument(annotateOutput, res.doc); err != nil {
				return err
			}
		default:
			if err := res.doc.Render(os.Stdout); err != nil {
				return fmt.Errorf("render %s: %w", res.path, err)
			}
		}
		fmt.Fprintln(os.Stderr, renderReport(res.path, res.report))
	}
	return nil
}

// annotateFile parses path and runs one tick over it.
func annotateFile(ctx context.Context, path string, sel board.Selectors) (*htmltree.Document, board.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, board.Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := htmltree.Parse(f)
	if err != nil {
		return nil, board.Report{}, fmt.Errorf("parse %s: %w", path, err)
	}

	annotator := board.NewAnnotator(doc, sel, logging.Get(logging.CategoryBoard).With(zap.String("file", path)))
	report, err := annotator.Tick(ctx)
	if err != nil {
		return nil, board.Report{}, fmt.Errorf("annotate %s: %w", path, err)
	}
	getLogger().Debug("file annotated",
		zap.String("file", path),
		zap.Int("points", report.Points),
		zap.Int("writes", report.Stats.Writes()))
	return doc, report, nil
}

// writeDocument renders doc over path, keeping the existing file mode.
func writeDocument(path string, doc *htmltree.Document) error {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
