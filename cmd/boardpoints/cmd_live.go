package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"boardpoints/internal/board"
	"boardpoints/internal/browser"
	"boardpoints/internal/logging"
	"boardpoints/internal/runner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var liveTarget string

var liveCmd = &cobra.Command{
	Use:   "live [url]",
	Short: "Keep a live Chrome board page annotated",
	Long: `Opens the board URL in Chrome (or attaches to an open page with --target) and
runs a pass every interval until interrupted. With both --target and a URL the
attached page is navigated to the URL first. Reuses the browser recorded by
'boardpoints browser launch' when one is running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLive,
}

func runLive(cmd *cobra.Command, args []string) error {
	if liveTarget == "" && len(args) == 0 {
		return fmt.Errorf("a board URL or --target is required")
	}

	c := currentConfig()
	bcfg := getBrowserConfig(c.Browser)
	mgr := browser.NewSessionManager(bcfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}
	defer func() {
		if err := mgr.Shutdown(context.Background()); err != nil {
			logging.BrowserWarn("failed to shutdown browser manager", zap.Error(err))
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		session *browser.Session
		err     error
	)
	if liveTarget != "" {
		session, err = mgr.Attach(startCtx, liveTarget)
		if err == nil && len(args) == 1 {
			if err = mgr.Navigate(startCtx, session.ID, args[0]); err == nil {
				session.URL = args[0]
			}
		}
	} else {
		session, err = mgr.CreateSession(startCtx, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to open board page: %w", err)
	}
	getLogger().Info("live session ready", zap.String("session", session.ID), zap.String("url", session.URL))

	tick := liveTick(mgr, session.ID, c.Selectors, func(r board.Report) {
		fmt.Println(renderReport(session.URL, r))
	})
	poller := runner.NewPoller(c.GetInterval(), tick)
	poller.Start(ctx)
	fmt.Printf("Annotating %s every %s (Ctrl+C to stop)\n", session.URL, c.GetInterval())

	<-poller.Done()
	poller.Stop()

	stats := poller.Stats()
	getLogger().Info("live stopped", zap.Int("ticks", stats.Ticks), zap.Int("errors", stats.Errors))
	return nil
}

// liveTick builds a tick over a fresh page document each time. show is called
// whenever the project total differs from the last reported one.
func liveTick(mgr *browser.SessionManager, sessionID string, sel board.Selectors, show func(board.Report)) runner.TickFunc {
	last := -1
	return func(ctx context.Context) error {
		doc, err := mgr.Document(ctx, sessionID)
		if err != nil {
			logging.BrowserDebug("page unavailable", zap.String("session", sessionID), zap.Error(err))
			return err
		}
		report, err := board.NewAnnotator(doc, sel, logging.Get(logging.CategoryBoard)).Tick(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		logging.BrowserDebug("page ticked",
			zap.String("session", sessionID),
			zap.Bool("active", report.Active),
			zap.Int("points", report.Points),
			zap.Int("writes", report.Stats.Writes()))
		if report.Active && report.Points != last {
			last = report.Points
			show(report)
		}
		return nil
	}
}

// getBrowserConfig fills in the session store and the control URL left by a
// running 'browser launch'.
func getBrowserConfig(base browser.Config) browser.Config {
	ws := resolveWorkspace()
	cfg := base
	if cfg.SessionStore == "" {
		cfg.SessionStore = filepath.Join(ws, ".boardpoints", "browser", "sessions.json")
	}
	if cfg.DebuggerURL == "" {
		if data, err := os.ReadFile(controlFilePath(ws)); err == nil {
			if url := strings.TrimSpace(string(data)); url != "" {
				cfg.DebuggerURL = url
				logging.Browser("reusing launched browser", zap.String("url", url))
			}
		}
	}
	return cfg
}

func controlFilePath(ws string) string {
	return filepath.Join(ws, ".boardpoints", "browser", "control.txt")
}
