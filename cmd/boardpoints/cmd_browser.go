package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"boardpoints/internal/browser"
	"boardpoints/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Manage the Chrome instance used by live",
}

var browserLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch Chrome and keep it running for live sessions",
	RunE:  browserLaunch,
}

func browserLaunch(cmd *cobra.Command, args []string) error {
	getLogger().Info("Launching browser")

	bcfg := currentConfig().Browser
	ws := resolveWorkspace()
	if bcfg.SessionStore == "" {
		bcfg.SessionStore = filepath.Join(ws, ".boardpoints", "browser", "sessions.json")
	}
	mgr := browser.NewSessionManager(bcfg)

	if err := mgr.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}

	controlFile := controlFilePath(ws)
	if err := os.MkdirAll(filepath.Dir(controlFile), 0o755); err == nil {
		if err := os.WriteFile(controlFile, []byte(mgr.ControlURL()), 0o644); err != nil {
			logging.BootWarn("failed to write browser control file", zap.Error(err))
		}
	}

	fmt.Printf("Browser launched. Control URL: %s\n", mgr.ControlURL())
	fmt.Printf("Session store: %s\n", bcfg.SessionStore)
	fmt.Println("Press Ctrl+C to shutdown")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := os.Remove(controlFile); err != nil && !os.IsNotExist(err) {
		logging.BootWarn("failed to remove browser control file", zap.Error(err))
	}
	if err := mgr.Shutdown(context.Background()); err != nil {
		logging.BootWarn("failed to shutdown browser manager", zap.Error(err))
	}
	return nil
}
