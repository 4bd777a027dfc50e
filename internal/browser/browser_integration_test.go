//go:build integration

package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardpoints/internal/board"
	"boardpoints/internal/browser"

	"github.com/stretchr/testify/require"
)

const boardPage = `<!DOCTYPE html>
<html><body class="project-page">
<div class="project-header"><h3>Roadmap</h3></div>
<div class="project-column">
  <span class="js-column-card-count">2</span>
  <h4 class="js-project-column-name">To do</h4>
  <article class="project-card">
    <a class="js-project-card-issue-link">First</a>
    <button class="issue-card-label"><span>3 points</span></button>
    <button class="issue-card-label"><span>feature</span></button>
  </article>
  <article class="project-card">
    <div class="js-comment-body">Second</div>
    <button class="issue-card-label"><span>Story Points: 2</span></button>
  </article>
</div>
</body></html>`

func startBrowser(t *testing.T) (*browser.SessionManager, context.Context) {
	t.Helper()
	cfg := browser.DefaultConfig()
	cfg.Headless = true
	cfg.NavigationTimeoutMs = 10000

	sm := browser.NewSessionManager(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	t.Cleanup(func() {
		if err := sm.Shutdown(context.Background()); err != nil {
			t.Logf("Shutdown error: %v", err)
		}
	})
	require.NoError(t, sm.Start(ctx), "Failed to start browser")
	return sm, ctx
}

func TestLivePageAnnotation_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, boardPage)
	}))
	defer ts.Close()

	sm, ctx := startBrowser(t)
	session, err := sm.CreateSession(ctx, ts.URL)
	require.NoError(t, err)

	tick := func() board.Report {
		doc, err := sm.Document(ctx, session.ID)
		require.NoError(t, err)
		report, err := board.NewAnnotator(doc, board.DefaultSelectors(), nil).Tick(ctx)
		require.NoError(t, err)
		return report
	}

	first := tick()
	require.True(t, first.Active)
	require.Equal(t, 5, first.Points)
	require.Equal(t, board.Created, first.Project)

	second := tick()
	require.Equal(t, 5, second.Points)
	require.False(t, second.Changed(), "second tick must not write: %+v", second.Stats)

	page, ok := sm.Page(session.ID)
	require.True(t, ok)
	count := page.MustElement(".js-column-card-count").MustText()
	require.Equal(t, "2 cards", count)
	title := page.MustElement(".ccghp__project__score").MustText()
	require.Equal(t, "5 points", title)
}

func TestAttachAndNavigate_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/board" {
			fmt.Fprint(w, boardPage)
			return
		}
		fmt.Fprint(w, `<!DOCTYPE html><html><body class="repository"></body></html>`)
	}))
	defer ts.Close()

	sm, ctx := startBrowser(t)
	opened, err := sm.CreateSession(ctx, ts.URL+"/elsewhere")
	require.NoError(t, err)

	attached, err := sm.Attach(ctx, opened.TargetID)
	require.NoError(t, err)
	require.NoError(t, sm.Navigate(ctx, attached.ID, ts.URL+"/board"))

	meta, ok := sm.GetSession(attached.ID)
	require.True(t, ok)
	require.Equal(t, ts.URL+"/board", meta.URL)

	page, ok := sm.Page(attached.ID)
	require.True(t, ok)
	require.NoError(t, page.WaitLoad())

	doc, err := sm.Document(ctx, attached.ID)
	require.NoError(t, err)
	report, err := board.NewAnnotator(doc, board.DefaultSelectors(), nil).Tick(ctx)
	require.NoError(t, err)
	require.True(t, report.Active)
	require.Equal(t, 5, report.Points)
}
