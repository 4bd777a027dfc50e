package board_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"boardpoints/internal/board"
	"boardpoints/internal/htmltree"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func label(caption string) string {
	return fmt.Sprintf(`<button type="button" class="issue-card-label"><span>%s</span></button>`, caption)
}

// card builds a card whose header is "issue", "comment" or "" for none.
func card(header string, labels ...string) string {
	var sb strings.Builder
	sb.WriteString(`<article class="project-card">`)
	switch header {
	case "issue":
		sb.WriteString(`<a class="js-project-card-issue-link" href="#">Fix the thing</a>`)
	case "comment":
		sb.WriteString(`<div class="js-comment-body"><p>Remember the thing</p></div>`)
	}
	for _, l := range labels {
		sb.WriteString(label(l))
	}
	sb.WriteString(`</article>`)
	return sb.String()
}

func column(name, count string, cards ...string) string {
	return fmt.Sprintf(`<div class="project-column"><span class="js-column-card-count">%s</span><h4 class="js-project-column-name">%s</h4>%s</div>`,
		count, name, strings.Join(cards, ""))
}

func page(guard bool, columns ...string) string {
	class := "project-page"
	if !guard {
		class = "repository"
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><body class="%s"><div class="project-header"><h3>Roadmap</h3></div>%s</body></html>`,
		class, strings.Join(columns, ""))
}

func newAnnotator(t *testing.T, src string) (*board.Annotator, *htmltree.Document) {
	t.Helper()
	doc, err := htmltree.ParseString(src)
	require.NoError(t, err)
	return board.NewAnnotator(doc, board.DefaultSelectors(), nil), doc
}

func texts(t *testing.T, doc *htmltree.Document, selector string) []string {
	t.Helper()
	root, err := doc.Root()
	require.NoError(t, err)
	found, err := root.QueryAll(selector)
	require.NoError(t, err)
	out := make([]string, 0, len(found))
	for _, el := range found {
		text, err := el.TextContent()
		require.NoError(t, err)
		out = append(out, text)
	}
	return out
}

var standardLabels = []string{"3 points", "2", "feature"}

func twoByTwo() string {
	return page(true,
		column("To do", "2", card("issue", standardLabels...), card("issue", standardLabels...)),
		column("Done", "2", card("issue", standardLabels...), card("comment", standardLabels...)),
	)
}

func TestTick_SumsHierarchy(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())

	report, err := a.Tick(context.Background())
	require.NoError(t, err)

	want := board.Report{
		Active: true,
		Points: 20,
		Columns: []board.ColumnReport{
			{Name: "To do", Points: 10, Cards: 2},
			{Name: "Done", Points: 10, Cards: 2},
		},
		Project: board.Created,
		Stats:   board.Stats{Created: 7, Suffixed: 2},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"5 points", "5 points", "5 points", "5 points"}, texts(t, doc, ".ccghp__card__score"))
	assert.Equal(t, []string{"10 points", "10 points"}, texts(t, doc, ".ccghp__column__score"))
	assert.Equal(t, []string{"20 points"}, texts(t, doc, ".ccghp__project__score"))
	assert.Equal(t, []string{"2 cards", "2 cards"}, texts(t, doc, ".js-column-card-count"))
}

func TestTick_Idempotent(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())

	_, err := a.Tick(context.Background())
	require.NoError(t, err)
	firstHTML := doc.String()
	firstWrites := doc.Writes()

	report, err := a.Tick(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Changed())
	assert.Equal(t, board.Stats{Unchanged: 7}, report.Stats)
	assert.Equal(t, board.Unchanged, report.Project)
	assert.Equal(t, firstWrites, doc.Writes(), "second tick must not touch the tree")
	assert.Equal(t, firstHTML, doc.String())
}

func TestTick_OneAnnotationPerContainer(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())
	for i := 0; i < 3; i++ {
		_, err := a.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, texts(t, doc, ".ccghp__card__score"), 4)
	assert.Len(t, texts(t, doc, ".ccghp__column__score"), 2)
	assert.Len(t, texts(t, doc, ".ccghp__project__score"), 1)
	assert.Len(t, texts(t, doc, ".ccghp__score"), 4+2+1+2)
}

func TestTick_ReplacesStaleAnnotation(t *testing.T) {
	a, doc := newAnnotator(t, page(true, column("To do", "1", card("issue", "3 points"))))

	_, err := a.Tick(context.Background())
	require.NoError(t, err)

	// The host relabels the card between ticks.
	labelEl, err := doc.Query(".issue-card-label span")
	require.NoError(t, err)
	require.NoError(t, labelEl.SetTextContent("8 points"))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Points)
	assert.Equal(t, board.Stats{Replaced: 3}, report.Stats)
	assert.Equal(t, []string{"8 points"}, texts(t, doc, ".ccghp__card__score"))
	assert.Equal(t, []string{"8 points"}, texts(t, doc, ".ccghp__project__score"))

	header, err := doc.Query(".js-project-card-issue-link")
	require.NoError(t, err)
	first, err := header.Query("span")
	require.NoError(t, err)
	ok, _ := first.HasClass("ccghp__score")
	assert.True(t, ok, "replacement carries the generic class")
	ok, _ = first.HasClass("ccghp__card__score")
	assert.True(t, ok, "replacement carries the card marker")
}

func TestTick_GuardAbsent(t *testing.T) {
	a, doc := newAnnotator(t, page(false, column("To do", "1", card("issue", "3"))))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board.Report{}, report)
	assert.Equal(t, 0, doc.Writes())
}

// rootless hides the document root while keeping the guarded body.
type rootless struct {
	*htmltree.Document
}

func (rootless) Root() (board.Element, error) { return nil, nil }

func TestTick_RootMissing(t *testing.T) {
	doc, err := htmltree.ParseString(twoByTwo())
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	a := board.NewAnnotator(rootless{doc}, board.DefaultSelectors(), zap.New(core))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board.Report{}, report)
	assert.Equal(t, 0, doc.Writes())

	missing := logs.FilterMessage("root missing").All()
	require.Len(t, missing, 1)
	assert.NotContains(t, missing[0].ContextMap(), "error")
	assert.Zero(t, logs.FilterMessage("root lookup failed").Len())
}

func TestTick_CardCountSuffixOnce(t *testing.T) {
	a, doc := newAnnotator(t, page(true, column("To do", "4")))

	_, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"4 cards"}, texts(t, doc, ".js-column-card-count"))

	_, err = a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"4 cards"}, texts(t, doc, ".js-column-card-count"))
}

func TestTick_CardCountAlreadySuffixedByHost(t *testing.T) {
	a, doc := newAnnotator(t, page(true, column("To do", "4 cards")))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Stats.Suffixed)
	assert.Equal(t, []string{"4 cards"}, texts(t, doc, ".js-column-card-count"))
}

func TestTick_MissingCardHeader(t *testing.T) {
	a, doc := newAnnotator(t, page(true,
		column("To do", "2", card("", "3 points", "2"), card("issue", "1"))))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Points)
	assert.Equal(t, 1, report.Stats.Skipped)
	assert.Equal(t, []string{"1 points"}, texts(t, doc, ".ccghp__card__score"))
	assert.Equal(t, []string{"6 points"}, texts(t, doc, ".ccghp__column__score"))
}

func TestTick_ZeroLabelCardStillAnnotated(t *testing.T) {
	a, doc := newAnnotator(t, page(true, column("To do", "1", card("comment"))))

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Points)
	assert.Equal(t, []string{"0 points"}, texts(t, doc, ".ccghp__card__score"))
}

func TestTick_IssueLinkPreferredOverCommentBody(t *testing.T) {
	src := page(true, column("To do", "1",
		`<article class="project-card"><div class="js-comment-body">note</div><a class="js-project-card-issue-link">Issue</a>`+label("5")+`</article>`))
	a, doc := newAnnotator(t, src)

	_, err := a.Tick(context.Background())
	require.NoError(t, err)

	link, err := doc.Query(".js-project-card-issue-link")
	require.NoError(t, err)
	text, _ := link.TextContent()
	assert.Equal(t, "5 pointsIssue", text)

	comment, err := doc.Query(".js-comment-body")
	require.NoError(t, err)
	text, _ = comment.TextContent()
	assert.Equal(t, "note", text)
}

func TestTick_MissingColumnHeader(t *testing.T) {
	src := page(true,
		`<div class="project-column"><span class="js-column-card-count">1</span>`+card("issue", "2")+`</div>`,
		column("Done", "1", card("issue", "3")))
	a, doc := newAnnotator(t, src)

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Points)
	assert.Equal(t, []string{"3 points"}, texts(t, doc, ".ccghp__column__score"))
	assert.Equal(t, []string{"1", "1 cards"}, texts(t, doc, ".js-column-card-count"))
}

func TestTick_MissingProjectHeader(t *testing.T) {
	src := `<html><body class="project-page">` + column("To do", "1", card("issue", "2")) + `</body></html>`
	a, doc := newAnnotator(t, src)

	report, err := a.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Points)
	assert.Equal(t, board.Skipped, report.Project)
	assert.Empty(t, texts(t, doc, ".ccghp__project__score"))
}

func TestTick_Cancelled(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, doc.Writes())
}

func TestAggregateOperations(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())
	root, err := doc.Root()
	require.NoError(t, err)

	cards, err := root.QueryAll(".project-card")
	require.NoError(t, err)
	require.Len(t, cards, 4)
	assert.Equal(t, 5, a.AggregateCard(cards[0]))

	columns, err := root.QueryAll(".project-column")
	require.NoError(t, err)
	assert.Equal(t, 10, a.AggregateColumn(columns[0]))

	assert.Equal(t, 20, a.AggregateProject(root))
}

func TestAnnotateOnly(t *testing.T) {
	a, doc := newAnnotator(t, twoByTwo())
	root, err := doc.Root()
	require.NoError(t, err)

	cardEl, err := root.Query(".project-card")
	require.NoError(t, err)
	assert.Equal(t, board.Created, a.AnnotateCard(cardEl, 42))
	assert.Equal(t, board.Unchanged, a.AnnotateCard(cardEl, 42))
	assert.Equal(t, board.Replaced, a.AnnotateCard(cardEl, 7))

	colEl, err := root.Query(".project-column")
	require.NoError(t, err)
	assert.Equal(t, board.Created, a.AnnotateColumn(colEl, 1))

	assert.Equal(t, board.Created, a.AnnotateProject(root, 99))
	assert.Equal(t, []string{"99 points"}, texts(t, doc, ".ccghp__project__score"))
}

func TestLabelPoints(t *testing.T) {
	a, doc := newAnnotator(t, page(true, column("To do", "1", card("issue", "  Story Points: 5 ", "feature"))))

	assert.Equal(t, 0, a.LabelPoints(nil))

	root, err := doc.Root()
	require.NoError(t, err)
	labels, err := root.QueryAll(".issue-card-label")
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, 5, a.LabelPoints(labels[0]))
	assert.Equal(t, 0, a.LabelPoints(labels[1]))
}
