package board

import (
	"context"
	"strings"
	"time"

	"boardpoints/internal/logging"
	"boardpoints/internal/points"

	"go.uber.org/zap"
)

// slowTick is the duration above which a tick is logged as slow.
const slowTick = 500 * time.Millisecond

// Annotator runs aggregate-and-annotate passes over one Document.
// It is not safe for concurrent use; ticks must be serialized by the caller.
type Annotator struct {
	doc    Document
	sel    Selectors
	logger *zap.Logger
	stats  Stats
}

// NewAnnotator binds an annotator to doc. A nil logger discards output.
func NewAnnotator(doc Document, sel Selectors, logger *zap.Logger) *Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{doc: doc, sel: sel, logger: logger}
}

// LabelPoints returns the points carried by a single label element.
func (a *Annotator) LabelPoints(label Element) int {
	if label == nil {
		return 0
	}
	text, err := label.TextContent()
	if err != nil {
		a.logger.Debug("read label", zap.Error(err))
		return 0
	}
	return points.Parse(text)
}

// AnnotateCard writes "<n> points" into the card's issue-link header, or its
// comment-body header when there is no issue link.
func (a *Annotator) AnnotateCard(card Element, n int) Outcome {
	for _, selector := range a.sel.CardHeaders {
		header, err := card.Query(selector)
		if err != nil {
			a.logger.Debug("card header lookup failed", zap.String("selector", selector), zap.Error(err))
			continue
		}
		if header != nil {
			return a.upsertScore(header, pointsText(n), a.sel.CardMarker)
		}
	}
	return a.tally(Skipped)
}

// AggregateCard sums the card's labels and annotates the card.
func (a *Annotator) AggregateCard(card Element) int {
	labels := a.queryAll(card, a.sel.Label)
	total := 0
	for _, label := range labels {
		total += a.LabelPoints(label)
	}
	a.AnnotateCard(card, total)
	return total
}

// AnnotateColumn writes "<n> points" into the column name header and makes
// sure the card count display ends in " cards". Nothing is written when the
// column has no name header.
func (a *Annotator) AnnotateColumn(column Element, n int) Outcome {
	header, err := column.Query(a.sel.ColumnName)
	if err != nil || header == nil {
		if err != nil {
			a.logger.Debug("column header lookup failed", zap.Error(err))
		}
		return a.tally(Skipped)
	}
	outcome := a.upsertScore(header, pointsText(n), a.sel.ColumnMarker)
	a.appendCardSuffix(column)
	return outcome
}

// AggregateColumn sums every card in the column and annotates the column.
func (a *Annotator) AggregateColumn(column Element) int {
	return a.aggregateColumn(column).Points
}

func (a *Annotator) aggregateColumn(column Element) ColumnReport {
	cards := a.queryAll(column, a.sel.Card)
	total := 0
	for _, card := range cards {
		total += a.AggregateCard(card)
	}
	a.AnnotateColumn(column, total)
	return ColumnReport{
		Name:   a.columnName(column),
		Points: total,
		Cards:  len(cards),
	}
}

// AnnotateProject writes "<n> points" into the project title.
func (a *Annotator) AnnotateProject(project Element, n int) Outcome {
	region, err := project.Query(a.sel.ProjectHeader)
	if err != nil || region == nil {
		return a.tally(Skipped)
	}
	title, err := region.Query(a.sel.ProjectTitle)
	if err != nil || title == nil {
		return a.tally(Skipped)
	}
	return a.upsertScore(title, pointsText(n), a.sel.ProjectMarker)
}

// AggregateProject sums every column in the project, annotates the project
// and returns the grand total.
func (a *Annotator) AggregateProject(project Element) int {
	r, _ := a.aggregateProject(context.Background(), project)
	return r.Points
}

func (a *Annotator) aggregateProject(ctx context.Context, project Element) (Report, error) {
	a.stats = Stats{}
	report := Report{Active: true}
	for _, column := range a.queryAll(project, a.sel.Column) {
		if err := ctx.Err(); err != nil {
			report.Stats = a.stats
			return report, err
		}
		c := a.aggregateColumn(column)
		report.Columns = append(report.Columns, c)
		report.Points += c.Points
	}
	report.Project = a.AnnotateProject(project, report.Points)
	report.Stats = a.stats
	return report, nil
}

// Tick runs one full pass when the body carries the guard class. A page
// without the guard yields an inactive, empty report.
func (a *Annotator) Tick(ctx context.Context) (Report, error) {
	timer := logging.StartTimer(logging.CategoryPerformance, "tick")
	defer timer.StopWithThreshold(slowTick)

	body, err := a.doc.Body()
	if err != nil || body == nil {
		if err != nil {
			a.logger.Debug("body lookup failed", zap.Error(err))
		}
		return Report{}, nil
	}
	active, err := body.HasClass(a.sel.GuardClass)
	if err != nil || !active {
		return Report{}, nil
	}
	root, err := a.doc.Root()
	if err != nil {
		a.logger.Debug("root lookup failed", zap.Error(err))
		return Report{}, nil
	}
	if root == nil {
		a.logger.Debug("root missing")
		return Report{}, nil
	}

	report, err := a.aggregateProject(ctx, root)
	if err != nil {
		return report, err
	}
	a.logger.Debug("tick complete",
		zap.Int("points", report.Points),
		zap.Int("columns", len(report.Columns)),
		zap.Int("writes", report.Stats.Writes()))
	return report, nil
}

// columnName is the header text without the score annotation in front of it.
func (a *Annotator) columnName(column Element) string {
	header, err := column.Query(a.sel.ColumnName)
	if err != nil || header == nil {
		return ""
	}
	text, err := header.TextContent()
	if err != nil {
		return ""
	}
	if score, err := header.Query(classSelector(a.sel.ColumnMarker)); err == nil && score != nil {
		if prefix, err := score.TextContent(); err == nil {
			text = strings.TrimPrefix(strings.TrimSpace(text), prefix)
		}
	}
	return strings.TrimSpace(text)
}

func (a *Annotator) queryAll(parent Element, selector string) []Element {
	found, err := parent.QueryAll(selector)
	if err != nil {
		a.logger.Debug("query failed", zap.String("selector", selector), zap.Error(err))
		return nil
	}
	return found
}
