package board

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// cardsSuffix is appended to the externally written card count. Its presence
// is detected by substring, not by a marker, because the host owns that text.
const cardsSuffix = " cards"

// Outcome describes what an annotation write did to the tree.
type Outcome int

const (
	// Skipped means no header was found or the write failed.
	Skipped Outcome = iota
	Created
	Replaced
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	case Unchanged:
		return "unchanged"
	default:
		return "skipped"
	}
}

// Stats counts tree writes made during one pass.
type Stats struct {
	Created   int
	Replaced  int
	Unchanged int
	Skipped   int
	Suffixed  int
}

// Writes is the number of structural changes made to the tree.
func (s Stats) Writes() int {
	return s.Created + s.Replaced + s.Suffixed
}

func (s *Stats) record(o Outcome) {
	switch o {
	case Created:
		s.Created++
	case Replaced:
		s.Replaced++
	case Unchanged:
		s.Unchanged++
	default:
		s.Skipped++
	}
}

func pointsText(n int) string {
	return fmt.Sprintf("%d points", n)
}

// upsertScore keeps exactly one node tagged with marker as the first child of
// header, carrying text. An existing node with the same text is left alone;
// a stale one is swapped for a freshly built node.
func (a *Annotator) upsertScore(header Element, text, marker string) Outcome {
	existing, err := header.Query(classSelector(marker))
	if err != nil {
		a.logger.Debug("score lookup failed", zap.String("marker", marker), zap.Error(err))
		return a.tally(Skipped)
	}

	if existing != nil {
		current, err := existing.TextContent()
		if err == nil && current == text {
			return a.tally(Unchanged)
		}
	}

	score, err := a.newScore(text, marker)
	if err != nil {
		a.logger.Warn("build score node", zap.String("marker", marker), zap.Error(err))
		return a.tally(Skipped)
	}

	if existing == nil {
		if err := header.Prepend(score); err != nil {
			a.logger.Warn("prepend score", zap.String("marker", marker), zap.Error(err))
			return a.tally(Skipped)
		}
		return a.tally(Created)
	}

	if err := header.ReplaceChild(score, existing); err != nil {
		a.logger.Warn("replace score", zap.String("marker", marker), zap.Error(err))
		return a.tally(Skipped)
	}
	return a.tally(Replaced)
}

func (a *Annotator) newScore(text, marker string) (Element, error) {
	el, err := a.doc.CreateElement(a.sel.ScoreTag)
	if err != nil {
		return nil, err
	}
	if err := el.AddClass(a.sel.ScoreClass, marker); err != nil {
		return nil, err
	}
	if err := el.SetTextContent(text); err != nil {
		return nil, err
	}
	return el, nil
}

// appendCardSuffix adds " cards" to the column's card count display once.
func (a *Annotator) appendCardSuffix(column Element) bool {
	if a.sel.CardCount == "" {
		return false
	}
	count, err := column.Query(a.sel.CardCount)
	if err != nil || count == nil {
		return false
	}
	text, err := count.TextContent()
	if err != nil {
		a.logger.Debug("read card count", zap.Error(err))
		return false
	}
	if strings.Contains(text, cardsSuffix) {
		return false
	}
	if err := count.AddClass(a.sel.ScoreClass); err != nil {
		a.logger.Debug("tag card count", zap.Error(err))
	}
	if err := count.SetTextContent(text + cardsSuffix); err != nil {
		a.logger.Warn("append card suffix", zap.Error(err))
		return false
	}
	a.stats.Suffixed++
	return true
}

func (a *Annotator) tally(o Outcome) Outcome {
	a.stats.record(o)
	return o
}
