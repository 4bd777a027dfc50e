package board

import (
	"errors"
	"strings"
)

// Selectors is the query vocabulary used to discover the board and the
// marker classes used to tag annotations.
type Selectors struct {
	// GuardClass must be present on the body for a tick to do anything.
	GuardClass string `yaml:"guard_class"`

	ProjectHeader string `yaml:"project_header"`
	ProjectTitle  string `yaml:"project_title"` // queried inside ProjectHeader
	Column        string `yaml:"column"`
	ColumnName    string `yaml:"column_name"`
	CardCount     string `yaml:"card_count"`
	Card          string `yaml:"card"`
	Label         string `yaml:"label"`
	// CardHeaders are tried in order; the first present one is annotated.
	CardHeaders []string `yaml:"card_headers"`

	ScoreTag      string `yaml:"score_tag"`
	ScoreClass    string `yaml:"score_class"`
	CardMarker    string `yaml:"card_marker"`
	ColumnMarker  string `yaml:"column_marker"`
	ProjectMarker string `yaml:"project_marker"`
}

// DefaultSelectors matches GitHub classic project boards.
func DefaultSelectors() Selectors {
	return Selectors{
		GuardClass:    "project-page",
		ProjectHeader: ".project-header",
		ProjectTitle:  "h3",
		Column:        ".project-column",
		ColumnName:    ".js-project-column-name",
		CardCount:     ".js-column-card-count",
		Card:          ".project-card",
		Label:         ".issue-card-label",
		CardHeaders:   []string{".js-project-card-issue-link", ".js-comment-body"},
		ScoreTag:      "span",
		ScoreClass:    "ccghp__score",
		CardMarker:    "ccghp__card__score",
		ColumnMarker:  "ccghp__column__score",
		ProjectMarker: "ccghp__project__score",
	}
}

// Validate reports the first empty required field.
func (s Selectors) Validate() error {
	required := []struct {
		name, value string
	}{
		{"guard_class", s.GuardClass},
		{"project_header", s.ProjectHeader},
		{"project_title", s.ProjectTitle},
		{"column", s.Column},
		{"column_name", s.ColumnName},
		{"card", s.Card},
		{"label", s.Label},
		{"score_tag", s.ScoreTag},
		{"score_class", s.ScoreClass},
		{"card_marker", s.CardMarker},
		{"column_marker", s.ColumnMarker},
		{"project_marker", s.ProjectMarker},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.New("selectors: " + r.name + " is required")
		}
	}
	markers := map[string]bool{}
	for _, m := range []string{s.CardMarker, s.ColumnMarker, s.ProjectMarker} {
		if markers[m] {
			return errors.New("selectors: marker classes must be distinct, " + m + " repeats")
		}
		markers[m] = true
	}
	if len(s.CardHeaders) == 0 {
		return errors.New("selectors: card_headers needs at least one selector")
	}
	return nil
}

func classSelector(class string) string {
	return "." + class
}
