package board

// Report summarizes one tick.
type Report struct {
	// Active is false when the guard class was absent and nothing ran.
	Active  bool
	Points  int
	Columns []ColumnReport
	Project Outcome
	Stats   Stats
}

// ColumnReport is one column's share of the project total.
type ColumnReport struct {
	Name   string
	Points int
	Cards  int
}

// Changed reports whether the tick wrote anything to the tree.
func (r Report) Changed() bool {
	return r.Stats.Writes() > 0
}
