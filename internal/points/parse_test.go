package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_NonPoints(t *testing.T) {
	tests := []struct {
		name    string
		caption string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"non-numeric", "feature"},
		{"points word only", "points"},
		{"trailing garbage", "3 points extra"},
		{"trailing number", "3 points 5"},
		{"leading garbage", "about 3 points"},
		{"decimal", "1.5 points"},
		{"overflow", "99999999999999999999999999 points"},
		{"non-ascii digits", "٣ points"},
		{"abbreviated word", "3 pts-free"},
		{"long s is not s", "3 \u017ftory points"},
		{"long s in points", "3 point\u017f"},
		{"next line is not a separator", "3\u0085points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, Parse(tt.caption))
		})
	}
}

func TestParse_Bare(t *testing.T) {
	assert.Equal(t, 3, Parse("3"))
	assert.Equal(t, 13, Parse("  13\n"))
	assert.Equal(t, 0, Parse("0"))
}

func TestParse_SuffixForms(t *testing.T) {
	captions := []string{
		"3 points", "3-points", "3:points",
		"3 Points", "3-Points", "3:Points",
		"3 story points", "3-story-points", "3:story points",
		"3 Story Points", "3-Story-Points", "3:Story Points",
		"3 point",
	}
	for _, c := range captions {
		assert.Equal(t, 3, Parse(c), "caption %q", c)
	}
}

func TestParse_PrefixForms(t *testing.T) {
	captions := []string{
		"points 3", "points-3", "points:3",
		"Points 3", "Points-3", "Points:3",
		"story points 3", "story-points-3", "story points:3",
		"Story Points 3", "Story-Points-3", "Story Points:3",
		"point: 3", "STORY - POINTS :: 3",
	}
	for _, c := range captions {
		assert.Equal(t, 3, Parse(c), "caption %q", c)
	}
}

func TestParse_MixedSeparators(t *testing.T) {
	assert.Equal(t, 8, Parse("8 -: story :- points"))
	assert.Equal(t, 5, Parse("stor points 5"))
	// A leading hyphen is a separator, not a sign.
	assert.Equal(t, 3, Parse("-3"))

	spaced := []string{
		"3\u00a0points",
		"points\u00a03",
		"3\vpoints",
		"3\u2003story points",
		"story\u3000points\u202f3",
		"\ufeff3 points\u2028",
	}
	for _, c := range spaced {
		assert.Equal(t, 3, Parse(c), "caption %q", c)
	}
}

func TestSum(t *testing.T) {
	assert.Equal(t, 5, Sum("3 points", "2", "feature"))
	assert.Equal(t, 0, Sum())
}
