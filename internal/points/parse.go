// Package points converts free-text label captions into story point values.
package points

import (
	"regexp"
	"strconv"
	"strings"
)

// Separators are hyphens, colons and the whitespace set browsers use for \s
// and String.prototype.trim. Letters are spelled out per case so only ASCII
// letters match; (?i) would also fold U+017F and U+212A.
const (
	sep   = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}\-:]*`
	story = `(?:[sS][tT][oO][rR][yY]?)?`
	point = `(?:[pP][oO][iI][nN][tT][sS]?)?`
)

// Captions are matched start to end, never as substrings. The suffix form is
// tried first so a bare number ("3") resolves through it.
var (
	suffixPattern = regexp.MustCompile(`^([0-9]+)` + sep + story + sep + point + `$`)
	prefixPattern = regexp.MustCompile(`^` + story + sep + point + sep + `([0-9]+)$`)
)

// Parse returns the points carried by a label caption, or 0 when the caption
// is not a points label.
//
// Recognized shapes, ASCII case-insensitive, with any run of whitespace,
// hyphens or colons as separators:
//
//	3, 3 points, 3-story-points, 3:Points
//	points 3, Story-Points-3, story points:3
func Parse(caption string) int {
	caption = strings.TrimFunc(caption, isSpace)
	if caption == "" {
		return 0
	}
	for _, re := range []*regexp.Regexp{suffixPattern, prefixPattern} {
		m := re.FindStringSubmatch(caption)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Digit runs too long for an int fall through to the next form.
			continue
		}
		return n
	}
	return 0
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

// Sum parses every caption and adds the results.
func Sum(captions ...string) int {
	total := 0
	for _, c := range captions {
		total += Parse(c)
	}
	return total
}
