package spamsum

import (
	"github.com/agnivade/levenshtein"
)

// DistanceFunc returns the edit distance between two strings. It must be a
// metric: zero for equal inputs, symmetric, and obeying the triangle
// inequality.
type DistanceFunc func(a, b string) int

// Comparator scores the similarity of two signatures on a 0-100 scale.
// It is immutable and safe for concurrent use.
type Comparator struct {
	length       int
	minBlocksize int
	distance     DistanceFunc
}

// NewComparator returns a Comparator using the signature geometry in opts.
// A nil distance selects Levenshtein distance.
func NewComparator(opts Options, distance DistanceFunc) (*Comparator, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if distance == nil {
		distance = levenshtein.ComputeDistance
	}
	return &Comparator{length: opts.SignatureLength, minBlocksize: opts.MinBlocksize, distance: distance}, nil
}

var defaultComparator = &Comparator{
	length:       DefaultSignatureLength,
	minBlocksize: DefaultMinBlocksize,
	distance:     levenshtein.ComputeDistance,
}

// Score compares two signatures with the default comparator.
func Score(a, b Signature) int {
	return defaultComparator.Score(a, b)
}

// ScoreStrings compares two canonical signature strings with the default
// comparator. Malformed input scores 0.
func ScoreStrings(a, b string) int {
	return defaultComparator.ScoreStrings(a, b)
}

// Compare is ScoreStrings with parse failures reported as errors.
func Compare(a, b string) (int, error) {
	return defaultComparator.Compare(a, b)
}

// ScoreStrings parses both strings and scores them. A string that does not
// parse scores 0, the same as an unrelated signature.
func (c *Comparator) ScoreStrings(a, b string) int {
	score, err := c.Compare(a, b)
	if err != nil {
		return 0
	}
	return score
}

// Compare parses both strings and scores them. It returns a *ParseError
// for the first string that does not parse.
func (c *Comparator) Compare(a, b string) (int, error) {
	sa, err := Parse(a)
	if err != nil {
		return 0, err
	}
	sb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return c.Score(sa, sb), nil
}

// Score returns the similarity of a and b between 0 (no match) and 100.
//
// Signatures whose blocksizes are neither equal nor a factor of two apart
// always score 0.
func (c *Comparator) Score(a, b Signature) int {
	if a.Blocksize <= 0 || b.Blocksize <= 0 {
		return 0
	}
	if a.Blocksize != b.Blocksize && a.Blocksize != 2*b.Blocksize && b.Blocksize != 2*a.Blocksize {
		return 0
	}
	if a == b && a.Left != "" {
		return 100
	}

	left1, right1 := eliminateSequences(a.Left), eliminateSequences(a.Right)
	left2, right2 := eliminateSequences(b.Left), eliminateSequences(b.Right)

	switch {
	case a.Blocksize == b.Blocksize:
		return max(
			c.score(left1+":"+right1, left2+":"+right2, a.Blocksize),
			c.score(":"+right1, ":"+right2, a.Blocksize),
		)
	case a.Blocksize == 2*b.Blocksize:
		// a's primary string and b's secondary string share a blocksize.
		return c.score(":"+left1, ":"+right2, a.Blocksize)
	default:
		return c.score(":"+right1, ":"+left2, b.Blocksize)
	}
}

// score rescales the edit distance of two comparison strings to 0-100.
// The multiply/divide order is part of the score's definition and must not
// be simplified: every step is an integer division.
func (c *Comparator) score(s1, s2 string, blocksize int) int {
	len1, len2 := len(s1), len(s2)
	if len1 > c.length || len2 > c.length {
		return 0
	}

	d := c.distance(s1, s2)
	scaled := d * c.length / (len1 + len2) * 100 / c.length

	// Above 100 is a terrible match, not a perfect one.
	if scaled >= 100 {
		return 0
	}
	percent := 100 - scaled

	// Small blocksizes on short strings would otherwise exaggerate. The cap
	// can only bite below 100, so the multiply never sees a large factor.
	if q := blocksize / c.minBlocksize; q < 100 {
		if limit := q * min(len1, len2); percent > limit {
			percent = limit
		}
	}
	return percent
}

// eliminateSequences collapses every run of four or more identical
// characters to three. Long runs carry almost no information and would
// otherwise dominate the edit distance.
func eliminateSequences(s string) string {
	if len(s) <= 3 {
		return s
	}

	out := make([]byte, 3, len(s))
	copy(out, s[:3])
	for i := 3; i < len(s); i++ {
		ch := s[i]
		n := len(out)
		if ch != out[n-1] || ch != out[n-2] || ch != out[n-3] {
			out = append(out, ch)
		}
	}
	return string(out)
}
