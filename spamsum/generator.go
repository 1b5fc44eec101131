// Package spamsum computes and compares context-triggered piecewise hashes
// (the SpamSum / ssdeep fuzzy hash).
//
// A signature is derived by running a rolling hash over the input and
// emitting one base64 symbol of a piecewise hash every time the rolling
// value hits a blocksize-dependent trigger. Small edits only disturb the
// symbols around them, so near-duplicate inputs keep most of their
// signature and score high under Comparator.
package spamsum

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	// DefaultSignatureLength is the maximum length of the primary string.
	DefaultSignatureLength = 64

	// DefaultMinBlocksize is the smallest blocksize the generator guesses.
	DefaultMinBlocksize = 3

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
)

// ErrInvalidOptions is returned by NewGenerator and NewComparator.
var ErrInvalidOptions = errors.New("spamsum: invalid options")

// Options tunes the signature geometry. Zero fields take the defaults.
type Options struct {
	// SignatureLength bounds the primary string; the secondary string is
	// bounded by half of it. Must be even and at least 2.
	SignatureLength int

	// MinBlocksize is the starting point of the blocksize guess and the
	// floor of the retry loop. Must be at least 1.
	MinBlocksize int
}

func (o Options) withDefaults() Options {
	if o.SignatureLength == 0 {
		o.SignatureLength = DefaultSignatureLength
	}
	if o.MinBlocksize == 0 {
		o.MinBlocksize = DefaultMinBlocksize
	}
	return o
}

func (o Options) validate() error {
	if o.SignatureLength < 2 || o.SignatureLength%2 != 0 {
		return fmt.Errorf("%w: signature length %d must be an even number >= 2", ErrInvalidOptions, o.SignatureLength)
	}
	if o.MinBlocksize < 1 {
		return fmt.Errorf("%w: min blocksize %d must be >= 1", ErrInvalidOptions, o.MinBlocksize)
	}
	return nil
}

// Generator produces signatures. It holds no per-call state and is safe for
// concurrent use.
type Generator struct {
	length       int
	minBlocksize int
}

// NewGenerator returns a Generator for the given options.
func NewGenerator(opts Options) (*Generator, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Generator{length: opts.SignatureLength, minBlocksize: opts.MinBlocksize}, nil
}

var defaultGenerator = &Generator{length: DefaultSignatureLength, minBlocksize: DefaultMinBlocksize}

// Generate hashes data with the default options.
func Generate(data []byte) Signature {
	return defaultGenerator.Generate(data)
}

// SignatureLength returns the configured primary string bound.
func (g *Generator) SignatureLength() int { return g.length }

// MinBlocksize returns the configured minimum blocksize.
func (g *Generator) MinBlocksize() int { return g.minBlocksize }

// Generate hashes data, choosing the blocksize automatically.
func (g *Generator) Generate(data []byte) Signature {
	return g.GenerateBlocksize(data, 0)
}

// GenerateBlocksize hashes data with a caller-chosen blocksize. A blocksize
// <= 0 selects it automatically. A forced blocksize is used as is, even when
// it is below the minimum, and is never retried.
func (g *Generator) GenerateBlocksize(data []byte, blocksize int) Signature {
	forced := blocksize > 0
	if !forced {
		blocksize = g.guessBlocksize(len(data))
	}

	for {
		left, right, emitted := g.pass(data, blocksize)

		// A too-small primary string means the guess overshot. Halve and
		// start over unless the caller pinned the blocksize or we are
		// already at the floor.
		if forced || blocksize <= g.minBlocksize || emitted >= g.length/2 {
			return Signature{Blocksize: blocksize, Left: left, Right: right}
		}
		blocksize /= 2
	}
}

// guessBlocksize returns the smallest minBlocksize*2^n whose expected piece
// count fits the signature length.
func (g *Generator) guessBlocksize(n int) int {
	bs := g.minBlocksize
	for bs*g.length < n {
		bs *= 2
	}
	return bs
}

// pass runs one full hashing pass at blocksize and returns the trimmed
// primary and secondary strings plus the number of symbols emitted into the
// primary string before the tail flush.
func (g *Generator) pass(data []byte, blocksize int) (string, string, int) {
	var (
		roll  rollingHash
		h     uint32
		left  = make([]byte, g.length)
		right = make([]byte, g.length/2)
		j, k  int
		acc1  = hashInit
		acc2  = hashInit
	)

	bs := uint64(blocksize)
	bs2 := 2 * bs

	for _, c := range data {
		h = roll.roll(c)
		acc1 = sumHash(c, acc1)
		acc2 = sumHash(c, acc2)

		if uint64(h)%bs == bs-1 {
			left[j] = alphabet[acc1%64]
			// Only reset while there is room. Once the last slot is
			// reached every further piece folds into it.
			if j < g.length-1 {
				acc1 = hashInit
				j++
			}
		}

		if uint64(h)%bs2 == bs2-1 {
			right[k] = alphabet[acc2%64]
			if k < g.length/2-1 {
				acc2 = hashInit
				k++
			}
		}
	}

	// The tail after the last trigger point always contributes a symbol.
	if h != 0 {
		left[j] = alphabet[acc1%64]
		right[k] = alphabet[acc2%64]
	}

	return string(bytes.TrimRight(left, "\x00")), string(bytes.TrimRight(right, "\x00")), j
}
