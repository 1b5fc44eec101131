package spamsum

const (
	// rollingWindow is the number of trailing bytes the rolling hash covers.
	rollingWindow = 7

	hashPrime uint32 = 0x01000193
	hashInit  uint32 = 0x28021967
)

// rollingHash is an Adler-style rolling checksum over the last
// rollingWindow bytes. h1 is the window sum, h2 the position-weighted sum
// and h3 a shift/xor accumulator that keeps the value spread out for large
// blocksizes. All arithmetic wraps modulo 2^32.
//
// The zero value is ready to use. A rollingHash must not be shared between
// concurrent passes.
type rollingHash struct {
	window [rollingWindow]uint32
	h1     uint32
	h2     uint32
	h3     uint32
	pos    int // n mod rollingWindow
}

// roll feeds c into the window and returns the new hash value.
func (r *rollingHash) roll(c byte) uint32 {
	v := uint32(c)

	r.h2 = r.h2 - r.h1 + rollingWindow*v

	r.h1 = r.h1 + v - r.window[r.pos]
	r.window[r.pos] = v
	r.pos++
	if r.pos == rollingWindow {
		r.pos = 0
	}

	r.h3 = (r.h3 << 5) ^ v

	return r.h1 + r.h2 + r.h3
}

// sumHash is the FNV-style piecewise hash that is reset at every trigger
// point.
func sumHash(c byte, h uint32) uint32 {
	return (h * hashPrime) ^ uint32(c)
}
