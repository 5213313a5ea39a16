package huffman

import (
	"bufio"
	"io"
)

// Frequencies is a byte-occurrence histogram: a memoryless model of the
// input stream used to weight the coding tree.
type Frequencies struct {
	counts [256]uint64
	total  uint64
}

// Add records one occurrence of b.
func (f *Frequencies) Add(b byte) {
	f.counts[b]++
	f.total++
}

// Count returns the number of occurrences recorded for b.
func (f *Frequencies) Count(b byte) uint64 { return f.counts[b] }

// Total returns the number of bytes recorded.
func (f *Frequencies) Total() uint64 { return f.total }

// Distinct returns the number of byte values with a nonzero count.
func (f *Frequencies) Distinct() int {
	n := 0
	for _, c := range f.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Probability returns the relative frequency of b, or 0 if nothing has been
// recorded.
func (f *Frequencies) Probability(b byte) float64 {
	if f.total == 0 {
		return 0
	}
	return float64(f.counts[b]) / float64(f.total)
}

// CountFrom tallies every byte of r until end of input.
func (f *Frequencies) CountFrom(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		f.Add(b)
	}
}
