package lz77

import (
	"bufio"
	"io"
)

// state is the circular analysis window shared by the encoder and decoder:
// a search region of up to searchSize bytes immediately behind the lookahead
// region. All cursor arithmetic is modulo windowSize.
type state struct {
	searchSize  int
	laheadSize  int
	windowSize  int
	win         []byte
	searchStart int
	laheadStart int
	laheadEnd   int
}

func newState(searchBits, laheadBits int) *state {
	s := &state{
		searchSize: 1 << uint(searchBits),
		laheadSize: 1 << uint(laheadBits),
	}
	s.windowSize = s.searchSize + s.laheadSize
	s.win = make([]byte, s.windowSize)
	return s
}

func (s *state) inc(n int) int { return (n + 1) % s.windowSize }

func (s *state) add(n, m int) int { return (n + m) % s.windowSize }

// relative converts an absolute window position into a position relative to
// the start of the search region.
func (s *state) relative(pos int) int {
	if pos >= s.searchStart {
		return pos - s.searchStart
	}
	return s.windowSize - s.searchStart + pos
}

// searchLen is the current size of the search region, smaller than
// searchSize while the stream has just begun.
func (s *state) searchLen() int {
	if s.laheadStart >= s.searchStart {
		return s.laheadStart - s.searchStart
	}
	return s.windowSize - s.searchStart + s.laheadStart
}

// slide drags searchStart behind laheadStart so the search region never
// exceeds searchSize.
func (s *state) slide() {
	if s.searchLen() > s.searchSize {
		if s.laheadStart >= s.searchSize {
			s.searchStart = s.laheadStart - s.searchSize
		} else {
			s.searchStart = s.windowSize - s.searchSize + s.laheadStart
		}
	}
}

// findPrefix scans the search region for the longest prefix of the
// lookahead region, earliest occurrence winning ties. The match may extend
// past the search region into the lookahead itself. A zero length means no
// byte of the prefix occurs in the search region.
func (s *state) findPrefix() (maxL, maxP int) {
	limit := s.searchLen()
	pos := s.searchStart
	for scanned := 0; scanned < limit; {
		for pos != s.laheadStart && s.win[pos] != s.win[s.laheadStart] {
			pos = s.inc(pos)
			scanned++
		}
		if pos == s.laheadStart {
			return
		}
		start := pos
		la := s.laheadStart
		for la != s.laheadEnd && s.win[pos] == s.win[la] {
			pos = s.inc(pos)
			la = s.inc(la)
			scanned++
		}
		if l := s.dist(s.laheadStart, la); l > maxL {
			maxL, maxP = l, start
		}
		// Resume one past this candidate's start so that occurrences
		// beginning inside it are tried too.
		pos = s.inc(start)
		scanned = s.dist(s.searchStart, pos)
	}
	return
}

// dist is the circular distance from from to to.
func (s *state) dist(from, to int) int {
	if to >= from {
		return to - from
	}
	return s.windowSize - from + to
}

// readBlock fills the lookahead region with up to laheadSize bytes from r,
// wrapping around the end of the window when needed, and returns the number
// of bytes read. End of input is not an error.
func (s *state) readBlock(r io.Reader) (int, error) {
	n := 0
	first := s.laheadSize
	if wrap := s.windowSize - s.laheadStart; first > wrap {
		first = wrap
	}
	k, err := io.ReadFull(r, s.win[s.laheadStart:s.laheadStart+first])
	n += k
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	if rest := s.laheadSize - first; rest > 0 {
		k, err = io.ReadFull(r, s.win[:rest])
		n += k
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// emit appends one decoded byte at the head of the lookahead region and
// writes it to the output.
func (s *state) emit(out *bufio.Writer, b byte) error {
	s.win[s.laheadStart] = b
	s.laheadStart = s.inc(s.laheadStart)
	return out.WriteByte(b)
}
