// Package lz77 implements a block-framed LZ77 codec over a circular sliding
// window. Each block is one lookahead-buffer's worth of input; inside a
// block, records are either a literal byte or a (length, position) reference
// into the search buffer followed by the next literal byte. A flag-1 block
// carrying its byte count, possibly zero, terminates the stream.
package lz77

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/codec"
)

// Reference defaults: a 512-byte search buffer and a 32-byte lookahead.
const (
	DefaultSearchBits    = 9
	DefaultLookaheadBits = 5

	maxSearchBits = 29
)

// Codec is the LZ77 compressor/decompressor. The zero value uses the
// default buffer sizes. SearchBits must be in [1, 29] and LookaheadBits in
// [1, SearchBits-1].
type Codec struct {
	SearchBits    int
	LookaheadBits int
}

func (c Codec) params() (sb, lb int, err error) {
	sb, lb = c.SearchBits, c.LookaheadBits
	if sb == 0 && lb == 0 {
		sb, lb = DefaultSearchBits, DefaultLookaheadBits
	}
	if err := validate(sb, lb); err != nil {
		return 0, 0, err
	}
	return sb, lb, nil
}

func validate(sb, lb int) error {
	if sb < 1 || sb > maxSearchBits || lb < 1 || lb >= sb {
		return errors.Wrapf(codec.ErrHeaderInvalid,
			"lz77: search bits %d, lookahead bits %d", sb, lb)
	}
	return nil
}

// Compress encodes src into dst.
func (c Codec) Compress(dst io.Writer, src io.Reader) error {
	sb, lb, err := c.params()
	if err != nil {
		return err
	}
	s := newState(sb, lb)

	w := bitio.NewWriter(dst)
	w.WriteByte(codec.Version)
	w.WriteBits(uint64(sb), 5)
	w.WriteBits(uint64(lb), 5)
	if err := w.Err(); err != nil {
		return err
	}

	for {
		n, err := s.readBlock(src)
		if err != nil {
			return err
		}
		if n == s.laheadSize {
			w.WriteBit(0)
		} else {
			w.WriteBit(1)
			w.WriteBits(uint64(n), lb)
		}
		if err := w.Err(); err != nil {
			return err
		}
		s.laheadEnd = s.add(s.laheadStart, n)

		for remaining := n; remaining > 0; {
			length, pos := s.findPrefix()
			// The byte after the match must still be inside the block.
			if length+1 > remaining {
				length = remaining - 1
			}
			next := s.win[s.add(s.laheadStart, length)]
			if length == 0 {
				w.WriteBit(0)
				w.WriteBits(uint64(next), 8)
			} else {
				w.WriteBit(1)
				w.WriteBits(uint64(length), lb)
				w.WriteBits(uint64(s.relative(pos)), sb)
				w.WriteBits(uint64(next), 8)
			}
			if err := w.Err(); err != nil {
				return err
			}
			s.laheadStart = s.add(s.laheadStart, length+1)
			s.slide()
			remaining -= length + 1
		}

		if n < s.laheadSize {
			break
		}
	}
	return w.Flush()
}

// Decompress decodes one LZ77 stream from src into dst.
func (c Codec) Decompress(dst io.Writer, src io.Reader) (err error) {
	r := bitio.NewReader(src)
	ver, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz77: reading version")
	}
	if ver != codec.Version {
		return errors.Wrapf(codec.ErrHeaderInvalid, "lz77: version %#02x", ver)
	}
	sbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz77: reading header")
	}
	lbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz77: reading header")
	}
	sb, lb := int(sbv), int(lbv)
	if err := validate(sb, lb); err != nil {
		return err
	}
	s := newState(sb, lb)
	out := bufio.NewWriter(dst)
	// Bytes decoded before an error still belong to the caller.
	defer func() {
		if ferr := out.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	for {
		flag, err := r.ReadBit()
		if err != nil {
			if err == io.EOF {
				return errors.Wrap(codec.ErrUnterminatedStream, "lz77")
			}
			return err
		}
		blockBytes := s.laheadSize
		if flag == 1 {
			v, err := r.ReadBits(lb)
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lz77: reading block size")
			}
			blockBytes = int(v)
		}

		for blockBytes > 0 {
			matched, err := r.ReadBit()
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lz77: reading record")
			}
			if matched == 0 {
				b, err := r.ReadByte()
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz77: reading literal")
				}
				if err := s.emit(out, b); err != nil {
					return err
				}
				blockBytes--
			} else {
				lv, err := r.ReadBits(lb)
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz77: reading match length")
				}
				pv, err := r.ReadBits(sb)
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz77: reading match position")
				}
				next, err := r.ReadByte()
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz77: reading record byte")
				}
				length := int(lv)
				if length == 0 || length+1 > blockBytes {
					return errors.Wrapf(codec.ErrHeaderInvalid,
						"lz77: match of %d bytes in a block with %d left", length, blockBytes)
				}
				// Copy byte by byte: the match may overlap the region
				// being produced.
				pos := s.add(s.searchStart, int(pv))
				for i := 0; i < length; i++ {
					if err := s.emit(out, s.win[pos]); err != nil {
						return err
					}
					pos = s.inc(pos)
				}
				if err := s.emit(out, next); err != nil {
					return err
				}
				blockBytes -= length + 1
			}
			s.slide()
		}

		if flag == 1 {
			break
		}
	}
	return nil
}
