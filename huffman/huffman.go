// Package huffman implements a two-pass Huffman codec. The encoder reads
// its input twice, once to build the frequency table and once to emit codes,
// so the input must be seekable. The stream header carries the format
// version, the total byte count, and the serialized coding tree; the decoder
// needs nothing else.
package huffman

import (
	"bufio"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/codec"
)

// ErrNotSeekable is returned by Compress when the input cannot be rewound
// for the second pass.
var ErrNotSeekable = errors.New("huffman: compressing requires a seekable input")

// Codec is the Huffman compressor/decompressor. It has no parameters.
type Codec struct{}

// Compress encodes src into dst. src must implement io.Seeker.
func (Codec) Compress(dst io.Writer, src io.Reader) error {
	rs, ok := src.(io.ReadSeeker)
	if !ok {
		return ErrNotSeekable
	}
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	var freq Frequencies
	if err := freq.CountFrom(rs); err != nil {
		return err
	}
	if freq.Total() > math.MaxUint32 {
		return errors.Errorf("huffman: input of %d bytes exceeds the 32-bit symbol count", freq.Total())
	}
	tree := Build(&freq)
	book := tree.Codes()

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return err
	}

	w := bitio.NewWriter(dst)
	if err := w.WriteByte(codec.Version); err != nil {
		return err
	}
	if err := w.WriteBits(freq.Total(), 32); err != nil {
		return err
	}
	if err := tree.WriteTo(w); err != nil {
		return err
	}

	// With zero or one distinct symbols the header alone describes the
	// stream; there is no payload.
	if book.Size() > 1 {
		br := bufio.NewReader(rs)
		for {
			b, err := br.ReadByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			for _, bit := range book[b] {
				if err := w.WriteBit(bit); err != nil {
					return err
				}
			}
		}
	}
	return w.Flush()
}

// Decompress decodes one Huffman stream from src into dst.
func (Codec) Decompress(dst io.Writer, src io.Reader) (err error) {
	r := bitio.NewReader(src)
	ver, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "huffman: reading version")
	}
	if ver != codec.Version {
		return errors.Wrapf(codec.ErrHeaderInvalid, "huffman: version %#02x", ver)
	}
	total, err := r.ReadBits(32)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "huffman: reading symbol count")
	}
	if total == 0 {
		return nil
	}
	tree, err := ReadTree(r)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(dst)
	// Bytes decoded before an error still belong to the caller.
	defer func() {
		if ferr := out.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if tree.RootIsLeaf() {
		sym := tree.Symbol()
		for i := uint64(0); i < total; i++ {
			if err := out.WriteByte(sym); err != nil {
				return err
			}
		}
		return nil
	}

	var produced uint64
	for produced < total {
		b, err := r.ReadBit()
		if err != nil {
			return errors.Wrap(codec.TranslateEOF(err), "huffman: reading code stream")
		}
		if err := tree.Step(b); err != nil {
			return err
		}
		if tree.AtLeaf() {
			if err := out.WriteByte(tree.Symbol()); err != nil {
				return err
			}
			produced++
			tree.ResetCursor()
		}
	}
	return nil
}
