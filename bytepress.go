// Package bytepress implements four classical lossless compression
// algorithms (Huffman, LZ77, LZ78 and LZW) behind one self-describing
// container format.
//
// Every compressed stream begins with a two-byte big-endian magic number
// naming the algorithm, so Decompress can decode a stream produced by any of
// the four encoders without out-of-band metadata. The algorithm packages
// can also be used directly when the caller wants non-default parameters
// and handles the envelope itself.
package bytepress

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/codec"
	"github.com/bytepress/bytepress/huffman"
	"github.com/bytepress/bytepress/lz77"
	"github.com/bytepress/bytepress/lz78"
	"github.com/bytepress/bytepress/lzw"
)

// An Algorithm selects one of the supported compression methods.
type Algorithm int

const (
	Huffman Algorithm = iota
	LZ77
	LZ78
	LZW
)

// Magic numbers, big-endian on the wire.
const (
	magicHuffman uint16 = 0x27AB
	magicLZ77    uint16 = 0xA5E8
	magicLZ78    uint16 = 0x7869
	magicLZW     uint16 = 0x8E83
)

func (a Algorithm) String() string {
	switch a {
	case Huffman:
		return "huffman"
	case LZ77:
		return "lz77"
	case LZ78:
		return "lz78"
	case LZW:
		return "lzw"
	}
	return "unknown"
}

// ParseAlgorithm maps the names huf, lz77, lz78 and lzw onto Algorithms.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "huf":
		return Huffman, nil
	case "lz77":
		return LZ77, nil
	case "lz78":
		return LZ78, nil
	case "lzw":
		return LZW, nil
	}
	return 0, errors.Errorf("bytepress: unknown algorithm %q", name)
}

func (a Algorithm) magic() (uint16, bool) {
	switch a {
	case Huffman:
		return magicHuffman, true
	case LZ77:
		return magicLZ77, true
	case LZ78:
		return magicLZ78, true
	case LZW:
		return magicLZW, true
	}
	return 0, false
}

func algorithmFor(magic uint16) (Algorithm, bool) {
	switch magic {
	case magicHuffman:
		return Huffman, true
	case magicLZ77:
		return LZ77, true
	case magicLZ78:
		return LZ78, true
	case magicLZW:
		return LZW, true
	}
	return 0, false
}

// NewCodec returns the algorithm's codec with its default parameters.
func (a Algorithm) NewCodec() codec.Codec {
	switch a {
	case Huffman:
		return huffman.Codec{}
	case LZ77:
		return lz77.Codec{}
	case LZ78:
		return lz78.Codec{}
	case LZW:
		return lzw.Codec{}
	}
	return nil
}

// Compress encodes src into dst with the given algorithm at its default
// parameters, prefixed by the algorithm's magic number. Huffman input must
// implement io.Seeker.
func Compress(dst io.Writer, src io.Reader, algo Algorithm) error {
	m, ok := algo.magic()
	if !ok {
		return errors.Errorf("bytepress: unknown algorithm %d", int(algo))
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], m)
	if _, err := dst.Write(hdr[:]); err != nil {
		return err
	}
	return algo.NewCodec().Compress(dst, src)
}

// Decompress reads the magic number from src, selects the matching codec
// and decodes the rest of the stream into dst.
func Decompress(dst io.Writer, src io.Reader) error {
	var hdr [2]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "bytepress: reading magic number")
	}
	m := binary.BigEndian.Uint16(hdr[:])
	algo, ok := algorithmFor(m)
	if !ok {
		return errors.Wrapf(codec.ErrHeaderInvalid, "bytepress: bad magic number %#04x", m)
	}
	return algo.NewCodec().Decompress(dst, src)
}
