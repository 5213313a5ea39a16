// Package lzw implements a block-framed LZW codec. The dictionary is
// pre-seeded with the 256 single-byte phrases, so the payload is a bare
// sequence of fixed-width indices; the decoder rebuilds phrases one step
// behind the encoder, handling the index-of-the-next-slot corner case.
// Block framing matches the lz77 and lz78 packages.
package lzw

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/chunk"
	"github.com/bytepress/bytepress/codec"
)

// Reference defaults: 8192 dictionary entries, 64-byte blocks.
const (
	DefaultDictBits  = 13
	DefaultBlockBits = 6

	// The seeded single-byte phrases need 256 slots, so the dictionary
	// never uses fewer than 8 bits per index.
	minDictBits = 8

	maxDictBits  = 24
	maxBlockBits = 29
)

// Codec is the LZW compressor/decompressor. The zero value uses the default
// sizes. DictBits below 8 are raised to 8; the maximum is 24. BlockBits
// must be in [1, 29].
type Codec struct {
	DictBits  int
	BlockBits int
}

func (c Codec) params() (db, bb int, err error) {
	db, bb = c.DictBits, c.BlockBits
	if db == 0 && bb == 0 {
		db, bb = DefaultDictBits, DefaultBlockBits
	}
	if db < minDictBits {
		db = minDictBits
	}
	if err := validate(db, bb); err != nil {
		return 0, 0, err
	}
	return db, bb, nil
}

func validate(db, bb int) error {
	if db < minDictBits || db > maxDictBits || bb < 1 || bb > maxBlockBits {
		return errors.Wrapf(codec.ErrHeaderInvalid,
			"lzw: dictionary bits %d, block bits %d", db, bb)
	}
	return nil
}

func seedDict(max int) *chunk.Dict {
	d := chunk.NewDict(max)
	for c := 0; c < 256; c++ {
		d.Insert([]byte{byte(c)})
	}
	return d
}

// Compress encodes src into dst.
func (c Codec) Compress(dst io.Writer, src io.Reader) error {
	db, bb, err := c.params()
	if err != nil {
		return err
	}
	blockSize := 1 << uint(bb)
	dict := seedDict(1 << uint(db))
	buf := make([]byte, blockSize)
	phrase := chunk.New(64)

	w := bitio.NewWriter(dst)
	w.WriteByte(codec.Version)
	w.WriteBits(uint64(db), 5)
	w.WriteBits(uint64(bb), 5)
	if err := w.Err(); err != nil {
		return err
	}

	for {
		n, err := readBlock(src, buf)
		if err != nil {
			return err
		}
		if n == blockSize {
			w.WriteBit(0)
		} else {
			w.WriteBit(1)
			w.WriteBits(uint64(n), bb)
		}
		if err := w.Err(); err != nil {
			return err
		}

		// The current phrase never carries across a block boundary.
		phrase.Reset()
		for pos := 0; pos < n; {
			phrase.PushBack(buf[pos])
			if _, ok := dict.Lookup(phrase.Bytes()); ok {
				pos++
				continue
			}
			dict.Insert(phrase.Bytes())
			idx, ok := dict.Lookup(phrase.Bytes()[:phrase.Len()-1])
			if !ok {
				return errors.Errorf("lzw: phrase prefix missing from dictionary")
			}
			if err := w.WriteBits(uint64(idx), db); err != nil {
				return err
			}
			phrase.Reset()
			phrase.PushBack(buf[pos])
			pos++
		}
		if phrase.Len() > 0 {
			idx, ok := dict.Lookup(phrase.Bytes())
			if !ok {
				return errors.Errorf("lzw: trailing phrase missing from dictionary")
			}
			if err := w.WriteBits(uint64(idx), db); err != nil {
				return err
			}
		}

		if n < blockSize {
			break
		}
	}
	return w.Flush()
}

// Decompress decodes one LZW stream from src into dst.
func (c Codec) Decompress(dst io.Writer, src io.Reader) (err error) {
	r := bitio.NewReader(src)
	ver, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lzw: reading version")
	}
	if ver != codec.Version {
		return errors.Wrapf(codec.ErrHeaderInvalid, "lzw: version %#02x", ver)
	}
	dbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lzw: reading header")
	}
	bbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lzw: reading header")
	}
	db, bb := int(dbv), int(bbv)
	if db < minDictBits {
		db = minDictBits
	}
	if err := validate(db, bb); err != nil {
		return err
	}
	blockSize := 1 << uint(bb)
	maxEntries := 1 << uint(db)
	dict := make([]*chunk.Chunk, 0, 256)
	for c := 0; c < 256; c++ {
		dict = append(dict, chunk.FromByte(byte(c)))
	}
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
				return errors.Wrap(codec.ErrUnterminatedStream, "lzw")
			}
			return err
		}
		blockBytes := blockSize
		if flag == 1 {
			v, err := r.ReadBits(bb)
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lzw: reading block size")
			}
			blockBytes = int(v)
		}
		if blockBytes == 0 {
			// Only a final block may be empty.
			break
		}

		// The first index of a block seeds the previous-phrase register
		// and must name an existing entry.
		pv, err := r.ReadBits(db)
		if err != nil {
			return errors.Wrap(codec.TranslateEOF(err), "lzw: reading index")
		}
		prev := int(pv)
		if prev >= len(dict) {
			return errors.Wrapf(codec.ErrHeaderInvalid,
				"lzw: block starts with unassigned index %d", prev)
		}
		x := dict[prev]
		if x.Len() > blockBytes {
			return errors.Wrapf(codec.ErrHeaderInvalid,
				"lzw: phrase of %d bytes in a block with %d left", x.Len(), blockBytes)
		}
		if _, err := out.Write(x.Bytes()); err != nil {
			return err
		}
		blockBytes -= x.Len()

		for blockBytes > 0 {
			iv, err := r.ReadBits(db)
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lzw: reading index")
			}
			idx := int(iv)
			switch {
			case idx < len(dict):
				x = dict[idx]
				grown := dict[prev].Clone()
				grown.PushBack(x.Front())
				if len(dict) < maxEntries {
					dict = append(dict, grown)
				}
			case idx == len(dict) && len(dict) < maxEntries:
				// The phrase being named is the one the encoder has just
				// inserted: the previous phrase plus its own first byte.
				x = dict[prev].Clone()
				x.PushBack(x.Front())
				dict = append(dict, x)
			default:
				return errors.Wrapf(codec.ErrDictionaryIndex,
					"lzw: index %d with %d entries", idx, len(dict))
			}
			if x.Len() > blockBytes {
				return errors.Wrapf(codec.ErrHeaderInvalid,
					"lzw: phrase of %d bytes in a block with %d left", x.Len(), blockBytes)
			}
			if _, err := out.Write(x.Bytes()); err != nil {
				return err
			}
			blockBytes -= x.Len()
			prev = idx
		}

		if flag == 1 {
			break
		}
	}
	return nil
}

// readBlock fills buf with as many bytes as r still has, up to len(buf).
// End of input is not an error.
func readBlock(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}
