// Package lz78 implements a block-framed LZ78 codec. Phrases are collected
// in an append-only dictionary that starts empty and freezes when full; a
// record is either a literal byte or a dictionary index plus the byte that
// follows the phrase. Block framing matches the lz77 package: a flag-1
// block carrying its byte count terminates the stream.
package lz78

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/chunk"
	"github.com/bytepress/bytepress/codec"
)

// Reference defaults: 16384 dictionary entries, 32-byte blocks.
const (
	DefaultDictBits  = 14
	DefaultBlockBits = 5

	maxDictBits  = 24
	maxBlockBits = 29
)

// Codec is the LZ78 compressor/decompressor. The zero value uses the
// default sizes. DictBits must be in [1, 24] and BlockBits in [1, 29].
type Codec struct {
	DictBits  int
	BlockBits int
}

func (c Codec) params() (db, bb int, err error) {
	db, bb = c.DictBits, c.BlockBits
	if db == 0 && bb == 0 {
		db, bb = DefaultDictBits, DefaultBlockBits
	}
	if err := validate(db, bb); err != nil {
		return 0, 0, err
	}
	return db, bb, nil
}

func validate(db, bb int) error {
	if db < 1 || db > maxDictBits || bb < 1 || bb > maxBlockBits {
		return errors.Wrapf(codec.ErrHeaderInvalid,
			"lz78: dictionary bits %d, block bits %d", db, bb)
	}
	return nil
}

// Compress encodes src into dst.
func (c Codec) Compress(dst io.Writer, src io.Reader) error {
	db, bb, err := c.params()
	if err != nil {
		return err
	}
	blockSize := 1 << uint(bb)
	dict := chunk.NewDict(1 << uint(db))
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

		pos := 0
		for pos < n {
			// Grow the phrase until it falls out of the dictionary or
			// the block ends.
			phrase.Reset()
			for pos < n {
				phrase.PushBack(buf[pos])
				pos++
				if _, ok := dict.Lookup(phrase.Bytes()); !ok {
					break
				}
			}
			// A new entry is added only if the dictionary has room and
			// the block still has unread bytes; the decoder applies the
			// same rule.
			if !dict.Full() && pos < n {
				dict.Insert(phrase.Bytes())
			}
			if phrase.Len() == 1 {
				w.WriteBit(0)
				w.WriteBits(uint64(phrase.Back()), 8)
			} else {
				idx, ok := dict.Lookup(phrase.Bytes()[:phrase.Len()-1])
				if !ok {
					return errors.Errorf("lz78: phrase prefix missing from dictionary")
				}
				w.WriteBit(1)
				w.WriteBits(uint64(idx), db)
				w.WriteBits(uint64(phrase.Back()), 8)
			}
			if err := w.Err(); err != nil {
				return err
			}
		}

		if n < blockSize {
			break
		}
	}
	return w.Flush()
}

// Decompress decodes one LZ78 stream from src into dst.
func (c Codec) Decompress(dst io.Writer, src io.Reader) (err error) {
	r := bitio.NewReader(src)
	ver, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz78: reading version")
	}
	if ver != codec.Version {
		return errors.Wrapf(codec.ErrHeaderInvalid, "lz78: version %#02x", ver)
	}
	dbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz78: reading header")
	}
	bbv, err := r.ReadBits(5)
	if err != nil {
		return errors.Wrap(codec.TranslateEOF(err), "lz78: reading header")
	}
	db, bb := int(dbv), int(bbv)
	if err := validate(db, bb); err != nil {
		return err
	}
	blockSize := 1 << uint(bb)
	maxEntries := 1 << uint(db)
	dict := make([]*chunk.Chunk, 0, maxEntries)
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
				return errors.Wrap(codec.ErrUnterminatedStream, "lz78")
			}
			return err
		}
		blockBytes := blockSize
		if flag == 1 {
			v, err := r.ReadBits(bb)
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lz78: reading block size")
			}
			blockBytes = int(v)
		}

		for blockBytes > 0 {
			known, err := r.ReadBit()
			if err != nil {
				return errors.Wrap(codec.TranslateEOF(err), "lz78: reading record")
			}
			var seq *chunk.Chunk
			if known == 0 {
				b, err := r.ReadByte()
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz78: reading literal")
				}
				seq = chunk.FromByte(b)
			} else {
				idxv, err := r.ReadBits(db)
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz78: reading index")
				}
				idx := int(idxv)
				if idx >= len(dict) {
					return errors.Wrapf(codec.ErrDictionaryIndex,
						"lz78: index %d with %d entries", idx, len(dict))
				}
				b, err := r.ReadByte()
				if err != nil {
					return errors.Wrap(codec.TranslateEOF(err), "lz78: reading record byte")
				}
				seq = dict[idx].Clone()
				seq.PushBack(b)
			}
			if seq.Len() > blockBytes {
				return errors.Wrapf(codec.ErrHeaderInvalid,
					"lz78: phrase of %d bytes in a block with %d left", seq.Len(), blockBytes)
			}
			if _, err := out.Write(seq.Bytes()); err != nil {
				return err
			}
			blockBytes -= seq.Len()
			if len(dict) < maxEntries && blockBytes > 0 {
				dict = append(dict, seq)
			}
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
