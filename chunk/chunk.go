// Package chunk provides the phrase unit of the dictionary coders: an owned,
// growable byte sequence with a content hash, and an insertion-ordered
// dictionary of phrases keyed by content.
package chunk

import (
	"bytes"

	"github.com/pierrec/xxHash/xxHash64"
)

const hashSeed = 0

// Hash returns the xxHash64 content hash of p.
func Hash(p []byte) uint64 {
	return xxHash64.Checksum(p, hashSeed)
}

// A Chunk is an owned, growable byte sequence.
type Chunk struct {
	b []byte
}

// New returns an empty chunk with the given capacity hint.
func New(capacity int) *Chunk {
	return &Chunk{b: make([]byte, 0, capacity)}
}

// FromByte returns a chunk holding the single byte c.
func FromByte(c byte) *Chunk {
	return &Chunk{b: []byte{c}}
}

// FromBytes returns a chunk holding a copy of p.
func FromBytes(p []byte) *Chunk {
	return &Chunk{b: append([]byte(nil), p...)}
}

// Len returns the number of bytes in the chunk.
func (c *Chunk) Len() int { return len(c.b) }

// Bytes returns the chunk's contents. The slice aliases the chunk's storage
// and is valid only until the next PushBack or Reset.
func (c *Chunk) Bytes() []byte { return c.b }

// PushBack appends one byte, growing the storage as needed.
func (c *Chunk) PushBack(x byte) { c.b = append(c.b, x) }

// Reset truncates the chunk to length zero, keeping its storage.
func (c *Chunk) Reset() { c.b = c.b[:0] }

// Front returns the first byte. The chunk must not be empty.
func (c *Chunk) Front() byte { return c.b[0] }

// Back returns the last byte. The chunk must not be empty.
func (c *Chunk) Back() byte { return c.b[len(c.b)-1] }

// Append appends the contents of o.
func (c *Chunk) Append(o *Chunk) { c.b = append(c.b, o.b...) }

// Clone returns an independent copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	return FromBytes(c.b)
}

// Equal reports whether the two chunks hold the same bytes.
func (c *Chunk) Equal(o *Chunk) bool { return bytes.Equal(c.b, o.b) }

// Compare compares the chunks lexicographically, like bytes.Compare.
func (c *Chunk) Compare(o *Chunk) int { return bytes.Compare(c.b, o.b) }

// Sum64 returns the content hash of the chunk.
func (c *Chunk) Sum64() uint64 { return Hash(c.b) }
