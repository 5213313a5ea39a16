package lzw

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytepress/bytepress/bitio"
	"github.com/bytepress/bytepress/codec"
)

func roundTrip(t *testing.T, c Codec, data []byte) []byte {
	t.Helper()
	var enc bytes.Buffer
	require.NoError(t, c.Compress(&enc, bytes.NewReader(data)))

	var dec bytes.Buffer
	require.NoError(t, c.Decompress(&dec, bytes.NewReader(enc.Bytes())))
	require.Equal(t, data, dec.Bytes())
	return enc.Bytes()
}

func TestRoundTripTobeornot(t *testing.T) {
	roundTrip(t, Codec{}, []byte("TOBEORNOTTOBEORTOBEORNOT"))
}

func TestRoundTripKwKwK(t *testing.T) {
	// Runs of one symbol make the encoder emit indices it has only just
	// assigned, forcing the decoder through the next-slot special case.
	roundTrip(t, Codec{}, bytes.Repeat([]byte{'a'}, 100))
	roundTrip(t, Codec{}, []byte("abababababababababab"))
}

func TestRoundTripVaried(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	random := make([]byte, 10_000)
	rng.Read(random)

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	for _, data := range [][]byte{
		nil,
		[]byte("z"),
		all,
		[]byte(strings.Repeat("wabba wabba wabba wabba woo woo woo ", 100)),
		random,
	} {
		roundTrip(t, Codec{}, data)
	}
}

func TestRoundTripBlockMultiple(t *testing.T) {
	for _, n := range []int{64, 192} {
		roundTrip(t, Codec{}, bytes.Repeat([]byte{'k'}, n))
	}
}

func TestRoundTripFrozenDictionary(t *testing.T) {
	// Eight dictionary bits leave no room beyond the seeded single-byte
	// phrases; every index refers to the frozen table.
	data := []byte(strings.Repeat("deck the halls with boughs of holly ", 200))
	roundTrip(t, Codec{DictBits: 8, BlockBits: 5}, data)
}

func TestDictBitsClampedToEight(t *testing.T) {
	enc := roundTrip(t, Codec{DictBits: 4, BlockBits: 4}, []byte("clamp"))
	// Version byte, then five header bits carrying the clamped value 8.
	require.Equal(t, codec.Version, enc[0])
	require.Equal(t, byte(8), enc[1]>>3)
}

func TestBadParameters(t *testing.T) {
	var enc bytes.Buffer
	err := Codec{DictBits: 25, BlockBits: 6}.Compress(&enc, bytes.NewReader([]byte("x")))
	require.ErrorIs(t, err, codec.ErrHeaderInvalid)
	err = Codec{DictBits: 13, BlockBits: 30}.Compress(&enc, bytes.NewReader([]byte("x")))
	require.ErrorIs(t, err, codec.ErrHeaderInvalid)
}

func TestDecompressBadVersion(t *testing.T) {
	enc := roundTrip(t, Codec{}, []byte("hello hello"))
	enc[0] = 0xFE
	err := Codec{}.Decompress(io.Discard, bytes.NewReader(enc))
	require.ErrorIs(t, err, codec.ErrHeaderInvalid)
}

func TestDecompressFirstIndexUnassigned(t *testing.T) {
	// A block may not begin with an index the decoder has not assigned.
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	w.WriteByte(codec.Version)
	w.WriteBits(13, 5)
	w.WriteBits(6, 5)
	w.WriteBit(1)        // final block
	w.WriteBits(3, 6)    // three bytes
	w.WriteBits(300, 13) // only 0..255 are assigned
	require.NoError(t, w.Flush())

	err := Codec{}.Decompress(io.Discard, bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, codec.ErrHeaderInvalid)
}

func TestDecompressBadIndex(t *testing.T) {
	// Mid-block, an index past the next free slot is invalid.
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	w.WriteByte(codec.Version)
	w.WriteBits(13, 5)
	w.WriteBits(6, 5)
	w.WriteBit(1)        // final block
	w.WriteBits(4, 6)    // four bytes
	w.WriteBits('a', 13) // "a"
	w.WriteBits(999, 13) // next slot is 256; 999 is unreachable
	require.NoError(t, w.Flush())

	err := Codec{}.Decompress(io.Discard, bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, codec.ErrDictionaryIndex)
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("TOBEORNOTTOBEORTOBEORNOT"))
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{'a'}, 20))
	f.Fuzz(func(t *testing.T, data []byte) {
		var enc bytes.Buffer
		require.NoError(t, Codec{}.Compress(&enc, bytes.NewReader(data)))
		var dec bytes.Buffer
		require.NoError(t, Codec{}.Decompress(&dec, bytes.NewReader(enc.Bytes())))
		require.True(t, bytes.Equal(data, dec.Bytes()))
	})
}
