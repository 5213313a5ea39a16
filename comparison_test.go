package bytepress

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// testCorpus is English-like text with a tail of binary noise, enough to
// give every codec some redundancy to find.
func testCorpus(tb testing.TB) []byte {
	tb.Helper()
	var b bytes.Buffer
	for i := 0; i < 200; i++ {
		b.WriteString("It was the best of times, it was the worst of times, ")
		b.WriteString("it was the age of wisdom, it was the age of foolishness. ")
	}
	rng := rand.New(rand.NewSource(42))
	noise := make([]byte, 4096)
	rng.Read(noise)
	b.Write(noise)
	return b.Bytes()
}

// TestComparisonRoundTrip runs the corpus through each of our codecs and
// through the established implementations, and reports the sizes side by
// side. The externals double as a sanity check that the corpus is
// representative.
func TestComparisonRoundTrip(t *testing.T) {
	data := testCorpus(t)

	for _, algo := range algorithms {
		enc := roundTrip(t, algo, data)
		t.Logf("%-8s %7d -> %7d bytes", algo, len(data), len(enc))
	}

	t.Logf("snappy   %7d -> %7d bytes", len(data), len(snappyCompress(data)))
	dec, err := snappy.Decode(nil, snappyCompress(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatal("snappy round trip mismatch")
	}

	lz4enc := lz4Compress(t, data)
	t.Logf("lz4      %7d -> %7d bytes", len(data), len(lz4enc))
	dec, err = io.ReadAll(lz4.NewReader(bytes.NewReader(lz4enc)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatal("lz4 round trip mismatch")
	}

	gzenc := gzipCompress(t, data)
	t.Logf("gzip     %7d -> %7d bytes", len(data), len(gzenc))
	zr, err := gzip.NewReader(bytes.NewReader(gzenc))
	if err != nil {
		t.Fatal(err)
	}
	dec, err = io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if err := zr.Close(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatal("gzip round trip mismatch")
	}

	zenc := zstdCompress(t, data)
	t.Logf("zstd     %7d -> %7d bytes", len(data), len(zenc))
	zdec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	dec, err = zdec.DecodeAll(zenc, nil)
	zdec.Close()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatal("zstd round trip mismatch")
	}

	benc := brotliCompress(t, data)
	t.Logf("brotli   %7d -> %7d bytes", len(data), len(benc))
	dec, err = io.ReadAll(brotli.NewReader(bytes.NewReader(benc)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatal("brotli round trip mismatch")
	}
}

func snappyCompress(data []byte) []byte {
	return snappy.Encode(nil, data)
}

func lz4Compress(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatal(err)
	}
	if err := w.Close(); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

func gzipCompress(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatal(err)
	}
	if err := w.Close(); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

func zstdCompress(tb testing.TB, data []byte) []byte {
	tb.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		tb.Fatal(err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		tb.Fatal(err)
	}
	return out
}

func brotliCompress(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatal(err)
	}
	if err := w.Close(); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

func benchData() []byte {
	return []byte(strings.Repeat("the seventeen little elephants marched in single file, ", 500))
}

func BenchmarkCompress(b *testing.B) {
	data := benchData()
	for _, algo := range algorithms {
		b.Run(algo.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := Compress(io.Discard, bytes.NewReader(data), algo); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
	b.Run("snappy", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			snappy.Encode(nil, data)
		}
	})
	b.Run("gzip", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			gzipCompress(b, data)
		}
	})
}

func BenchmarkDecompress(b *testing.B) {
	data := benchData()
	for _, algo := range algorithms {
		var enc bytes.Buffer
		if err := Compress(&enc, bytes.NewReader(data), algo); err != nil {
			b.Fatal(err)
		}
		b.Run(algo.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if err := Decompress(io.Discard, bytes.NewReader(enc.Bytes())); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
