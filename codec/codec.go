// Package codec defines the contract shared by the compression algorithms:
// the Codec interface, the stream format version, and the error kinds a
// decoder can report.
package codec

import (
	"io"

	"github.com/pkg/errors"
)

// Version is the format version byte carried in every stream header.
const Version byte = 0x01

// A Codec compresses and decompresses one byte stream. Implementations hold
// no state between calls and are not safe for concurrent use of a single
// value. Codecs read and write algorithm headers and payloads only; the
// two-byte magic number envelope is handled by the caller.
type Codec interface {
	// Compress reads src until end of input and writes the compressed
	// stream to dst, including the final flush of any partial byte.
	Compress(dst io.Writer, src io.Reader) error

	// Decompress reads one compressed stream from src and writes the
	// decoded bytes to dst. On error the bytes already written to dst
	// remain; the stream is invalid as a whole.
	Decompress(dst io.Writer, src io.Reader) error
}

// Error kinds reported by the codecs. Call sites wrap these with context
// using pkg/errors; match with errors.Is.
var (
	// ErrHeaderInvalid reports a version mismatch, a bad magic number, a
	// malformed serialized tree, or an impossible parameter combination.
	ErrHeaderInvalid = errors.New("invalid stream header")

	// ErrUnexpectedEOF reports input that ended mid-header or mid-record.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")

	// ErrDictionaryIndex reports a phrase index beyond the entries the
	// decoder has built so far.
	ErrDictionaryIndex = errors.New("dictionary index out of range")

	// ErrUnterminatedStream reports input that ended without a final block.
	ErrUnterminatedStream = errors.New("stream has no final block")
)

// TranslateEOF converts the io package's end-of-input errors into
// ErrUnexpectedEOF, leaving other errors untouched. Codecs use it on reads
// that must not run into end of input.
func TranslateEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrUnexpectedEOF
	}
	return err
}
