// Command bytepress compresses and decompresses files or standard streams
// with the Huffman, LZ77, LZ78 or LZW algorithm. Decompression detects the
// algorithm from the stream's magic number.
package main

import (
	"bufio"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bytepress/bytepress"
)

// version gets set during build.
var version = "0.0.0"

type cli struct {
	Compress  string `kong:"short='c',placeholder='FILE',xor='input',help='Compress FILE. Use - for stdin.'"`
	Extract   string `kong:"short='x',placeholder='FILE',xor='input',help='Decompress FILE. Use - for stdin.'"`
	Output    string `kong:"short='o',default='-',placeholder='FILE',help='Write the result to FILE. Use - for stdout.'"`
	Algorithm string `kong:"short='a',default='lzw',enum='huf,lz77,lz78,lzw',help='Compression algorithm: huf, lz77, lz78 or lzw. Ignored when decompressing.'"`
	Verbose   bool   `kong:"short='v',help='Enable debug logging.'"`

	Version kong.VersionFlag `kong:"short='V',help='Show version and exit.'"`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("bytepress"),
		kong.Description("Compress and decompress streams with Huffman, LZ77, LZ78 or LZW."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	logger := newLogger(args.Verbose)
	defer logger.Sync()

	if err := run(&args, logger); err != nil {
		logger.Error("bytepress failed", zap.Error(err))
		kctx.Exit(1)
	}
}

func run(args *cli, logger *zap.Logger) error {
	compressing := args.Compress != ""
	input := args.Extract
	if compressing {
		input = args.Compress
	}
	if input == "" {
		// Neither -c nor -x: decompress from stdin.
		input = "-"
	}

	var algo bytepress.Algorithm
	if compressing {
		a, err := bytepress.ParseAlgorithm(args.Algorithm)
		if err != nil {
			return err
		}
		algo = a
		if algo == bytepress.Huffman && input == "-" {
			return errors.New("huffman cannot compress from a stream; choose a file")
		}
	}

	in, closeIn, err := openInput(input)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(args.Output)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(out)
	if compressing {
		logger.Debug("compressing",
			zap.String("input", input),
			zap.String("output", args.Output),
			zap.Stringer("algorithm", algo))
		err = bytepress.Compress(bw, in, algo)
	} else {
		logger.Debug("decompressing",
			zap.String("input", input),
			zap.String("output", args.Output))
		err = bytepress.Decompress(bw, in)
	}
	if err != nil {
		closeOut()
		return err
	}
	if err := bw.Flush(); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", name)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(name string) (io.Writer, func() error, error) {
	if name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", name)
	}
	return f, f.Close, nil
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
