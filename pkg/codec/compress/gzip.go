// Package compress registers the compressing codecs. Import it for its
// side effect.
package compress

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/provide-io/spp/pkg/codec"
)

func init() {
	codec.Register(NewGzipCodec())
}

// GzipCodec compresses with gzip at the best compression level.
type GzipCodec struct {
	codec.BaseCodec
}

// NewGzipCodec creates a new gzip codec
func NewGzipCodec() *GzipCodec {
	return &GzipCodec{
		BaseCodec: codec.BaseCodec{
			CodecID:   codec.CodecGzip,
			CodecName: "gzip",
			Ext:       ".gz",
		},
	}
}

// Encode compresses a stream
func (c *GzipCodec) Encode(input io.Reader, output io.Writer) error {
	gw, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}

	if _, err := io.Copy(gw, input); err != nil {
		gw.Close()
		return fmt.Errorf("compressing stream: %w", err)
	}

	return gw.Close()
}

// Decode decompresses a stream
func (c *GzipCodec) Decode(input io.Reader, output io.Writer) error {
	gr, err := gzip.NewReader(input)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gr.Close()

	if _, err := io.Copy(output, gr); err != nil {
		return fmt.Errorf("decompressing stream: %w", err)
	}

	return nil
}
