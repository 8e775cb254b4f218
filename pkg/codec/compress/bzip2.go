package compress

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/provide-io/spp/pkg/codec"
)

func init() {
	codec.Register(NewBzip2Codec())
}

// Bzip2Codec compresses with bzip2. G-code compresses far better with it
// than with gzip.
type Bzip2Codec struct {
	codec.BaseCodec
	Level int
}

// NewBzip2Codec creates a new bzip2 codec at level 9
func NewBzip2Codec() *Bzip2Codec {
	return &Bzip2Codec{
		BaseCodec: codec.BaseCodec{
			CodecID:   codec.CodecBzip2,
			CodecName: "bzip2",
			Ext:       ".bz2",
		},
		Level: 9,
	}
}

// Encode compresses a stream
func (c *Bzip2Codec) Encode(input io.Reader, output io.Writer) error {
	bw, err := bzip2.NewWriter(output, &bzip2.WriterConfig{Level: c.Level})
	if err != nil {
		return fmt.Errorf("creating bzip2 writer: %w", err)
	}

	if _, err := io.Copy(bw, input); err != nil {
		bw.Close()
		return fmt.Errorf("compressing stream: %w", err)
	}

	return bw.Close()
}

// Decode decompresses a stream
func (c *Bzip2Codec) Decode(input io.Reader, output io.Writer) error {
	br, err := bzip2.NewReader(input, &bzip2.ReaderConfig{})
	if err != nil {
		return fmt.Errorf("creating bzip2 reader: %w", err)
	}
	defer br.Close()

	if _, err := io.Copy(output, br); err != nil {
		return fmt.Errorf("decompressing stream: %w", err)
	}

	return nil
}
