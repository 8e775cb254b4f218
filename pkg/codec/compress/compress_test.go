package compress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/spp/pkg/codec"
)

func TestCodecs_RoundTrip(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "compress_test",
		Level: hclog.Trace,
	})

	input := []byte(strings.Repeat("G1 X10.5 Y20.25 E0.0321 ; perimeter\n", 2000))

	for _, name := range []string{"none", "gzip", "bzip2"} {
		t.Run(name, func(t *testing.T) {
			c, err := codec.Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", name, err)
			}

			encoded, err := codec.EncodeBytes(c, input)
			if err != nil {
				t.Fatalf("EncodeBytes: %v", err)
			}
			logger.Debug("📦 Encoded", "codec", c.Name(), "input", len(input), "output", len(encoded))

			if name != "none" && len(encoded) >= len(input) {
				t.Errorf("%s did not compress: %d >= %d", name, len(encoded), len(input))
			}

			decoded, err := codec.DecodeBytes(c, encoded)
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if !bytes.Equal(decoded, input) {
				t.Errorf("round trip through %s changed the data", name)
			}
		})
	}
}

func TestLookup_Aliases(t *testing.T) {
	tests := map[string]uint8{
		"":      codec.CodecNone,
		"GZ":    codec.CodecGzip,
		"bz2":   codec.CodecBzip2,
		"bzip2": codec.CodecBzip2,
	}
	for alias, id := range tests {
		c, err := codec.Lookup(alias)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", alias, err)
		}
		if c.ID() != id {
			t.Errorf("Lookup(%q) = 0x%02x, want 0x%02x", alias, c.ID(), id)
		}
	}
	if _, err := codec.Lookup("zstd"); err == nil {
		t.Error("expected an error for an unregistered codec")
	}
}

func TestForPath(t *testing.T) {
	tests := map[string]string{
		"print.gcode.bak":     "none",
		"print.gcode.bak.gz":  "gzip",
		"print.gcode.bak.bz2": "bzip2",
	}
	for path, want := range tests {
		if got := codec.ForPath(path).Name(); got != want {
			t.Errorf("ForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestDecode_Corrupt(t *testing.T) {
	for _, c := range []codec.Codec{NewGzipCodec(), NewBzip2Codec()} {
		if _, err := codec.DecodeBytes(c, []byte("not compressed")); err == nil {
			t.Errorf("%s accepted corrupt input", c.Name())
		}
	}
}
