// Package codec holds the reversible byte transformations applied to
// backup copies.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Codec identifiers. The value is stable; it is written to the log and
// used to pick the backup extension.
const (
	// No transformation - plain copy
	CodecNone = 0x00

	// Compression codecs (0x10-0x2F)
	CodecGzip  = 0x10
	CodecBzip2 = 0x13
)

// Codec is one reversible transformation.
type Codec interface {
	// ID returns the codec identifier (e.g., CodecGzip)
	ID() uint8

	// Name returns the name used on the command line
	Name() string

	// Extension returns the suffix appended to encoded files, "" for none
	Extension() string

	// Encode transforms input into output
	Encode(input io.Reader, output io.Writer) error

	// Decode reverses Encode
	Decode(input io.Reader, output io.Writer) error
}

// BaseCodec provides the identity half of a Codec.
type BaseCodec struct {
	CodecID   uint8
	CodecName string
	Ext       string
}

func (c *BaseCodec) ID() uint8 {
	return c.CodecID
}

func (c *BaseCodec) Name() string {
	return c.CodecName
}

func (c *BaseCodec) Extension() string {
	return c.Ext
}

// Registry maps codec IDs to implementations
var Registry = make(map[uint8]Codec)

// Register registers a codec implementation
func Register(c Codec) {
	Registry[c.ID()] = c
}

// Get retrieves a codec by ID
func Get(id uint8) (Codec, error) {
	c, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown codec: 0x%02x", id)
	}
	return c, nil
}

var aliases = map[string]string{
	"":      "none",
	"off":   "none",
	"plain": "none",
	"gz":    "gzip",
	"bz2":   "bzip2",
	"bz":    "bzip2",
}

// Lookup retrieves a codec by name or alias.
func Lookup(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	for _, c := range Registry {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown codec: %q (known: %s)", name, strings.Join(Names(), ", "))
}

// ForPath picks the codec whose extension ends path. Paths without a
// known extension get the identity codec.
func ForPath(path string) Codec {
	for _, c := range Registry {
		if ext := c.Extension(); ext != "" && strings.HasSuffix(path, ext) {
			return c
		}
	}
	return Identity
}

// Names lists the registered codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for _, c := range Registry {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// EncodeBytes runs c over an in-memory buffer.
func EncodeBytes(c Codec, input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(bytes.NewReader(input), &buf); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.Name(), err)
	}
	return buf.Bytes(), nil
}

// DecodeBytes reverses EncodeBytes.
func DecodeBytes(c Codec, input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Decode(bytes.NewReader(input), &buf); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.Name(), err)
	}
	return buf.Bytes(), nil
}

// Identity copies bytes unchanged.
var Identity Codec = &identityCodec{BaseCodec{CodecID: CodecNone, CodecName: "none"}}

type identityCodec struct {
	BaseCodec
}

func (c *identityCodec) Encode(input io.Reader, output io.Writer) error {
	_, err := io.Copy(output, input)
	return err
}

func (c *identityCodec) Decode(input io.Reader, output io.Writer) error {
	_, err := io.Copy(output, input)
	return err
}

func init() {
	Register(Identity)
}
