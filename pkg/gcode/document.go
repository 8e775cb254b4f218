package gcode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

// Tag marks lines a pass generated, so later passes can find them.
type Tag uint8

const (
	TagNone Tag = 0
	// TagStartup marks the generated approach sequence.
	TagStartup Tag = 1 << iota
	// TagInterleave marks transition and raise lines between objects.
	TagInterleave
	// TagInfo marks informational comments added to the file.
	TagInfo
)

// Line is one physical line without its terminator.
type Line struct {
	Text string
	Tag  Tag
}

// Document is an ordered, mutable sequence of lines plus the line-ending
// convention needed to write it back byte for byte.
type Document struct {
	Lines []Line

	// Ending is "\n" or "\r\n".
	Ending string

	// FinalNewline records whether the last line was terminated.
	FinalNewline bool
}

// maxLineSize bounds a single line; thumbnails are the longest lines slicers write.
const maxLineSize = 16 * 1024 * 1024

// NewDocument builds a document from lines without terminators.
func NewDocument(lines ...string) *Document {
	doc := &Document{Ending: "\n", FinalNewline: true}
	doc.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		doc.Lines = append(doc.Lines, Line{Text: l})
	}
	return doc
}

// Parse reads a whole file. The ending convention is taken from the
// first terminated line.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes splits data into lines.
func ParseBytes(data []byte) (*Document, error) {
	doc := &Document{Ending: "\n"}
	if len(data) == 0 {
		return doc, nil
	}
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		doc.Ending = "\r\n"
	}
	doc.FinalNewline = data[len(data)-1] == '\n'

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		doc.Lines = append(doc.Lines, Line{Text: strings.TrimSuffix(sc.Text(), "\r")})
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, fmt.Errorf("%w: %d bytes", gerrors.ErrLineTooLong, maxLineSize)
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// WriteTo writes the document with its original ending convention.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	ending := d.Ending
	if ending == "" {
		ending = "\n"
	}
	for i, l := range d.Lines {
		n, err := bw.WriteString(l.Text)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if i < len(d.Lines)-1 || d.FinalNewline {
			n, err = bw.WriteString(ending)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, bw.Flush()
}

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// Texts returns the text of every line.
func (d *Document) Texts() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Text
	}
	return out
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.Lines) }

// FirstTagged returns the index of the first line carrying tag, or -1.
func (d *Document) FirstTagged(tag Tag) int {
	for i, l := range d.Lines {
		if l.Tag&tag != 0 {
			return i
		}
	}
	return -1
}

// LastTagged returns the index of the last line carrying tag, or -1.
func (d *Document) LastTagged(tag Tag) int {
	for i := len(d.Lines) - 1; i >= 0; i-- {
		if d.Lines[i].Tag&tag != 0 {
			return i
		}
	}
	return -1
}

func tagged(tag Tag, texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = Line{Text: t, Tag: tag}
	}
	return out
}
