package gcode

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

func TestParseBytes_RoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		lines        []string
		ending       string
		finalNewline bool
	}{
		{"lf", "G28\nG1 X1\n", []string{"G28", "G1 X1"}, "\n", true},
		{"crlf", "G28\r\nG1 X1\r\n", []string{"G28", "G1 X1"}, "\r\n", true},
		{"no final newline", "G28\r\nG1 X1", []string{"G28", "G1 X1"}, "\r\n", false},
		{"blank lines", "a\n\n\nb\n", []string{"a", "", "", "b"}, "\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseBytes([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseBytes: %v", err)
			}
			if got := doc.Texts(); !reflect.DeepEqual(got, tt.lines) {
				t.Errorf("lines = %q, want %q", got, tt.lines)
			}
			if doc.Ending != tt.ending || doc.FinalNewline != tt.finalNewline {
				t.Errorf("ending %q final %v, want %q %v", doc.Ending, doc.FinalNewline, tt.ending, tt.finalNewline)
			}
			if got := string(doc.Bytes()); got != tt.input {
				t.Errorf("Bytes() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Len() != 0 || len(doc.Bytes()) != 0 {
		t.Errorf("empty input produced %d lines", doc.Len())
	}
}

func TestParse_LineTooLong(t *testing.T) {
	_, err := ParseBytes(bytes.Repeat([]byte("x"), maxLineSize+1))
	if !errors.Is(err, gerrors.ErrLineTooLong) {
		t.Errorf("err = %v, want ErrLineTooLong", err)
	}
}

func TestDocument_Tagged(t *testing.T) {
	doc := NewDocument("a", "b")
	doc.Lines = append(doc.Lines, tagged(TagStartup, "c", "d")...)

	if i := doc.FirstTagged(TagStartup); i != 2 {
		t.Errorf("FirstTagged = %d, want 2", i)
	}
	if i := doc.LastTagged(TagStartup); i != 3 {
		t.Errorf("LastTagged = %d, want 3", i)
	}
	if i := doc.FirstTagged(TagInterleave); i != -1 {
		t.Errorf("FirstTagged(interleave) = %d, want -1", i)
	}
}
