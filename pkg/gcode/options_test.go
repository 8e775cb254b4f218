package gcode

import (
	"errors"
	"testing"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr error
	}{
		{"defaults", func(*Options) {}, nil},
		{"ease-in zero", func(o *Options) { o.EaseInFactor = 0 }, gerrors.ErrInvalidOption},
		{"bar width zero", func(o *Options) { o.Progress = ProgressBar; o.BarWidth = 0 }, gerrors.ErrInvalidOption},
		{"bar char too long", func(o *Options) { o.Progress = ProgressBar; o.BarChar = "##" }, gerrors.ErrInvalidOption},
		{"bar char unicode", func(o *Options) { o.Progress = ProgressBar; o.BarChar = "█" }, nil},
		{"bar width ignored without bar", func(o *Options) { o.BarWidth = 0 }, nil},
		{"budget zero", func(o *Options) {
			o.Interleave.Enabled = true
			o.Interleave.HeightBudget = ParseNumber("0")
		}, gerrors.ErrInvalidOption},
		{"budget invalid", func(o *Options) {
			o.Interleave.Enabled = true
			o.Interleave.HeightBudget = ParseNumber("tall")
		}, gerrors.ErrInvalidOption},
		{"obscure with stripping", func(o *Options) {
			o.ObscureConfig = true
			o.Comments = CommentsStripTrailing
		}, gerrors.ErrConflictingMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseModes(t *testing.T) {
	for _, m := range []ApproachMode{ApproachXYFirst, ApproachCombined, ApproachNone} {
		if got, err := ParseApproachMode(m.String()); err != nil || got != m {
			t.Errorf("ParseApproachMode(%q) = %v, %v", m, got, err)
		}
	}
	for _, m := range []CommentMode{CommentsKeep, CommentsStripTrailing, CommentsStripAll} {
		if got, err := ParseCommentMode(m.String()); err != nil || got != m {
			t.Errorf("ParseCommentMode(%q) = %v, %v", m, got, err)
		}
	}
	for _, m := range []ProgressMode{ProgressNone, ProgressBar, ProgressLayerOfTotal, ProgressPercent} {
		if got, err := ParseProgressMode(m.String()); err != nil || got != m {
			t.Errorf("ParseProgressMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseProgressMode("spinner"); !errors.Is(err, gerrors.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}
