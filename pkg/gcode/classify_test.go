package gcode

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		dialect  Dialect
		category Category
	}{
		{"blank", "   ", DialectPrusa, Blank},
		{"z marker", ";Z:0.2", DialectPrusa, HeightMarker},
		{"height marker", ";HEIGHT:0.2", DialectPrusa, HeightMarker},
		{"progress marker", "M117 Layer 12", DialectPrusa, ProgressMarker},
		{"layer marker", ";LAYER:3", DialectPrusa, LayerMarker},
		{"config begin", "; prusaslicer_config = begin", DialectPrusa, ConfigBoundary},
		{"config end any case", "  ; PRUSASLICER_CONFIG = END ", DialectPrusa, ConfigBoundary},
		{"orca config begin", "; CONFIG_BLOCK_START", DialectOrca, ConfigBoundary},
		{"orca marker under prusa", "; CONFIG_BLOCK_START", DialectPrusa, Comment},
		{"object start", "; move to origin position for next object", DialectPrusa, ObjectStartMarker},
		{"header end", "; # # # # # # END Header", DialectPrusa, HeaderEndMarker},
		{"footer start", "; # # # # # # START Footer", DialectOrca, FooterStartMarker},
		{"generic layer zero move", "G1 Z.2 F7800.000 ; move to next layer (0)", DialectPrusa, GenericLayerZeroMove},
		{"approach move", "G1 X10 Y10 F7200 ; move to first skirt point", DialectPrusa, ApproachMoveCandidate},
		{"safe zone", "G1 X5 Y6 F9000 ; move to first infill point", DialectPrusa, SafeZoneMarker},
		{"extrusion", "G1 X1 Y2 E0.5", DialectPrusa, Other},
		{"comment", "; just a comment", DialectPrusa, Comment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.line, tt.dialect)
			if c.Category != tt.category {
				t.Errorf("Classify(%q) = %s, want %s", tt.line, c.Category, tt.category)
			}
		})
	}
}

func TestClassify_Payloads(t *testing.T) {
	c := Classify(";Z:0.20", DialectPrusa)
	if c.HeightKind != HeightZ || c.Height.String() != "0.2" {
		t.Errorf("z payload = %v %s", c.HeightKind, c.Height)
	}

	c = Classify(";HEIGHT:0.15", DialectPrusa)
	if c.HeightKind != HeightLayer {
		t.Errorf("height kind = %v, want HeightLayer", c.HeightKind)
	}

	c = Classify("; prusaslicer_config = end", DialectPrusa)
	if c.Boundary != BoundaryEnd {
		t.Errorf("boundary = %v, want end", c.Boundary)
	}

	c = Classify("M117 Layer 7", DialectPrusa)
	if c.Layer != 7 {
		t.Errorf("layer = %d, want 7", c.Layer)
	}

	c = Classify("G1 Z.2 F7800.000 ; move to next layer (0)", DialectPrusa)
	if c.Move.Z.String() != "0.2" || c.Move.Feed.String() != "7800" {
		t.Errorf("generic move = Z%s F%s", c.Move.Z, c.Move.Feed)
	}

	c = Classify("G1 X10.5 Y-3 F7200 ; move to first skirt point", DialectPrusa)
	if c.Move.XText != "10.5" || c.Move.YText != "-3" || c.Move.Feed.String() != "7200" {
		t.Errorf("approach move = %+v", c.Move)
	}

	c = Classify("G1 X10 Y10 ; move to first skirt point F999", DialectPrusa)
	if c.Move.Feed.Valid() {
		t.Errorf("feed inside the comment must be ignored, got %s", c.Move.Feed)
	}
}

func TestCodePart(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"G1 X1 ; move", "G1 X1 "},
		{"; comment", ""},
		{`M117 a\;b ; c`, `M117 a\;b `},
		{"G28", "G28"},
	}
	for _, tt := range tests {
		if got := CodePart(tt.line); got != tt.expected {
			t.Errorf("CodePart(%q) = %q, want %q", tt.line, got, tt.expected)
		}
	}
}

func TestParseDialect(t *testing.T) {
	for _, name := range DialectNames() {
		d, err := ParseDialect(name)
		if err != nil {
			t.Fatalf("ParseDialect(%q): %v", name, err)
		}
		if d.String() != name {
			t.Errorf("ParseDialect(%q).String() = %q", name, d.String())
		}
	}
	if _, err := ParseDialect("cura"); err == nil {
		t.Error("expected an error for an unknown dialect")
	}
}
