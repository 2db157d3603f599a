package parser

import (
	"testing"

	"github.com/dgallion1/normcontrol/internal/doctree"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType string
		wantErr  bool
	}{
		{"thesis.docx", "*parser.DOCXParser", false},
		{"THESIS.DOCX", "*parser.DOCXParser", false},
		{"main.tex", "*parser.LaTeXParser", false},
		{"report.pdf", "", true},
		{"README", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := ForFile(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch p.(type) {
			case *DOCXParser:
				if tt.wantType != "*parser.DOCXParser" {
					t.Errorf("got DOCX parser for %s", tt.filename)
				}
			case *LaTeXParser:
				if tt.wantType != "*parser.LaTeXParser" {
					t.Errorf("got LaTeX parser for %s", tt.filename)
				}
			}
		})
	}
}

func TestForFormat_Unknown(t *testing.T) {
	if _, err := ForFormat(doctree.Format("odt")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("\u00a0Глава\tпервая\u202f"); got != "Глава первая" {
		t.Errorf("got %q", got)
	}
}
