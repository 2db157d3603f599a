package parser

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/dgallion1/normcontrol/internal/violation"
)

const referenceSty = "% reference\r\n\\RequirePackage{graphicx}\r\n\r\n\\onehalfspacing % spacing\r\n\\setlength{\\parindent}{1.25cm}\r\n"

func TestStyLines(t *testing.T) {
	want := []string{`\RequirePackage{graphicx}`, `\onehalfspacing`, `\setlength{\parindent}{1.25cm}`}
	if got := StyLines([]byte(referenceSty)); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCompareSty(t *testing.T) {
	tests := []struct {
		name     string
		uploaded string
		want     []string
	}{
		{
			name:     "identical modulo comments and blank lines",
			uploaded: "\\RequirePackage{graphicx}\n\\onehalfspacing\n\n  \\setlength{\\parindent}{1.25cm}  % indent\n",
			want:     nil,
		},
		{
			name:     "changed line",
			uploaded: "\\RequirePackage{graphicx}\n\\doublespacing\n\\setlength{\\parindent}{1.25cm}\n",
			want:     []string{fmt.Sprintf(msgStyLineMismatch, 2, `\onehalfspacing`, `\doublespacing`)},
		},
		{
			name:     "missing lines",
			uploaded: "\\RequirePackage{graphicx}\n",
			want:     []string{fmt.Sprintf(msgStyShorter, 2, 2, `\onehalfspacing`)},
		},
		{
			name:     "extra line",
			uploaded: "\\RequirePackage{graphicx}\n\\onehalfspacing\n\\setlength{\\parindent}{1.25cm}\n\\usepackage{xcolor}\n",
			want:     []string{fmt.Sprintf(msgStyLonger, 1, 4, `\usepackage{xcolor}`)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := violation.New()
			CompareSty([]byte(tt.uploaded), []byte(referenceSty), errs)
			if got := errs.Items(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
