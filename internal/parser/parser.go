package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/violation"
)

// ErrUnreadable wraps failures to open or decode an input document.
var ErrUnreadable = errors.New("unreadable document")

// Parser extracts a structural model from raw document bytes. Violations
// noticed while parsing are appended to errs.
type Parser interface {
	Parse(data []byte, filename string, errs *violation.List) (*doctree.Model, error)
}

// SupportedExtensions maps file extensions to the format they are parsed as.
var SupportedExtensions = map[string]doctree.Format{
	".docx": doctree.FormatDOCX,
	".tex":  doctree.FormatLaTeX,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := SupportedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	return ForFormat(format)
}

// ForFormat returns the parser of a source format.
func ForFormat(format doctree.Format) (Parser, error) {
	switch format {
	case doctree.FormatDOCX:
		return &DOCXParser{}, nil
	case doctree.FormatLaTeX:
		return &LaTeXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2007", " ", "\t", " ")

// normalizeText NFC-normalizes s, turns non-breaking spaces and tabs into
// plain spaces and trims it.
func normalizeText(s string) string {
	return strings.TrimSpace(spaceReplacer.Replace(norm.NFC.String(s)))
}
