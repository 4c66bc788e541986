package parser

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/timing"
)

// Options controls how exports are read.
type Options struct {
	// DataTag is the SpreadsheetML element holding cell text.
	DataTag string
	// Timings supplies valve-closure times. Required for single-view
	// exports; for full exports it overrides the embedded AVC when the case
	// is listed.
	Timings *timing.Table
}

// DefaultOptions returns the settings matching the vendor export.
func DefaultOptions() Options {
	return Options{DataTag: "Data"}
}

// Reader defines an export reader implementation.
type Reader interface {
	CanParse(filename string) bool
	Read(path string, opt Options) (*echo.Case, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ParseFile selects a reader based on filename and converts the export into
// a Case. Failures are returned as *echo.CaseError.
func ParseFile(path string, opt Options) (*echo.Case, error) {
	for _, r := range registry {
		if r.CanParse(path) {
			return r.Read(path, opt)
		}
	}
	return nil, echo.Fail(path, echo.StageRead, fmt.Errorf("%w: %s", echo.ErrUnsupported, filepath.Ext(path)))
}

// Supported reports whether any reader handles the file name.
func Supported(path string) bool {
	for _, r := range registry {
		if r.CanParse(path) {
			return true
		}
	}
	return false
}

func init() {
	// Register default readers
	Register(xmlReader{})
	Register(txtReader{})
}
