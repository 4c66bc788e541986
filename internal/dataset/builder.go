package dataset

import (
	"fmt"
	"io"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/KaramelBytes/echoloom-cli/internal/analysis"
	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/parser"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Options controls a dataset build.
type Options struct {
	Parse parser.Options
	// GLSDir receives the per-case mean global traces; empty disables them.
	GLSDir string
	// Excel also writes .xlsx copies of the outputs.
	Excel bool
	// SkipErrors records failing cases in the manifest and continues.
	SkipErrors bool
	// Progress receives one line per case; nil is silent.
	Progress io.Writer
}

// Convert reads one export and describes it.
func Convert(path string, opt parser.Options) (*echo.Case, *table.Row, error) {
	c, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, nil, err
	}
	row, err := analysis.Describe(c)
	if err != nil {
		return nil, nil, err
	}
	return c, row, nil
}

// Builder converts export files one after another into a Dataset.
type Builder struct {
	opt      Options
	Dataset  *Dataset
	Manifest *Manifest
}

// NewBuilder returns a builder with an empty dataset and a new manifest.
func NewBuilder(opt Options) *Builder {
	return &Builder{opt: opt, Dataset: New(), Manifest: NewManifest()}
}

// Add converts one file and merges its row. With SkipErrors a failing
// case is logged and recorded, and Add returns nil.
func (b *Builder) Add(path string) error {
	c, row, err := Convert(path, b.opt.Parse)
	if err == nil && b.opt.GLSDir != "" {
		_, err = WriteMeanGlobalTraces(b.opt.GLSDir, c.ID, analysis.MeanGlobalTraces(c), b.opt.Excel)
		err = echo.Fail(path, echo.StageDescribe, err)
	}
	if err != nil {
		b.Manifest.Failed(path, err)
		if b.opt.SkipErrors {
			log.WithError(err).WithField("file", filepath.Base(path)).Warn("skipping case")
			return nil
		}
		return err
	}
	b.Dataset.Add(row)
	b.Manifest.Succeeded(c)
	return nil
}

// Build converts every file in order, reporting progress.
func (b *Builder) Build(files []string) error {
	total := len(files)
	for i, path := range files {
		if b.opt.Progress != nil {
			fmt.Fprintf(b.opt.Progress, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
		}
		if err := b.Add(path); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the combined tables and the manifest into dir.
func (b *Builder) Save(dir, name string) ([]string, error) {
	paths, err := b.Dataset.Save(dir, name, b.opt.Excel)
	if err != nil {
		return paths, err
	}
	b.Manifest.Outputs = paths
	if err := b.Manifest.Save(dir); err != nil {
		return paths, err
	}
	return paths, nil
}
