package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

type xmlReader struct{}

func (xmlReader) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xml")
}

func (xmlReader) Read(path string, opt Options) (*echo.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, echo.Fail(path, echo.StageRead, fmt.Errorf("open export: %w", err))
	}
	defer f.Close()
	rows, err := ReadSpreadsheetML(f, opt.DataTag)
	if err != nil {
		return nil, echo.Fail(path, echo.StageRead, fmt.Errorf("%w: %w", echo.ErrMalformedExport, err))
	}
	raw, err := Segment(rows)
	if err != nil {
		return nil, echo.Fail(path, echo.StageSegment, err)
	}
	c, err := BuildCase(path, raw)
	if err != nil {
		return nil, echo.Fail(path, echo.StageParse, err)
	}
	if err := resolveAVC(c, opt); err != nil {
		return nil, echo.Fail(path, echo.StageTiming, err)
	}
	log.WithFields(log.Fields{
		"case":        c.ID,
		"embedded_id": c.EmbeddedID,
		"avc_s":       c.AVC,
		"tables":      len(raw),
	}).Debug("parsed full export")
	return c, nil
}

// BuildCase parses every segmented sub-table of a full export. The AVC is
// taken from the General table (milliseconds).
func BuildCase(path string, raw RawTables) (*echo.Case, error) {
	c := &echo.Case{
		ID:     utils.CaseID(path),
		Source: path,
		Kind:   echo.KindXML,
		Traces: make(map[string]*table.Trace),
	}

	rt, err := raw.Get(echo.TableGeneral)
	if err != nil {
		return nil, err
	}
	g, err := parseGeneral(rt)
	if err != nil {
		return nil, err
	}
	c.General = g.row
	c.EmbeddedID = g.id
	c.AVC = 0.001 * g.avcMs

	if rt, err = raw.Get(echo.TableSegments); err != nil {
		return nil, err
	}
	if c.Segments, err = parseSegments(rt); err != nil {
		return nil, err
	}

	// Every table between Segments and Global Traces is time-indexed.
	for _, name := range echo.TableNames[2 : len(echo.TableNames)-1] {
		rt, err := raw.Get(name)
		if err != nil {
			return nil, err
		}
		tr, err := parseTrace(rt)
		if err != nil {
			return nil, err
		}
		c.Traces[name] = tr
	}

	if rt, err = raw.Get(echo.TableGlobalTraces); err != nil {
		return nil, err
	}
	if c.Global, err = parseGlobal(rt); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveAVC prefers an external timing entry over the embedded value.
func resolveAVC(c *echo.Case, opt Options) error {
	if opt.Timings == nil {
		return nil
	}
	avc, err := opt.Timings.Lookup(c.ID)
	if err != nil {
		if errors.Is(err, echo.ErrMissingTiming) {
			log.WithField("case", c.ID).Debug("no external timing, using embedded AVC")
			return nil
		}
		return err
	}
	c.AVC = avc
	return nil
}
