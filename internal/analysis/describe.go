package analysis

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Describe builds the descriptor row of a case, keyed by the case ID. The
// case is only read.
func Describe(c *echo.Case) (*table.Row, error) {
	if c == nil {
		return nil, fmt.Errorf("describe: nil case")
	}
	var (
		row *table.Row
		err error
	)
	switch c.Kind {
	case echo.KindXML:
		row, err = describeFull(c)
	case echo.KindSingleView:
		row, err = describeSingleView(c)
	default:
		err = fmt.Errorf("%w: case kind %q", echo.ErrUnsupported, c.Kind)
	}
	if err != nil {
		return nil, echo.Fail(c.Source, echo.StageDescribe, err)
	}
	log.WithFields(log.Fields{"case": c.ID, "columns": row.Len()}).Debug("described case")
	return row, nil
}

// describeFull merges General, flattened Segments, per-view frame rates,
// strain descriptors of the three views and the global descriptors.
func describeFull(c *echo.Case) (*table.Row, error) {
	row := table.NewRow(c.ID)
	if c.General != nil {
		row.Merge(c.General)
	}
	if c.Segments != nil {
		row.Merge(c.Segments.Flatten(c.ID))
	}
	frameRates(row, c)

	var channels []*table.Trace
	for _, v := range echo.Views {
		tr, ok := c.StrainTrace(v)
		if !ok {
			return nil, echo.Malformed("%s missing", echo.TraceName(echo.FamilyStrain, v))
		}
		ds, err := StrainDescriptors(tr, c.AVC)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tr.Name, err)
		}
		FlattenDescriptors(row, ds)
		channels = append(channels, tr)
	}

	gs := c.Global.Strain
	if gs == nil || len(gs.Columns) == 0 {
		return nil, echo.Malformed("%s has no strain channel", echo.TableGlobalTraces)
	}
	g, err := GlobalStrain(gs.Time, gs.ColumnAt(0), c.AVC)
	if err != nil {
		return nil, err
	}
	g.Flatten(row)
	row.SetNumber(ColGLSPSI, signCell(gs.Time, gs.ColumnAt(0), g.AVCTime))
	for _, tr := range channels {
		FlattenSigns(row, tr, g.AVCTime)
	}
	return row, nil
}

// describeSingleView reports the header frame rate, the six channel
// descriptors and the GLOBAL channel descriptors of a text export.
func describeSingleView(c *echo.Case) (*table.Row, error) {
	tr, ok := c.Trace(echo.SingleViewTrace)
	if !ok {
		return nil, echo.Malformed("single-view trace missing")
	}
	row := table.NewRow(c.ID)
	row.SetNumber(SingleViewFrameRateColumn, c.FrameRate)

	strain, err := tr.Select(echo.StrainChannels...)
	if err != nil {
		return nil, err
	}
	ds, err := StrainDescriptors(strain, c.AVC)
	if err != nil {
		return nil, err
	}
	FlattenDescriptors(row, ds)

	global, err := tr.Select(echo.GlobalChannel)
	if err != nil {
		return nil, err
	}
	g, err := GlobalStrain(global.Time, global.ColumnAt(0), c.AVC)
	if err != nil {
		return nil, err
	}
	g.Flatten(row)
	FlattenSigns(row, global, g.AVCTime)
	FlattenSigns(row, strain, g.AVCTime)
	return row, nil
}
