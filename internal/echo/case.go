// Package echo holds the per-case context shared by the export readers and
// the descriptor engines.
package echo

import (
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// Kind identifies the export shape a case was read from.
type Kind string

const (
	KindXML        Kind = "xml"
	KindSingleView Kind = "single_view"
)

// View is an apical acquisition.
type View string

const (
	View2CH   View = "2CH"
	View4CH   View = "4CH"
	ViewAPLAX View = "APLAX"
)

// Views lists the full-export views in export order.
var Views = []View{View2CH, View4CH, ViewAPLAX}

// Names of the thirteen sub-tables of a full export, in export order.
const (
	TableGeneral      = "General"
	TableSegments     = "Segments"
	TablePressure     = "Pressure Trace"
	TableGlobalTraces = "Global Traces"
)

// Trace families of a full export.
const (
	FamilyStrain      = "Strain Traces"
	FamilyWork        = "Work Traces"
	FamilyFibreStress = "Fibre Stress Traces"
)

// TraceName returns the sub-table name of a trace family for a view,
// e.g. "Strain Traces 4CH".
func TraceName(family string, v View) string { return family + " " + string(v) }

// TableNames is the fixed, ordered list of sub-tables in a full export.
var TableNames = []string{
	TableGeneral, TableSegments,
	TraceName(FamilyStrain, View2CH), TraceName(FamilyStrain, View4CH), TraceName(FamilyStrain, ViewAPLAX),
	TraceName(FamilyWork, View2CH), TraceName(FamilyWork, View4CH), TraceName(FamilyWork, ViewAPLAX),
	TraceName(FamilyFibreStress, View2CH), TraceName(FamilyFibreStress, View4CH), TraceName(FamilyFibreStress, ViewAPLAX),
	TablePressure, TableGlobalTraces,
}

// GlobalTraces holds the three whole-chamber channels of a full export.
type GlobalTraces struct {
	Strain      *table.Trace
	Work        *table.Trace
	FibreStress *table.Trace
}

// Case is one converted patient record. Readers build it completely and
// the descriptor engines only read it.
type Case struct {
	ID         string // file base name, the dataset key
	EmbeddedID string // General "ID" field of a full export
	Source     string
	Kind       Kind
	// FrameRate is the acquisition frame rate in frames/second. For full
	// exports it is 0 and the per-view average is derived from the traces.
	FrameRate float64
	// AVC is the aortic valve closure time in seconds.
	AVC float64

	General  *table.Row      // full export only
	Segments *table.Labelled // full export only
	// Traces holds every time-indexed table by sub-table name. A single
	// view export stores its one table under SingleViewTrace.
	Traces map[string]*table.Trace
	Global GlobalTraces
}

// SingleViewTrace is the Traces key of a single-view text export.
const SingleViewTrace = "Single View Strain"

// GlobalChannel is the whole-view strain column of a single-view export.
const GlobalChannel = "GLOBAL"

// StrainChannels are the six segment channels of a single-view export.
var StrainChannels = []string{
	"basal_inferoseptum", "mid_inferoseptum", "apical_inferoseptum",
	"apical_anterolateral", "mid_anterolateral", "basal_anterolateral",
}

// Trace returns a time-indexed table by name.
func (c *Case) Trace(name string) (*table.Trace, bool) {
	tr, ok := c.Traces[name]
	return tr, ok && tr != nil
}

// StrainTrace returns the strain trace of a view in a full export.
func (c *Case) StrainTrace(v View) (*table.Trace, bool) {
	return c.Trace(TraceName(FamilyStrain, v))
}
