package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

// Single-view text exports carry three preamble lines before the header.
const preambleLines = 3

// ZeroTolerance bounds |strain| for a cycle-boundary sample.
const ZeroTolerance = 1e-6

// ChannelColours are the colour-coded columns of a single-view export,
// renamed on read to echo.StrainChannels in the same order.
var ChannelColours = []string{"YELLOW", "CYAN", "GREEN", "MAGENTA", "BLUE", "RED"}

var frameRatePattern = regexp.MustCompile(`\d+(\.\d+)?`)

type txtReader struct{}

func (txtReader) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func (txtReader) Read(path string, opt Options) (*echo.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, echo.Fail(path, echo.StageRead, fmt.Errorf("open export: %w", err))
	}
	defer f.Close()

	id := utils.CaseID(path)
	fps, tr, err := ReadSingleView(f)
	if err != nil {
		return nil, echo.Fail(path, echo.StageParse, err)
	}
	if math.IsNaN(fps) {
		log.WithField("case", id).Warn("frame rate not found in preamble")
	}
	avc, err := opt.Timings.Lookup(id)
	if err != nil {
		return nil, echo.Fail(path, echo.StageTiming, err)
	}
	log.WithFields(log.Fields{"case": id, "fps": fps, "avc_s": avc, "samples": tr.Len()}).Debug("parsed single-view export")
	return &echo.Case{
		ID:        id,
		Source:    path,
		Kind:      echo.KindSingleView,
		FrameRate: fps,
		AVC:       avc,
		Traces:    map[string]*table.Trace{echo.SingleViewTrace: tr},
	}, nil
}

// ReadSingleView parses a tab-delimited single-view export: the frame rate
// from the preamble and the strain table trimmed to one cardiac cycle.
func ReadSingleView(r io.Reader) (float64, *table.Trace, error) {
	br := bufio.NewReader(r)
	var preamble []string
	for i := 0; i < preambleLines; i++ {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return 0, nil, echo.Malformed("preamble line %d missing", i+1)
		}
		preamble = append(preamble, strings.TrimRight(line, "\r\n"))
	}
	fps := parseFrameRate(preamble[preambleLines-1])

	cr := csv.NewReader(br)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read table: %w", echo.ErrMalformedExport, err)
	}
	tr, err := strainTable(records)
	if err != nil {
		return 0, nil, err
	}
	cycle, err := TrimCycle(tr)
	if err != nil {
		return 0, nil, err
	}
	return fps, cycle, nil
}

// parseFrameRate reads the frame rate from characters 3..7 of the third
// preamble line, falling back to the first number on the line.
func parseFrameRate(line string) float64 {
	if len(line) >= 7 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(line[3:7]), 64); err == nil {
			return math.Round(v)
		}
	}
	if m := frameRatePattern.FindString(line); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return math.Round(v)
		}
	}
	return math.NaN()
}

// strainTable builds the raw single-view trace. Colour columns are renamed
// to anatomical channels and any column holding an empty value is dropped.
func strainTable(records [][]string) (*table.Trace, error) {
	if len(records) == 0 {
		return nil, echo.Malformed("single-view table has no header")
	}
	header := records[0]
	body := records[1:]

	rename := make(map[string]string, len(ChannelColours))
	for i, c := range ChannelColours {
		rename[c] = echo.StrainChannels[i]
	}

	var cols []int
	var names []string
	for j := 1; j < len(header); j++ {
		name := strings.TrimSpace(header[j])
		if name == "" || !columnComplete(body, j) {
			continue
		}
		if n, ok := rename[strings.ToUpper(name)]; ok {
			name = n
		}
		cols = append(cols, j)
		names = append(names, name)
	}
	for _, want := range echo.StrainChannels {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			return nil, echo.Malformed("single-view table lacks channel %q", want)
		}
	}

	tr := table.NewTrace(echo.SingleViewTrace, names)
	for i, rec := range body {
		ts := field(rec, 0)
		if ts == "" {
			continue
		}
		t, err := strconv.ParseFloat(ts, 64)
		if err != nil {
			return nil, echo.Malformed("row %d: time %q is not a number", i+1, ts)
		}
		vals := make([]float64, len(cols))
		for k, j := range cols {
			v, err := strconv.ParseFloat(field(rec, j), 64)
			if err != nil {
				return nil, echo.Malformed("row %d: %s value %q is not a number", i+1, names[k], field(rec, j))
			}
			vals[k] = v
		}
		if err := tr.AddRow(t, vals); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// columnComplete reports whether every data row with a time value has a
// value in column j.
func columnComplete(body [][]string, j int) bool {
	for _, rec := range body {
		if field(rec, 0) == "" {
			continue
		}
		if field(rec, j) == "" {
			return false
		}
	}
	return true
}

// ErrNoCycle reports a single-view table without two all-zero samples.
var ErrNoCycle = errors.New("cycle boundary not found")

// TrimCycle restricts a single-view trace to the window between the first
// two samples where every strain channel is within ZeroTolerance of zero,
// and rebases time to start at zero.
func TrimCycle(tr *table.Trace) (*table.Trace, error) {
	idx := make([]int, len(echo.StrainChannels))
	for k, name := range echo.StrainChannels {
		idx[k] = tr.ColumnIndex(name)
		if idx[k] < 0 {
			return nil, fmt.Errorf("%w: %q", table.ErrColumnNotFound, name)
		}
	}
	var bounds []float64
	for i, row := range tr.Values {
		zero := true
		for _, j := range idx {
			if math.Abs(row[j]) >= ZeroTolerance {
				zero = false
				break
			}
		}
		if zero {
			bounds = append(bounds, tr.Time[i])
			if len(bounds) == 2 {
				break
			}
		}
	}
	if len(bounds) < 2 {
		return nil, fmt.Errorf("%w: %w: %d all-zero samples", echo.ErrMalformedExport, ErrNoCycle, len(bounds))
	}
	return tr.Window(bounds[0], bounds[1]), nil
}
