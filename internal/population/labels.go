package population

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/KaramelBytes/echoloom-cli/internal/dataset"
	"github.com/KaramelBytes/echoloom-cli/internal/table"
)

// LabelColumn is the dataset column holding a case's label.
const LabelColumn = "label"

// Labels maps case IDs to clinical labels.
type Labels map[string]string

// LoadLabels reads a label spreadsheet (.xlsx or .csv) with ID and label
// columns, matched case-insensitively.
func LoadLabels(path string) (Labels, error) {
	records, err := dataset.ReadRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty label sheet", path)
	}
	idCol, labelCol := -1, -1
	for j, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case strings.ToLower(dataset.IDColumn):
			idCol = j
		case LabelColumn:
			labelCol = j
		}
	}
	if idCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%s: need %q and %q columns, have %v", path, dataset.IDColumn, LabelColumn, records[0])
	}
	out := make(Labels)
	for _, rec := range records[1:] {
		if idCol >= len(rec) || labelCol >= len(rec) {
			continue
		}
		id, label := strings.TrimSpace(rec[idCol]), strings.TrimSpace(rec[labelCol])
		if id == "" || label == "" {
			continue
		}
		out[id] = label
	}
	log.WithFields(log.Fields{"file": path, "labels": len(out)}).Debug("loaded labels")
	return out, nil
}

// Lookup finds the label of a case by its full ID, then by the part
// before the first underscore.
func (l Labels) Lookup(id string) (string, bool) {
	if v, ok := l[id]; ok {
		return v, true
	}
	v, ok := l[strings.SplitN(id, "_", 2)[0]]
	return v, ok
}

// Apply returns the labelled cases as a new dataset with a label cell
// appended to each row, plus the IDs that had no label.
func Apply(d *dataset.Dataset, labels Labels) (*dataset.Dataset, []string) {
	out := dataset.New()
	var missing []string
	for _, r := range d.Rows() {
		label, ok := labels.Lookup(r.ID)
		if !ok {
			missing = append(missing, r.ID)
			continue
		}
		c := r.Clone(r.ID)
		c.Set(LabelColumn, table.Text(label))
		out.Add(c)
	}
	return out, missing
}

// Group is the set of cases sharing a label.
type Group struct {
	Label string
	IDs   []string
}

// Groups splits a labelled dataset by label, sorted by label.
func Groups(d *dataset.Dataset) []Group {
	byLabel := make(map[string][]string)
	for _, r := range d.Rows() {
		v, ok := r.Get(LabelColumn)
		if !ok {
			continue
		}
		label := v.String()
		byLabel[label] = append(byLabel[label], r.ID)
	}
	out := make([]Group, 0, len(byLabel))
	for label, ids := range byLabel {
		out = append(out, Group{Label: label, IDs: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
