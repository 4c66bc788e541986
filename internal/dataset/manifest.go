package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/echoloom-cli/internal/echo"
	"github.com/KaramelBytes/echoloom-cli/internal/utils"
)

const manifestFileName = "manifest.json"

// Case statuses recorded in the manifest.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// CaseRecord is the manifest entry of one input file.
type CaseRecord struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Kind   echo.Kind `json:"kind,omitempty"`
	Status string    `json:"status"`
	Stage  string    `json:"stage,omitempty"`
	Error  string    `json:"error,omitempty"`
	AVC    float64   `json:"avc_s,omitempty"`
}

// Manifest records one dataset run on disk.
type Manifest struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Outputs   []string     `json:"outputs"`
	Cases     []CaseRecord `json:"cases"`
}

// NewManifest starts a run with a fresh run ID.
func NewManifest() *Manifest {
	now := time.Now()
	return &Manifest{RunID: uuid.NewString(), StartedAt: now, UpdatedAt: now}
}

// Succeeded records a converted case.
func (m *Manifest) Succeeded(c *echo.Case) {
	m.Cases = append(m.Cases, CaseRecord{ID: c.ID, Source: c.Source, Kind: c.Kind, Status: StatusOK, AVC: c.AVC})
	m.UpdatedAt = time.Now()
}

// Failed records a case that produced no row.
func (m *Manifest) Failed(path string, err error) {
	rec := CaseRecord{ID: utils.CaseID(path), Source: path, Status: StatusFailed, Error: err.Error()}
	var ce *echo.CaseError
	if errors.As(err, &ce) {
		rec.Stage = string(ce.Stage)
		rec.Error = ce.Err.Error()
	}
	m.Cases = append(m.Cases, rec)
	m.UpdatedAt = time.Now()
}

// Counts returns the number of converted and failed cases.
func (m *Manifest) Counts() (ok, failed int) {
	for _, c := range m.Cases {
		if c.Status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Save writes manifest.json into dir using an atomic write.
func (m *Manifest) Save(dir string) error {
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, manifestFileName), data)
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
