// Package run records each clean invocation as a JSON manifest on disk.
package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/recordloom-cli/internal/normalize"
	"github.com/KaramelBytes/recordloom-cli/internal/utils"
)

const manifestExt = ".json"

// ErrNotFound is returned when no manifest matches an ID.
var ErrNotFound = errors.New("run not found")

// Manifest describes one clean run: where data came from, where it went and
// what the normalizer reported.
type Manifest struct {
	ID         string            `json:"id"`
	Input      string            `json:"input"`
	Output     string            `json:"output,omitempty"`
	Rows       int               `json:"rows"`
	Columns    []string          `json:"columns"`
	Unresolved int               `json:"unresolved_dates"`
	Report     *normalize.Report `json:"report,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`

	// Not serialized: directory the manifest is stored in
	dir string `json:"-"`
}

// New starts an in-memory manifest with a fresh ID. Call Finish then Save.
func New(dir, input, output string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Input:     input,
		Output:    output,
		StartedAt: time.Now().UTC(),
		dir:       dir,
	}
}

// Finish records the outcome of the run.
func (m *Manifest) Finish(columns []string, rep *normalize.Report) {
	m.Columns = append([]string(nil), columns...)
	m.Report = rep
	if rep != nil {
		m.Rows = rep.Rows
		m.Unresolved = rep.UnresolvedTotal()
	}
	m.FinishedAt = time.Now().UTC()
}

// Path returns the manifest's file location.
func (m *Manifest) Path() string { return filepath.Join(m.dir, m.ID+manifestExt) }

// Duration is the wall time between start and finish.
func (m *Manifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// Save writes the manifest using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("runs directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}

// Load reads a manifest by full ID or unique ID prefix.
func Load(dir, id string) (*Manifest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var matches []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, manifestExt) {
			continue
		}
		base := strings.TrimSuffix(name, manifestExt)
		if base == id {
			matches = []string{base}
			break
		}
		if strings.HasPrefix(base, id) {
			matches = append(matches, base)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return read(dir, matches[0])
	default:
		return nil, fmt.Errorf("run id %q is ambiguous (%d matches)", id, len(matches))
	}
}

// List loads every manifest in dir, newest first. A missing dir yields none.
func List(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}
	var out []*Manifest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), manifestExt) {
			continue
		}
		m, err := read(dir, strings.TrimSuffix(e.Name(), manifestExt))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func read(dir, id string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, id+manifestExt))
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", id, err)
	}
	m.dir = dir
	return &m, nil
}
