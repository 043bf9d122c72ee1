package journal

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/dshills/devboot/internal/inipatch"
	"github.com/dshills/devboot/internal/reconcile"
)

// Kind labels an entry.
type Kind string

const (
	KindPatch     Kind = "ini-patch"
	KindReconcile Kind = "reconcile"
	KindScaffold  Kind = "scaffold"
)

// Entry is one journal record.
type Entry struct {
	Kind      Kind             `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
	Patch     *inipatch.Result `json:"patch,omitempty"`
	Plan      *reconcile.Plan  `json:"plan,omitempty"`
	Project   string           `json:"project,omitempty"`
	Target    string           `json:"target,omitempty"`
}

// Journal stores entries as JSON files in a directory.
type Journal struct {
	dir     string
	enabled bool
	now     func() time.Time
}

// New creates a Journal. If dir is empty, uses the default state directory.
func New(enabled bool, dir string) (*Journal, error) {
	if !enabled {
		return &Journal{enabled: false, now: time.Now}, nil
	}
	if dir == "" {
		d, err := defaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	return &Journal{dir: dir, enabled: true, now: time.Now}, nil
}

// Record stores e, stamping CreatedAt when it is zero.
func (j *Journal) Record(e Entry) error {
	if !j.enabled {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling journal entry: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.json", e.CreatedAt.UTC().Format("20060102T150405.000000000"), e.Kind, shortHash(data))
	return os.WriteFile(filepath.Join(j.dir, name), data, 0o644)
}

// List returns all entries, oldest first. Unreadable files are skipped.
func (j *Journal) List() ([]Entry, error) {
	if !j.enabled || j.dir == "" {
		return nil, nil
	}
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading journal directory: %w", err)
	}
	var entries []Entry
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(j.dir, f.Name()))
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CreatedAt.Before(entries[b].CreatedAt)
	})
	return entries, nil
}

// LatestPatch returns the newest patch entry for path whose backup still
// exists.
func (j *Journal) LatestPatch(path string) (Entry, bool, error) {
	entries, err := j.List()
	if err != nil {
		return Entry{}, false, err
	}
	want := filepath.Clean(path)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Kind != KindPatch || e.Patch == nil || filepath.Clean(e.Patch.Path) != want {
			continue
		}
		if _, err := os.Stat(e.Patch.BackupPath); err != nil {
			continue
		}
		return e, true, nil
	}
	return Entry{}, false, nil
}

// Clear removes all journal entries. Backup files themselves are kept.
func (j *Journal) Clear() (int, error) {
	if !j.enabled || j.dir == "" {
		return 0, nil
	}
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading journal directory: %w", err)
	}
	var removed int
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".json" {
			if err := os.Remove(filepath.Join(j.dir, f.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Dir returns the journal directory path.
func (j *Journal) Dir() string {
	return j.dir
}

// Enabled returns whether the journal records anything.
func (j *Journal) Enabled() bool {
	return j.enabled
}

func shortHash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:4])
}

func defaultDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "devboot"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "devboot", "journal"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "devboot", "journal"), nil
		}
		return filepath.Join(home, "AppData", "Local", "devboot", "journal"), nil
	default:
		return filepath.Join(home, ".local", "state", "devboot"), nil
	}
}
