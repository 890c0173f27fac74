// Package manifest persists the set of paths a run generated and
// prunes output a newer run no longer produces. The manifest is a
// cache of this engine's own output, not a source of truth: corrupt or
// missing state degrades to a fresh start, never a failure.
package manifest

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// SchemaVersion is bumped when the document layout changes.
const SchemaVersion = 1

// Manifest records the artifact paths one completed run generated.
// All slices are sorted and de-duplicated; directories carry no
// trailing separators.
type Manifest struct {
	Version     int      `json:"version"`
	Files       []string `json:"files"`
	Directories []string `json:"directories"`
	Symlinks    []string `json:"symlinks"`
}

// Empty returns a fresh manifest.
func Empty() *Manifest {
	return &Manifest{Version: SchemaVersion}
}

// normalize sorts and de-duplicates the path sets and strips trailing
// separators from directories.
func (m *Manifest) normalize() {
	m.Files = dedupeSorted(m.Files)
	for i, d := range m.Directories {
		m.Directories[i] = strings.TrimRight(d, string(filepath.Separator))
	}
	m.Directories = dedupeSorted(m.Directories)
	m.Symlinks = dedupeSorted(m.Symlinks)
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// Store loads and saves the manifest document at a fixed path under
// the configured working directory.
type Store struct {
	fs   types.FS
	path string
}

// NewStore builds a store for the manifest at path.
func NewStore(fs types.FS, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Load reads the prior run's manifest. Missing, unreadable or corrupt
// documents come back as an empty manifest.
func (s *Store) Load() *Manifest {
	logger := logging.GetLogger("manifest")

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		logger.Debug().Str("path", s.path).Msg("no prior manifest, starting fresh")
		return Empty()
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Str("path", s.path).
			Msg("manifest unreadable, treating as empty")
		return Empty()
	}
	if m.Version != SchemaVersion {
		logger.Warn().Int("version", m.Version).Str("path", s.path).
			Msg("manifest schema mismatch, treating as empty")
		return Empty()
	}

	m.normalize()
	return &m
}

// Save persists the manifest unconditionally, creating the working
// directory as needed.
func (s *Store) Save(m *Manifest) error {
	m.Version = SchemaVersion
	m.normalize()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestWrite, "encoding manifest")
	}
	data = append(data, '\n')

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite,
			"creating manifest directory for %q", s.path)
	}
	if err := s.fs.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite,
			"writing manifest %q", s.path)
	}
	return nil
}
