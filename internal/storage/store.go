package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c-bruce/rocketsim/internal/body"
)

// Ext is the suffix of a run directory.
const Ext = ".psm"

const (
	metadataFile  = "metadata.json"
	timestepsFile = "timesteps.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BodyInfo describes the static properties of a saved body.
type BodyInfo struct {
	Name    string       `json:"name"`
	Kind    body.Kind    `json:"kind"`
	Radius  float64      `json:"radius,omitempty"`
	Parent  string       `json:"parent,omitempty"`
	Texture string       `json:"texture,omitempty"`
	Stages  []body.Stage `json:"stages,omitempty"`
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Epoch        time.Time          `json:"epoch"`
	Dt           float64            `json:"dt"`
	EndTime      float64            `json:"end_time"`
	SaveInterval int                `json:"save_interval"`
	Scheme       string             `json:"scheme"`
	Controller   string             `json:"controller,omitempty"`
	Bodies       []BodyInfo         `json:"bodies"`
	Steps        int                `json:"steps"`
	Saved        int                `json:"saved"`
	Complete     bool               `json:"complete"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// NewRunID returns a unique run identifier derived from name.
func NewRunID(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if slug == "" {
		slug = "run"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}

// Path returns the directory of a run. runID may carry the .psm suffix
// or be a path to an existing run directory.
func (s *Store) Path(runID string) string {
	if filepath.Ext(runID) == Ext {
		if info, err := os.Stat(runID); err == nil && info.IsDir() {
			return runID
		}
		runID = strings.TrimSuffix(runID, Ext)
	}
	return filepath.Join(s.baseDir, runID+Ext)
}

func (s *Store) writeMetadata(meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(s.Path(meta.ID), metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}

		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	return readMetadata(s.Path(runID))
}

func readMetadata(dir string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, dir)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", dir, err)
	}

	return &meta, nil
}
