package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer streams saved timesteps of one run to disk from a background
// goroutine.
type Writer struct {
	store   *Store
	meta    *RunMetadata
	file    *os.File
	records chan []Record
	done    sync.WaitGroup
	err     error
	closed  bool
}

// Create makes the run directory for meta, assigning a run ID when it has
// none, and starts the writer goroutine.
func (s *Store) Create(meta *RunMetadata) (*Writer, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Name)
	}
	dir := s.Path(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := s.writeMetadata(meta); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, timestepsFile))
	if err != nil {
		return nil, err
	}

	w := &Writer{
		store:   s,
		meta:    meta,
		file:    f,
		records: make(chan []Record, 256),
	}
	w.done.Add(1)
	go w.run()
	return w, nil
}

func (w *Writer) ID() string { return w.meta.ID }

func (w *Writer) run() {
	defer w.done.Done()

	cw := csv.NewWriter(w.file)
	if err := cw.Write(header()); err != nil {
		w.err = err
	}
	for batch := range w.records {
		if w.err != nil {
			continue
		}
		for _, r := range batch {
			if err := cw.Write(r.row()); err != nil {
				w.err = fmt.Errorf("write %s: %w", r.Body, err)
				break
			}
		}
	}
	cw.Flush()
	if w.err == nil {
		w.err = cw.Error()
	}
}

// Write queues one saved timestep.
func (w *Writer) Write(batch []Record) {
	w.records <- batch
}

// Close drains the queue, closes the timestep file and rewrites the
// metadata with the final run summary.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.records)
	w.done.Wait()

	if err := w.file.Close(); err != nil && w.err == nil {
		w.err = err
	}
	if w.err != nil {
		return w.err
	}
	return w.store.writeMetadata(w.meta)
}
