package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// Record is the saved state of one body at one saved timestep.
type Record struct {
	Index      int                  `json:"index"`
	Time       float64              `json:"time"`
	Body       string               `json:"body"`
	Kind       body.Kind            `json:"kind"`
	Mass       rigid.MassProperties `json:"mass"`
	Stages     int                  `json:"stages,omitempty"`
	Propellant float64              `json:"propellant,omitempty"`
	State      sim.State            `json:"state"`
	U          sim.Control          `json:"u"`
}

const fixedColumns = 10

func header() []string {
	h := []string{"index", "time", "body", "kind", "mass", "ix", "iy", "iz", "stages", "propellant"}
	for i := 0; i < rigid.StateDim; i++ {
		h = append(h, fmt.Sprintf("s%d", i))
	}
	for i := 0; i < rigid.ControlDim; i++ {
		h = append(h, fmt.Sprintf("u%d", i))
	}
	return h
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (r Record) row() []string {
	row := []string{
		strconv.Itoa(r.Index),
		formatFloat(r.Time),
		r.Body,
		string(r.Kind),
		formatFloat(r.Mass.Mass),
		formatFloat(r.Mass.Ix),
		formatFloat(r.Mass.Iy),
		formatFloat(r.Mass.Iz),
		strconv.Itoa(r.Stages),
		formatFloat(r.Propellant),
	}
	for _, v := range r.State {
		row = append(row, formatFloat(v))
	}
	for _, v := range r.U {
		row = append(row, formatFloat(v))
	}
	return row
}

func parseRecord(row []string) (Record, error) {
	if len(row) != fixedColumns+rigid.StateDim+rigid.ControlDim {
		return Record{}, fmt.Errorf("%w: row has %d columns", sim.ErrDimensionMismatch, len(row))
	}

	var (
		r   Record
		err error
	)
	if r.Index, err = strconv.Atoi(row[0]); err != nil {
		return Record{}, err
	}
	if r.Stages, err = strconv.Atoi(row[8]); err != nil {
		return Record{}, err
	}
	r.Body = row[2]
	r.Kind = body.Kind(row[3])

	floats := make([]float64, 0, len(row))
	for _, i := range []int{1, 4, 5, 6, 7, 9} {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return Record{}, err
		}
		floats = append(floats, v)
	}
	r.Time = floats[0]
	r.Mass = rigid.MassProperties{Mass: floats[1], Ix: floats[2], Iy: floats[3], Iz: floats[4]}
	r.Propellant = floats[5]

	values := make([]float64, 0, rigid.StateDim+rigid.ControlDim)
	for _, s := range row[fixedColumns:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Record{}, err
		}
		values = append(values, v)
	}
	r.State = sim.State(values[:rigid.StateDim])
	r.U = sim.Control(values[rigid.StateDim:])
	return r, nil
}

// LoadRecords reads every saved record of a run in file order.
func (s *Store) LoadRecords(runID string) ([]Record, error) {
	f, err := os.Open(filepath.Join(s.Path(runID), timestepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadRecords(f)
}

// ReadRecords decodes records from CSV with a header row.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Series returns the time history of one body.
func Series(records []Record, name string) (times []float64, states []sim.State) {
	for _, r := range records {
		if r.Body == name {
			times = append(times, r.Time)
			states = append(states, r.State)
		}
	}
	return times, states
}

// BodyNames returns body names in order of first appearance.
func BodyNames(records []Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if !seen[r.Body] {
			seen[r.Body] = true
			names = append(names, r.Body)
		}
	}
	return names
}
