// Package storage keeps synthesized designs on disk, one directory per run:
//
//	<base>/<id>/metadata.json  run summary
//	<base>/<id>/gain.csv       K
//	<base>/<id>/riccati.csv    X
//	<base>/<id>/states.csv     optional closed-loop trajectory
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// Matrix names accepted by LoadMatrix.
const (
	Gain    = "gain"
	Riccati = "riccati"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Problem    string             `json:"problem"`
	Timestamp  time.Time          `json:"timestamp"`
	States     int                `json:"states"`
	Inputs     int                `json:"inputs"`
	Status     string             `json:"status"`
	Iterations int                `json:"iterations"`
	Residual   float64            `json:"residual"`
	Steps      []care.Step        `json:"steps"`
	Warnings   []string           `json:"warnings,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes d under a new run id derived from problem. result may be nil,
// in which case no trajectory is stored.
func (s *Store) Save(problem string, d *control.Design, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", problem, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	n, _ := d.X.Dims()
	m, _ := d.K.Dims()
	meta := RunMetadata{
		ID:         runID,
		Problem:    problem,
		Timestamp:  now,
		States:     n,
		Inputs:     m,
		Status:     d.Solution.Status.String(),
		Iterations: d.Solution.Iterations,
		Residual:   d.Solution.Residual,
		Steps:      d.Solution.Steps,
	}
	for _, w := range d.Warnings {
		meta.Warnings = append(meta.Warnings, w.Error())
	}
	if result != nil {
		meta.Metrics = result.Metrics
	}

	if err := writeRun(runDir, meta, d, result); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("storage: save %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, d *control.Design, result *dynamo.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(runDir, Gain+".csv"), d.K); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(runDir, Riccati+".csv"), d.X); err != nil {
		return err
	}
	if result != nil {
		return writeStates(filepath.Join(runDir, statesFile), result)
	}
	return nil
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadMatrix reads the Gain or Riccati matrix of a run.
func (s *Store) LoadMatrix(runID, name string) (*mat.Dense, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return nil, notFound(runID, err)
	}
	rows := make([][]float64, len(records))
	for i, rec := range records {
		if rows[i], err = parseRow(rec); err != nil {
			return nil, fmt.Errorf("storage: %s/%s.csv row %d: %w", runID, name, i, err)
		}
	}
	return linalg.FromRows(rows)
}

// LoadStates reads the stored trajectory. Control columns are skipped.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, notFound(runID, err)
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	nx := 0
	for _, col := range records[0][1:] {
		if len(col) > 0 && col[0] == 'x' {
			nx++
		}
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil || len(row) < 1+nx {
			return nil, nil, fmt.Errorf("storage: %s/%s line %d: malformed", runID, statesFile, i+2)
		}
		times = append(times, row[0])
		states = append(states, row[1:1+nx])
	}
	return states, times, nil
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return err
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMatrix(path string, a mat.Matrix) error {
	rows := linalg.ToRows(a)
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = formatRow(row)
	}
	return writeCSV(path, records)
}

func writeStates(path string, result *dynamo.Result) error {
	if len(result.Times) != len(result.States) {
		return fmt.Errorf("trajectory has %d states and %d times", len(result.States), len(result.Times))
	}
	if len(result.States) == 0 {
		return writeCSV(path, nil)
	}

	header := []string{"time"}
	for i := range result.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	nu := 0
	if len(result.Controls) > 0 {
		nu = len(result.Controls[0])
	}
	for i := 0; i < nu; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}

	records := [][]string{header}
	for i, x := range result.States {
		row := append([]float64{result.Times[i]}, x...)
		if i < len(result.Controls) {
			row = append(row, result.Controls[i]...)
		} else {
			// The final state has no applied input.
			row = append(row, make([]float64, nu)...)
		}
		records = append(records, formatRow(row))
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Sync()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func formatRow(row []float64) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

func parseRow(rec []string) ([]float64, error) {
	out := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
