package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/san-kum/mcsim/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile  = "metadata.json"
	energiesFile  = "energies.csv.zst"
	positionsFile = "positions.csv.zst"
)

var ErrCorrupt = errors.New("storage: corrupt run data")

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
	ID                string             `json:"id"`
	Timestamp         time.Time          `json:"timestamp"`
	Potential         string             `json:"potential"`
	Backend           string             `json:"backend"`
	Seed              int64              `json:"seed"`
	Particles         int                `json:"particles"`
	BoxSize           float64            `json:"box_size"`
	Temperature       float64            `json:"temperature"`
	MaxDeviation      float64            `json:"max_deviation"`
	NMax              int                `json:"nmax"`
	TotalIt           int                `json:"total_it"`
	TrialMode         string             `json:"trial_mode"`
	Acceptance        string             `json:"acceptance"`
	InitialEnergy     float64            `json:"initial_energy"`
	Energy            float64            `json:"energy"`
	EnergyPerParticle float64            `json:"energy_per_particle"`
	Attempts          int                `json:"attempts"`
	Accepted          int                `json:"accepted"`
	AcceptanceRatio   float64            `json:"acceptance_ratio"`
	WallTime          time.Duration      `json:"wall_time_ns"`
	DeviceTime        time.Duration      `json:"device_time_ns"`
	Metrics           map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id, "<potential>_<unixnano>"
// unless meta already carries one. final may be nil.
func (s *Store) Save(meta RunMetadata, energies []float64, final *particles.System) (string, error) {
	now := time.Now()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Potential, now.UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	err = writeCSV(filepath.Join(runDir, energiesFile), func(w *csv.Writer) error {
		if err := w.Write([]string{"accepted", "energy"}); err != nil {
			return err
		}
		for i, e := range energies {
			if err := w.Write([]string{strconv.Itoa(i + 1), formatFloat(e)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("write energies: %w", err)
	}

	if final == nil {
		return meta.ID, nil
	}

	err = writeCSV(filepath.Join(runDir, positionsFile), func(w *csv.Writer) error {
		header := []string{"x", "y", "z"}
		if final.Charges != nil {
			header = append(header, "charge")
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i, p := range final.Positions {
			row := []string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)}
			if final.Charges != nil {
				row = append(row, strconv.Itoa(final.Charges[i]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("write positions: %w", err)
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
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
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEnergies returns the accepted-energy history in acceptance order.
func (s *Store) LoadEnergies(runID string) ([]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, energiesFile))
	if err != nil {
		return nil, err
	}

	energies := make([]float64, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("%w: energies row %d has %d fields", ErrCorrupt, i+1, len(record))
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: energies row %d: %v", ErrCorrupt, i+1, err)
		}
		energies = append(energies, e)
	}
	return energies, nil
}

// LoadPositions rebuilds the final configuration of a run.
func (s *Store) LoadPositions(runID string) (*particles.System, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	box, err := particles.NewBox(meta.BoxSize)
	if err != nil {
		return nil, err
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	sys := &particles.System{Box: box, Positions: make([]r3.Vec, 0, len(records))}
	for i, record := range records {
		if len(record) != 3 && len(record) != 4 {
			return nil, fmt.Errorf("%w: positions row %d has %d fields", ErrCorrupt, i+1, len(record))
		}

		var v [3]float64
		for k := range v {
			if v[k], err = strconv.ParseFloat(record[k], 64); err != nil {
				return nil, fmt.Errorf("%w: positions row %d: %v", ErrCorrupt, i+1, err)
			}
		}
		sys.Positions = append(sys.Positions, r3.Vec{X: v[0], Y: v[1], Z: v[2]})

		if len(record) == 4 {
			q, err := strconv.Atoi(record[3])
			if err != nil {
				return nil, fmt.Errorf("%w: positions row %d: %v", ErrCorrupt, i+1, err)
			}
			sys.Charges = append(sys.Charges, q)
		}
	}
	return sys, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}

	w := csv.NewWriter(zw)
	if err := rows(w); err != nil {
		zw.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// readCSV decompresses path and returns its records without the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	r := csv.NewReader(zr)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(records) < 1 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
