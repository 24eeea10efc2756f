// SPDX-License-Identifier: MIT

// Package dataset reads numeric training tables for the sparselm command.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoRows indicates a table with a header and no data.
	ErrNoRows = errors.New("dataset: no data rows")

	// ErrTarget indicates an unknown target column or a table with a
	// single column.
	ErrTarget = errors.New("dataset: invalid target column")
)

// Dataset is a design matrix with its response.
type Dataset struct {
	Features []string // column names of X, in order
	Target   string
	X        *mat.Dense
	Y        []float64
}

// Read parses CSV with a header row. target names the response column;
// empty selects the last column. Every other column becomes a feature.
func Read(r io.Reader, target string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrNoRows
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need at least two columns", ErrTarget)
	}

	ti := len(header) - 1
	if target != "" {
		ti = -1
		for j, name := range header {
			if strings.TrimSpace(name) == target {
				ti = j
				break
			}
		}
		if ti < 0 {
			return nil, fmt.Errorf("%w: %q", ErrTarget, target)
		}
	}

	n, p := len(records)-1, len(header)-1
	ds := &Dataset{
		Features: make([]string, 0, p),
		Target:   strings.TrimSpace(header[ti]),
		X:        mat.NewDense(n, p, nil),
		Y:        make([]float64, n),
	}
	for j, name := range header {
		if j != ti {
			ds.Features = append(ds.Features, strings.TrimSpace(name))
		}
	}
	for i, rec := range records[1:] {
		col := 0
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d column %q: %w", i+2, header[j], err)
			}
			if j == ti {
				ds.Y[i] = v
				continue
			}
			ds.X.Set(i, col, v)
			col++
		}
	}

	return ds, nil
}

// Load reads the CSV file at path.
func Load(path, target string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	return Read(f, target)
}
