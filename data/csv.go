package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/b0tShaman/tensornet/tensor"
	"golang.org/x/exp/constraints"
)

var (
	// ErrNoRows is returned when a CSV source holds no records.
	ErrNoRows = errors.New("data: no rows")

	// ErrTargetCols is returned when targetCols leaves no feature columns.
	ErrTargetCols = errors.New("data: invalid target column count")
)

// LoadCSVFile opens path and hands it to LoadCSV.
func LoadCSVFile[T constraints.Float](path string, targetCols int) (*tensor.Tensor[T, tensor.R2], *tensor.Tensor[T, tensor.R2], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return LoadCSV[T](f, targetCols)
}

// LoadCSV reads a numeric table and splits it column-wise: the last
// targetCols columns become Y, the rest become X. Every record must have
// the same width. A header row fails to parse and is reported as such.
func LoadCSV[T constraints.Float](r io.Reader, targetCols int) (*tensor.Tensor[T, tensor.R2], *tensor.Tensor[T, tensor.R2], error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoRows
	}

	width := len(records[0])
	if targetCols < 1 || targetCols >= width {
		return nil, nil, fmt.Errorf("%w: %d of %d columns", ErrTargetCols, targetCols, width)
	}
	featureCols := width - targetCols

	xs := make([]T, 0, len(records)*featureCols)
	ys := make([]T, 0, len(records)*targetCols)
	for i, rec := range records {
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i+1, j+1, err)
			}
			if j < featureCols {
				xs = append(xs, T(v))
			} else {
				ys = append(ys, T(v))
			}
		}
	}

	rows := len(records)
	x, err := tensor.FromSlice[T, tensor.R2](tensor.Shape{rows, featureCols}, xs)
	if err != nil {
		return nil, nil, err
	}
	y, err := tensor.FromSlice[T, tensor.R2](tensor.Shape{rows, targetCols}, ys)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
