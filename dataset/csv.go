package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ReadCSV reads a labeled numeric table. The first record is the header;
// every other cell must parse as a float64.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadCSV: missing header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadCSV: header")
	}
	columns := make([]string, len(header))
	for j, h := range header {
		columns[j] = strings.TrimSpace(h)
	}

	var data []float64
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "ReadCSV: line %d", rows+2)
		}
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "ReadCSV: line %d column %q", rows+2, columns[j])
			}
			data = append(data, v)
		}
		rows++
	}

	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ReadCSV: no data rows")
	}
	return NewFrame(columns, mat.NewDense(rows, len(columns), data))
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadCSV %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadCSVWithTarget loads path and splits off the target column, returning
// the feature frame and the target values.
func LoadCSVWithTarget(path, target string) (*Frame, []float64, error) {
	frame, err := LoadCSV(path)
	if err != nil {
		return nil, nil, err
	}
	return frame.Drop(target)
}
