// Package daqsrc loads DAQ temperature tables from disk into a dense
// row-major matrix (§4.1, §12).
package daqsrc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// Table is a loaded DAQ data file: NRows x NCols real-valued samples,
// one row per synchronized time step.
type Table struct {
	NRows int
	NCols int
	Data  *mat.Dense
}

// Row returns row i as a plain slice, copying out of the backing
// matrix so callers can't mutate Table's storage.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, t.NCols)
	mat.Row(row, i, t.Data)
	return row
}

// Read dispatches on file extension. Only ".lvm" is supported; ".xlsx"
// and anything else are rejected explicitly so the precondition
// surfaces as a clear error rather than a cryptic parse failure.
func Read(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".lvm":
		return readLVM(path)
	case ".xlsx":
		return nil, &tlcerrors.InvalidArgumentError{
			Field:  "daq_path",
			Reason: ".xlsx DAQ files are not supported; export to .lvm",
		}
	default:
		return nil, &tlcerrors.InvalidArgumentError{
			Field:  "daq_path",
			Reason: fmt.Sprintf("unsupported extension %q, only .lvm is supported", ext),
		}
	}
}

// readLVM parses a tab-delimited National Instruments LabVIEW Measurement
// file: one row per sample, one column per channel, no header.
func readLVM(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open daq file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	var values []float64
	ncols := -1
	nrows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &tlcerrors.DaqParseFailedError{Row: nrows, Err: err}
		}
		if ncols == -1 {
			ncols = len(record)
		} else if len(record) != ncols {
			return nil, &tlcerrors.DaqParseFailedError{
				Row: nrows,
				Err: fmt.Errorf("row has %d columns, want %d: not all rows are equal in length", len(record), ncols),
			}
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, &tlcerrors.DaqParseFailedError{Row: nrows, Err: err}
			}
			values = append(values, v)
		}
		nrows++
	}
	if nrows == 0 || ncols <= 0 {
		return nil, &tlcerrors.DaqParseFailedError{Row: 0, Err: fmt.Errorf("empty daq file")}
	}

	return &Table{NRows: nrows, NCols: ncols, Data: mat.NewDense(nrows, ncols, values)}, nil
}
