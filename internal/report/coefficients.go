package report

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/YuminosukeSato/outcomecv/internal/importance"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// EncodeImportanceTSV writes records, in order, under the header
// Feature<TAB>Score<TAB>Class.
func EncodeImportanceTSV(w io.Writer, records []importance.Record) error {
	if records == nil {
		records = []importance.Record{}
	}
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := gocsv.MarshalCSV(&records, cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteImportanceTSV writes the importance table to path.
func WriteImportanceTSV(path string, records []importance.Record) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeImportanceTSV(w, records)
	})
}

// ReadImportanceTSV parses a file written by WriteImportanceTSV. Ranks are
// restored from row order.
func ReadImportanceTSV(path string) ([]importance.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputFormatError(path, 0, err.Error())
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	var records []importance.Record
	if err := gocsv.UnmarshalCSV(cr, &records); err != nil {
		return nil, errors.NewInputFormatError(path, 0, err.Error())
	}
	for i := range records {
		records[i].Rank = i + 1
	}
	return records, nil
}
