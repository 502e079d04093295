package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ClassColumn is the required column of the feature class file.
const ClassColumn = "Class"

// missingTokens are the cell values read as NaN.
var missingTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Load reads the three input files and aligns the outcome to the feature
// table's patient order. Every error is an InputFormatError naming the file.
func Load(featurePath, classPath, outcomePath string) (*Dataset, error) {
	features, err := ReadTable(featurePath)
	if err != nil {
		return nil, err
	}
	classes, err := ReadFeatureClasses(classPath)
	if err != nil {
		return nil, err
	}
	outcome, err := ReadOutcome(outcomePath)
	if err != nil {
		return nil, err
	}
	aligned, err := outcome.Align(features.IDs, outcomePath)
	if err != nil {
		return nil, err
	}
	return &Dataset{Features: features, Classes: classes, Outcome: aligned}, nil
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 0
	return cr
}

// readRecords returns the header and the data rows of a TSV file.
func readRecords(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewInputFormatError(path, 0, err.Error())
	}
	defer f.Close()

	records, err := newTSVReader(f).ReadAll()
	if err != nil {
		return nil, nil, parseError(path, err)
	}
	if len(records) == 0 {
		return nil, nil, errors.NewInputFormatError(path, 0, "file is empty, a header row is required")
	}
	return records[0], records[1:], nil
}

func parseError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.NewInputFormatError(path, pe.Line, pe.Err.Error())
	}
	return errors.NewInputFormatError(path, 0, err.Error())
}

func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if missingTokens[s] {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadTable reads a TSV whose first column holds row identifiers and whose
// remaining columns are numeric.
func ReadTable(path string) (*Table, error) {
	header, rows, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.NewInputFormatError(path, 1, "expected an identifier column and at least one value column")
	}
	columns := header[1:]
	seenCol := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seenCol[c] {
			return nil, errors.NewInputFormatError(path, 1, fmt.Sprintf("duplicate column %q", c))
		}
		seenCol[c] = true
	}
	if len(rows) == 0 {
		return nil, errors.NewInputFormatError(path, 0, "no data rows")
	}

	ids := make([]string, len(rows))
	seen := make(map[string]int, len(rows))
	values := mat.NewDense(len(rows), len(columns), nil)
	for i, rec := range rows {
		line := i + 2
		id := strings.TrimSpace(rec[0])
		if prev, dup := seen[id]; dup {
			return nil, errors.NewInputFormatError(path, line,
				fmt.Sprintf("duplicate identifier %q (first seen on line %d)", id, prev))
		}
		seen[id] = line
		ids[i] = id

		for j, cell := range rec[1:] {
			v, ok := parseCell(cell)
			if !ok {
				return nil, errors.NewInputFormatError(path, line,
					fmt.Sprintf("column %q: non-numeric value %q", columns[j], cell))
			}
			values.Set(i, j, v)
		}
	}
	return &Table{Path: path, IDs: ids, Columns: columns, Values: values}, nil
}

// indexHeaderReader renames the first header cell so gocsv can bind the
// identifier column whatever it is called in the file.
type indexHeaderReader struct {
	*csv.Reader
	header []string
}

func (r *indexHeaderReader) Read() ([]string, error) {
	rec, err := r.Reader.Read()
	if err != nil || r.header != nil {
		return rec, err
	}
	r.header = append([]string(nil), rec...)
	if len(rec) > 0 {
		rec[0] = "Feature"
	}
	return rec, nil
}

func (r *indexHeaderReader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

// ReadFeatureClasses reads the feature class table. The first column names
// the feature; a Class column is required. Duplicate features are rejected so
// that the assignment stays exclusive.
func ReadFeatureClasses(path string) (FeatureClasses, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputFormatError(path, 0, err.Error())
	}
	defer f.Close()

	reader := &indexHeaderReader{Reader: newTSVReader(f)}
	var classes []FeatureClass
	if err := gocsv.UnmarshalCSV(reader, &classes); err != nil {
		if reader.header == nil {
			return nil, errors.NewInputFormatError(path, 0, "file is empty, a header row is required")
		}
		return nil, parseError(path, err)
	}

	hasClass := false
	for _, h := range reader.header[1:] {
		if h == ClassColumn {
			hasClass = true
		}
	}
	if len(reader.header) < 2 || !hasClass {
		return nil, errors.NewInputFormatError(path, 1, "missing required column \""+ClassColumn+"\"")
	}

	seen := make(map[string]bool, len(classes))
	for i := range classes {
		classes[i].Feature = strings.TrimSpace(classes[i].Feature)
		classes[i].Class = strings.TrimSpace(classes[i].Class)
		if seen[classes[i].Feature] {
			return nil, errors.NewInputFormatError(path, i+2,
				fmt.Sprintf("feature %q is assigned more than one class", classes[i].Feature))
		}
		seen[classes[i].Feature] = true
	}
	return classes, nil
}

// ReadOutcome reads the outcome table. The first value column is the outcome
// and its header is the outcome name; further columns are ignored.
func ReadOutcome(path string) (Outcome, error) {
	header, rows, err := readRecords(path)
	if err != nil {
		return Outcome{}, err
	}
	if len(header) < 2 {
		return Outcome{}, errors.NewInputFormatError(path, 1, "outcome file has no value column")
	}

	out := Outcome{Name: header[1], IDs: make([]string, len(rows)), Values: make([]float64, len(rows))}
	seen := make(map[string]bool, len(rows))
	for i, rec := range rows {
		line := i + 2
		id := strings.TrimSpace(rec[0])
		if seen[id] {
			return Outcome{}, errors.NewInputFormatError(path, line, fmt.Sprintf("duplicate identifier %q", id))
		}
		seen[id] = true
		v, ok := parseCell(rec[1])
		if !ok {
			return Outcome{}, errors.NewInputFormatError(path, line, fmt.Sprintf("non-numeric outcome %q", rec[1]))
		}
		out.IDs[i] = id
		out.Values[i] = v
	}
	return out, nil
}

// Align reorders the outcome to ids. Extra outcome rows are dropped; an id
// with no outcome value, or with a missing one, is an error.
func (o Outcome) Align(ids []string, path string) (Outcome, error) {
	byID := make(map[string]float64, len(o.IDs))
	for i, id := range o.IDs {
		byID[id] = o.Values[i]
	}

	aligned := Outcome{Name: o.Name, IDs: append([]string(nil), ids...), Values: make([]float64, len(ids))}
	for i, id := range ids {
		v, ok := byID[id]
		if !ok {
			return Outcome{}, errors.NewInputFormatError(path, 0, fmt.Sprintf("no outcome for patient %q", id))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Outcome{}, errors.NewInputFormatError(path, 0, fmt.Sprintf("missing outcome for patient %q", id))
		}
		aligned.Values[i] = v
	}
	return aligned, nil
}
