package dose

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/ic50/errs"
	"github.com/arloliu/ic50/internal/options"
)

// CSVConfig describes the layout of an observation table.
type CSVConfig struct {
	// DrugColumn, ConcentrationColumn and MeasurementColumn are header names,
	// matched case-insensitively.
	DrugColumn          string
	ConcentrationColumn string
	MeasurementColumn   string
	// Comma is the field delimiter.
	Comma rune
}

// DefaultCSVConfig returns the layout written by WriteCSV.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{
		DrugColumn:          "drug",
		ConcentrationColumn: "concentration",
		MeasurementColumn:   "measurement",
		Comma:               ',',
	}
}

// Validate implements options.Validator.
func (c *CSVConfig) Validate() error {
	if c.DrugColumn == "" || c.ConcentrationColumn == "" || c.MeasurementColumn == "" {
		return errs.Input("csv columns", "column names must not be empty")
	}

	return nil
}

// CSVOption configures ReadCSV.
type CSVOption = options.Option[*CSVConfig]

// WithColumns overrides the header names of the three required columns.
func WithColumns(drug, concentration, measurement string) CSVOption {
	return options.NoError("WithColumns", func(c *CSVConfig) {
		c.DrugColumn = drug
		c.ConcentrationColumn = concentration
		c.MeasurementColumn = measurement
	})
}

// WithComma sets the field delimiter.
func WithComma(r rune) CSVOption {
	return options.New("WithComma", func(c *CSVConfig) error {
		if r == '\n' || r == '\r' || r == '"' {
			return errs.Input("comma", "invalid delimiter %q", r)
		}
		c.Comma = r

		return nil
	})
}

// ReadCSV loads observations from a table with a header row.
//
// The drug column holds arbitrary labels which are encoded to dense indices in
// first-seen order; the labels are returned in Dataset.Labels. Every row is
// validated and the first invalid one is reported as an errs.InputError whose
// Index is the zero-based data row.
//
// Parameters:
//   - r: Table with a header row
//   - opts: Column names and delimiter
//
// Returns:
//   - Dataset: Observations in row order with their drug labels
//   - error: errs.InputError for malformed tables or rows, or a read error
func ReadCSV(r io.Reader, opts ...CSVOption) (Dataset, error) {
	cfg := DefaultCSVConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Dataset{}, err
	}

	cr := csv.NewReader(r)
	cr.Comma = cfg.Comma
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, errs.Input("csv", "missing header row")
		}

		return Dataset{}, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := locateColumns(header, cfg)
	if err != nil {
		return Dataset{}, err
	}

	enc := NewEncoder()
	var ds Dataset
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return Dataset{}, errs.InputAt("csv", row, "%v", pe.Err)
			}

			return Dataset{}, fmt.Errorf("read csv row %d: %w", row, err)
		}

		label := strings.TrimSpace(rec[cols[0]])
		if label == "" {
			return Dataset{}, errs.InputAt("drug", row, "empty drug label")
		}
		conc, err := parseFloat(rec[cols[1]])
		if err != nil {
			return Dataset{}, errs.InputAt("concentration", row, "%v", err)
		}
		meas, err := parseFloat(rec[cols[2]])
		if err != nil {
			return Dataset{}, errs.InputAt("measurement", row, "%v", err)
		}

		o := Observation{Drug: enc.Encode(label), Concentration: conc, Measurement: meas}
		if err := o.validate(row); err != nil {
			return Dataset{}, err
		}
		ds.Observations = append(ds.Observations, o)
	}

	if len(ds.Observations) == 0 {
		return Dataset{}, errs.Input("observations", "csv has no data rows")
	}
	ds.Labels = enc.Labels()

	return ds, nil
}

func locateColumns(header []string, cfg CSVConfig) ([3]int, error) {
	want := [3]string{cfg.DrugColumn, cfg.ConcentrationColumn, cfg.MeasurementColumn}
	cols := [3]int{-1, -1, -1}
	for i, h := range header {
		for k, name := range want {
			if strings.EqualFold(strings.TrimSpace(h), name) && cols[k] < 0 {
				cols[k] = i
			}
		}
	}
	for k, c := range cols {
		if c < 0 {
			return cols, errs.Input("csv header", "missing column %q", want[k])
		}
	}

	return cols, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			return 0, fmt.Errorf("cannot parse %q as a number", s)
		}

		return 0, err
	}

	return v, nil
}

// WriteCSV writes the dataset as a table readable by ReadCSV, using the
// dataset labels for the drug column.
func WriteCSV(w io.Writer, ds Dataset) error {
	cw := csv.NewWriter(w)
	cfg := DefaultCSVConfig()
	if err := cw.Write([]string{cfg.DrugColumn, cfg.ConcentrationColumn, cfg.MeasurementColumn}); err != nil {
		return err
	}

	rec := make([]string, 3)
	for _, o := range ds.Observations {
		rec[0] = ds.Label(o.Drug)
		rec[1] = strconv.FormatFloat(o.Concentration, 'g', -1, 64)
		rec[2] = strconv.FormatFloat(o.Measurement, 'g', -1, 64)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
