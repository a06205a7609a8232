package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/discount-impact/internal/analysis"
	"github.com/KaramelBytes/discount-impact/internal/stats"
	"github.com/KaramelBytes/discount-impact/internal/utils"
)

func itoa(n int) string { return strconv.Itoa(n) }

// EncodeCSV writes the header and one record per row to w.
func EncodeCSV(w io.Writer, rows []analysis.CategorySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV atomically writes rows to path, creating parent directories.
// The header is written even when rows is empty.
func WriteCSV(path string, rows []analysis.CategorySummary) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(path string) ([]analysis.CategorySummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()
	return DecodeCSV(f)
}

// DecodeCSV parses summary rows from r, rejecting unexpected headers.
func DecodeCSV(r io.Reader) ([]analysis.CategorySummary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("unexpected header: %s", strings.Join(header, ","))
	}
	var out []analysis.CategorySummary
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseRecord(rec []string) (analysis.CategorySummary, error) {
	var row analysis.CategorySummary
	row.Category = rec[0]
	var err error
	if row.NDiscount, err = strconv.Atoi(rec[1]); err != nil {
		return row, fmt.Errorf("N_discount: %w", err)
	}
	if row.NNoDiscount, err = strconv.Atoi(rec[2]); err != nil {
		return row, fmt.Errorf("N_no_discount: %w", err)
	}
	floats := []*stats.Float{
		&row.AOVDiscount, &row.AOVNoDiscount, &row.DeltaAOV, &row.PctLift,
		&row.WelchT, &row.PValue, &row.HedgesG,
	}
	for i, dst := range floats {
		v, err := stats.ParseFloat(rec[3+i])
		if err != nil {
			return row, fmt.Errorf("%s: %w", Header[3+i], err)
		}
		*dst = v
	}
	return row, nil
}
