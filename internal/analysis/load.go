package analysis

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Transaction is one cleaned input row.
type Transaction struct {
	Category    string
	Amount      float64
	DiscountRaw string
	Discounted  bool
}

// DropCounts tallies rows removed during cleaning, by first failing field.
type DropCounts struct {
	Amount   int
	Category int
	Discount int
}

// Total is the number of dropped rows.
func (d DropCounts) Total() int { return d.Amount + d.Category + d.Discount }

// Dataset is the cleaned transaction table plus load bookkeeping.
type Dataset struct {
	Name         string
	Rows         int
	Transactions []Transaction
	Dropped      DropCounts
	Warnings     []string
}

// Load reads a CSV/TSV or XLSX file, checks the required columns, and
// returns the rows that survive cleaning.
func Load(path string, opt Options) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited text file.
func LoadCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads delimited text from r. name labels the dataset in reports and errors.
func ReadCSV(r io.Reader, name string, opt Options) (*Dataset, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		head, _ := br.Peek(4096)
		delim = sniffDelimiter(name, head)
	}
	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MissingColumnsError{Source: name, Missing: opt.Columns.Names()}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cl, err := newCleaner(name, header, opt)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", cl.ds.Rows+1, err)
		}
		cl.add(rec)
	}
	return cl.finish(), nil
}

// cleaner turns raw records into transactions.
type cleaner struct {
	opt         Options
	cat, amt, d int
	ds          *Dataset
}

func newCleaner(name string, header []string, opt Options) (*cleaner, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	lookup := func(col string) int {
		i, ok := index[strings.TrimSpace(col)]
		if !ok {
			missing = append(missing, col)
			return -1
		}
		return i
	}
	c := &cleaner{opt: opt, ds: &Dataset{Name: name}}
	c.cat = lookup(opt.Columns.Category)
	c.amt = lookup(opt.Columns.Amount)
	c.d = lookup(opt.Columns.Discount)
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Source: name, Missing: missing}
	}
	return c, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (c *cleaner) add(rec []string) {
	c.ds.Rows++
	amount, ok := parseAmount(cell(rec, c.amt), c.opt)
	if !ok {
		c.ds.Dropped.Amount++
		return
	}
	category := cell(rec, c.cat)
	if isMissing(category) {
		c.ds.Dropped.Category++
		return
	}
	raw := cell(rec, c.d)
	if isMissing(raw) {
		c.ds.Dropped.Discount++
		return
	}
	c.ds.Transactions = append(c.ds.Transactions, Transaction{
		Category:    category,
		Amount:      amount,
		DiscountRaw: raw,
		Discounted:  DiscountFlag(raw) == 1,
	})
}

func (c *cleaner) finish() *Dataset {
	d := c.ds.Dropped
	if d.Amount > 0 {
		c.ds.Warnings = append(c.ds.Warnings, fmt.Sprintf("dropped %d row(s) with a missing or non-numeric %s", d.Amount, c.opt.Columns.Amount))
	}
	if d.Category > 0 {
		c.ds.Warnings = append(c.ds.Warnings, fmt.Sprintf("dropped %d row(s) with a missing %s", d.Category, c.opt.Columns.Category))
	}
	if d.Discount > 0 {
		c.ds.Warnings = append(c.ds.Warnings, fmt.Sprintf("dropped %d row(s) with a missing %s", d.Discount, c.opt.Columns.Discount))
	}
	return c.ds
}

// sniffDelimiter picks the delimiter from the file extension, else from the
// most frequent candidate on the header line. Comma wins ties.
func sniffDelimiter(name string, head []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestN := ',', bytes.Count(head, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(head, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// parseAmount coerces a cell to a finite number; ok is false for missing values.
func parseAmount(s string, opt Options) (float64, bool) {
	if isMissing(s) {
		return 0, false
	}
	var x float64
	if opt.localeAware() {
		v, ok := parseNumeric(s, opt)
		if !ok {
			return 0, false
		}
		x = v
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		x = v
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

// parseNumeric parses numbers written with locale-specific separators.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	// A ',' or '.' thousands separator implies the other one marks decimals.
	if dec == 0 {
		switch thou {
		case '.':
			dec = ','
		case ',':
			dec = '.'
		}
	}
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec = ','
		case cpos >= 0 && dpos < 0 && thou != ',':
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
