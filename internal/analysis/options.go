package analysis

import (
	"fmt"
	"strings"
)

// Columns names the three input columns the pipeline needs.
type Columns struct {
	Category string
	Amount   string
	Discount string
}

// Names lists the required columns in a stable order.
func (c Columns) Names() []string {
	return []string{c.Category, c.Amount, c.Discount}
}

// Options controls how a transaction dataset is read and cleaned.
type Options struct {
	Columns Columns
	// Delimiter for CSV. If 0, sniffed from the extension and header line.
	Delimiter rune
	// SheetName selects the XLSX sheet; empty means the first sheet.
	SheetName string
	// Locale-aware amount parsing. When both are 0 amounts must be plain
	// decimal numbers ("12.5"); anything else is treated as missing.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the column names of the shopping behaviour dataset.
func DefaultOptions() Options {
	return Options{
		Columns: Columns{
			Category: "Category",
			Amount:   "Purchase Amount (USD)",
			Discount: "Discount Applied",
		},
	}
}

func (o Options) localeAware() bool {
	return o.DecimalSeparator != 0 || o.ThousandsSeparator != 0
}

// ParseSeparators applies user-facing delimiter and number-format names to opt.
// Empty strings leave the corresponding option untouched.
func ParseSeparators(opt *Options, delimiter, decimal, thousands string) error {
	switch delimiter {
	case "":
	case ",", "comma":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";", "semicolon":
		opt.Delimiter = ';'
	default:
		return fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab')", delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",", "comma":
		opt.ThousandsSeparator = ','
	case ".", "dot":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", thousands)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return fmt.Errorf("decimal and thousands separators must differ")
	}
	return nil
}
