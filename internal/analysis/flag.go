package analysis

import "strings"

// DiscountFlag normalizes a free-text discount indicator to 1 or 0.
// Only yes/y/true/1 (case-insensitive, surrounding space ignored) mean 1.
func DiscountFlag(raw string) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return 1
	default:
		return 0
	}
}

// missingTokens are cell values read as "no value", in addition to blanks.
var missingTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// isMissing reports whether a trimmed cell value counts as missing.
func isMissing(v string) bool {
	if v == "" {
		return true
	}
	_, ok := missingTokens[v]
	return ok
}
