package analysis

import (
	"fmt"
	"strings"
)

// MissingColumnsError indicates the input lacks one or more required columns.
type MissingColumnsError struct {
	Source  string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	if e.Source != "" {
		return fmt.Sprintf("missing required column(s) in %s: %s", e.Source, strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("missing required column(s): %s", strings.Join(quoted, ", "))
}
