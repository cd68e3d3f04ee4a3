// Package sink provides append-only line destinations for leads and
// unanswered questions.
package sink

import (
	"context"
	"strings"
)

// LineSink appends one record per call. Implementations must be safe for
// concurrent use and must never interleave two records.
type LineSink interface {
	Append(ctx context.Context, line string) error
	Close() error
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FoldLine keeps a record on a single line by replacing line breaks with spaces.
func FoldLine(s string) string {
	return lineBreaks.Replace(s)
}
