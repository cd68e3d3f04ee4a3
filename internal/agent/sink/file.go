package sink

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
)

// noRotationMB is large enough that lumberjack never rolls the file over.
const noRotationMB = math.MaxInt32

// FileSink writes newline-terminated records to a file.
// lumberjack serializes writes, and each record goes out in a single Write.
type FileSink struct {
	w *lumberjack.Logger
}

// NewFileSink appends to path. A positive maxSizeMB rotates the file to a
// timestamped backup beside it once it grows past that size; otherwise the
// file is never rotated.
func NewFileSink(path string, maxSizeMB int) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sink path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sink dir: %w", err)
		}
	}
	if maxSizeMB <= 0 {
		maxSizeMB = noRotationMB
	}
	return &FileSink{
		w: &lumberjack.Logger{
			Filename:  path,
			MaxSize:   maxSizeMB,
			LocalTime: true,
		},
	}, nil
}

func (s *FileSink) Append(_ context.Context, line string) error {
	if _, err := s.w.Write([]byte(FoldLine(line) + "\n")); err != nil {
		return errx.WrapSink(err)
	}
	return nil
}

func (s *FileSink) Close() error {
	return s.w.Close()
}
