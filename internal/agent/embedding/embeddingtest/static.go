// Package embeddingtest provides a deterministic embedder for tests.
package embeddingtest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
)

// Static returns fixed vectors per input text. Texts without an entry embed
// to Default.
type Static struct {
	Vectors map[string][]float64
	Default []float64
	Err     error

	mu    sync.Mutex
	calls [][]string
}

var _ embedding.Embedder = (*Static)(nil)

func (s *Static) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), texts...))
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if v, ok := s.Vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = s.Default
	}
	return out, nil
}

// Calls returns every batch passed to EmbedStrings so far.
func (s *Static) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

// OneHot returns a vector of length dim with 1 at position i.
func OneHot(dim, i int) []float64 {
	v := make([]float64, dim)
	v[i] = 1
	return v
}
