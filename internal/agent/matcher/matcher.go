// Package matcher ranks free text against knowledge base entries by cosine
// similarity of embeddings.
package matcher

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

const (
	// KnowledgeThreshold is the confidence needed to answer from the whole KB.
	KnowledgeThreshold = 0.7
	// TopicThreshold applies when ranking within a topic the conversant already picked.
	TopicThreshold = 0.6
)

type Matcher struct {
	embedder embedding.Embedder
}

func New(embedder embedding.Embedder) *Matcher {
	return &Matcher{embedder: embedder}
}

// Embed normalizes query and embeds it. An empty normalized query yields a nil
// vector without calling the embedder.
func (m *Matcher) Embed(ctx context.Context, query string) (string, []float64, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return "", nil, nil
	}
	vectors, err := m.embedder.EmbedStrings(ctx, []string{normalized})
	if err != nil {
		return normalized, nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return normalized, nil, fmt.Errorf("embed query: got %d vectors, want 1", len(vectors))
	}
	return normalized, vectors[0], nil
}

// Match embeds query and ranks it against candidates.
func (m *Matcher) Match(ctx context.Context, query string, candidates []model.KBEntry, threshold float64) (model.MatchResult, error) {
	_, vec, err := m.Embed(ctx, query)
	if err != nil {
		return model.MatchResult{Index: -1}, err
	}
	return Rank(vec, candidates, threshold), nil
}

// Rank picks the candidate most similar to vec. Ties keep the earliest
// candidate. A nil vec or an empty candidate set never matches.
func Rank(vec []float64, candidates []model.KBEntry, threshold float64) model.MatchResult {
	res := model.MatchResult{Index: -1}
	if len(vec) == 0 {
		return res
	}

	best := math.Inf(-1)
	for i, c := range candidates {
		score, ok := CosineSimilarity(vec, c.Embedding)
		if !ok {
			logx.Warn().Int("entry", c.Index).Int("query_dim", len(vec)).Int("entry_dim", len(c.Embedding)).
				Msg("skipping knowledge entry with mismatched embedding")
			continue
		}
		if score > best {
			best = score
			res.Index = i
		}
	}
	if res.Index < 0 {
		return res
	}

	res.Score = best
	res.Matched = best >= threshold
	if res.Matched {
		res.Answer = candidates[res.Index].Answer
	}
	return res
}

// CosineSimilarity returns the cosine of the angle between a and b. ok is
// false when the vectors differ in length or are empty. Zero-magnitude
// vectors score 0.
func CosineSimilarity(a, b []float64) (score float64, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, aMag, bMag float64
	for i := range a {
		dot += a[i] * b[i]
		aMag += a[i] * a[i]
		bMag += b[i] * b[i]
	}
	if aMag == 0 || bMag == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), true
}
