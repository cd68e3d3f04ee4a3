// Package embedding exposes the Gemini embeddings API as an Eino embedder.
package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

// maxBatch is the largest number of texts sent in one EmbedContent call.
const maxBatch = 100

// GenAIEmbedder generates embeddings using Google's Gemini API.
type GenAIEmbedder struct {
	client   *genai.Client
	model    string
	taskType string
}

var _ embedding.Embedder = (*GenAIEmbedder)(nil)

// NewGenAIEmbedder wraps an existing genai client.
func NewGenAIEmbedder(client *genai.Client, cfg model.EmbeddingModelConfig) (*GenAIEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}
	name := cfg.Model
	if name == "" {
		name = "gemini-embedding-001"
	}
	task := cfg.TaskType
	if task == "" {
		task = "SEMANTIC_SIMILARITY"
	}
	return &GenAIEmbedder{client: client, model: name, taskType: task}, nil
}

// EmbedStrings embeds texts in order, batching requests to the API.
func (e *GenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			TaskType: e.taskType,
		})
		if err != nil {
			return nil, fmt.Errorf("genai embed failed: %w", err)
		}
		if len(result.Embeddings) != end-start {
			return nil, fmt.Errorf("genai embed returned %d embeddings for %d texts", len(result.Embeddings), end-start)
		}
		for _, emb := range result.Embeddings {
			out = append(out, toFloat64(emb.Values))
		}
	}

	logx.Debug().Str("model", e.model).Int("texts", len(texts)).Msg("embedded texts")
	return out, nil
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
