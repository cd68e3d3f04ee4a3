// Package knowledge holds the immutable FAQ knowledge base and its
// precomputed question embeddings.
package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"gopkg.in/yaml.v3"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

//go:embed faq.yaml
var defaultFAQ []byte

// Base is safe for concurrent reads; it is never mutated after Load.
type Base struct {
	entries []model.KBEntry
	byTopic map[model.Topic][]model.KBEntry
}

// DefaultFAQs returns the built-in knowledge base definition.
func DefaultFAQs() ([]model.FAQ, error) {
	return ParseFAQs(defaultFAQ)
}

// ReadFAQs loads a knowledge base definition from a YAML file.
func ReadFAQs(path string) ([]model.FAQ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return ParseFAQs(data)
}

// ParseFAQs decodes and validates a YAML list of FAQ entries.
func ParseFAQs(data []byte) ([]model.FAQ, error) {
	var faqs []model.FAQ
	if err := yaml.Unmarshal(data, &faqs); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}
	if len(faqs) == 0 {
		return nil, fmt.Errorf("knowledge base is empty")
	}
	for i, f := range faqs {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			return nil, fmt.Errorf("knowledge entry %d: question and answer are required", i)
		}
	}
	return faqs, nil
}

// Load embeds every question once and builds the knowledge base.
func Load(ctx context.Context, embedder embedding.Embedder, faqs []model.FAQ) (*Base, error) {
	if len(faqs) == 0 {
		return nil, fmt.Errorf("knowledge base is empty")
	}

	questions := make([]string, len(faqs))
	for i, f := range faqs {
		questions[i] = f.Question
	}
	vectors, err := embedder.EmbedStrings(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("embed knowledge base: %w", err)
	}
	if len(vectors) != len(faqs) {
		return nil, fmt.Errorf("embed knowledge base: got %d vectors for %d questions", len(vectors), len(faqs))
	}

	b := &Base{
		entries: make([]model.KBEntry, len(faqs)),
		byTopic: make(map[model.Topic][]model.KBEntry),
	}
	for i, f := range faqs {
		entry := model.KBEntry{
			Index:     i,
			Question:  f.Question,
			Answer:    f.Answer,
			Topic:     f.Topic,
			Embedding: vectors[i],
		}
		b.entries[i] = entry
		if f.Topic != model.TopicNone {
			b.byTopic[f.Topic] = append(b.byTopic[f.Topic], entry)
		}
	}

	logx.Info().Int("entries", len(b.entries)).Int("topics", len(b.byTopic)).Msg("knowledge base loaded")
	return b, nil
}

// Entries returns every entry in knowledge base order.
func (b *Base) Entries() []model.KBEntry {
	return b.entries
}

// ByTopic returns the entries tagged with topic, in knowledge base order.
func (b *Base) ByTopic(topic model.Topic) []model.KBEntry {
	return b.byTopic[topic]
}

// First returns the canonical entry answered by the services menu option.
func (b *Base) First() model.KBEntry {
	return b.entries[0]
}

func (b *Base) Len() int {
	return len(b.entries)
}
