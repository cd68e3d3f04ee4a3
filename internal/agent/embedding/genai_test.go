package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
)

func TestNewGenAIEmbedderRequiresClient(t *testing.T) {
	_, err := NewGenAIEmbedder(nil, model.EmbeddingModelConfig{})
	assert.Error(t, err)
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, []float64{0.5, -1, 0}, toFloat64([]float32{0.5, -1, 0}))
	assert.Empty(t, toFloat64(nil))
}
