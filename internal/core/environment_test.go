package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"production", Production},
		{" PROD ", Production},
		{"staging", Staging},
		{"test", Testing},
		{"", Development},
		{"something-else", Development},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEnvironment(tt.in), "input %q", tt.in)
	}
}

func TestEnvironmentDecode(t *testing.T) {
	var env Environment
	require.NoError(t, env.Decode("Production"))
	assert.True(t, env.IsProduction())
	assert.Equal(t, "production", env.String())
}
