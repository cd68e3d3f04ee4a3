package leads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	"github.com/bytecode-faq-assistant/server/internal/agent/sink"
)

type failingSink struct{}

func (failingSink) Append(context.Context, string) error { return errors.New("read-only fs") }
func (failingSink) Close() error                         { return nil }

func TestFormat(t *testing.T) {
	assert.Equal(t, "Jane Doe,jane@x.io,An app, with commas",
		Format(model.Lead{Name: "Jane Doe", Email: "jane@x.io", ProjectDetails: "An app, with commas"}))
}

func TestRecordAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.txt")
	s, err := sink.NewFileSink(path, 1)
	require.NoError(t, err)

	r := NewRecorder(s)
	require.NoError(t, r.Record(context.Background(), model.Lead{Name: "jane", Email: "J@X.IO", ProjectDetails: "shop\nwith cart"}))
	require.NoError(t, r.Record(context.Background(), model.Lead{Name: "bob", Email: "b@y.io", ProjectDetails: "crm"}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jane,J@X.IO,shop with cart\nbob,b@y.io,crm\n", string(data))
}

func TestRecordReturnsSinkError(t *testing.T) {
	err := NewRecorder(failingSink{}).Record(context.Background(), model.Lead{Name: "x"})
	assert.ErrorContains(t, err, "read-only fs")
}
