package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldLine(t *testing.T) {
	assert.Equal(t, "a b c d", FoldLine("a\nb\r\nc\rd"))
	assert.Equal(t, "plain", FoldLine("plain"))
}

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	s, err := NewFileSink(path, 1)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "first"))
	require.NoError(t, s.Append(ctx, "multi\nline"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nmulti line\n", string(data))
}

func TestFileSinkKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	s, err := NewFileSink(path, 1)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), "new"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestFileSinkDoesNotRotateByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.txt")

	for _, size := range []int{0, -1} {
		s, err := NewFileSink(path, size)
		require.NoError(t, err)
		assert.Equal(t, noRotationMB, s.w.MaxSize)
		require.NoError(t, s.Append(context.Background(), "lead"))
		require.NoError(t, s.Close())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "leads.txt", entries[0].Name())
}

func TestFileSinkRotatesPastMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.txt")
	s, err := NewFileSink(path, 1)
	require.NoError(t, err)

	line := strings.Repeat("x", 64*1024)
	for range 20 {
		require.NoError(t, s.Append(context.Background(), line))
	}
	require.NoError(t, s.Close())

	backups, err := filepath.Glob(filepath.Join(dir, "leads-*.txt"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
	assert.FileExists(t, path)
}

func TestFileSinkConcurrentWritesDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := NewFileSink(path, 10)
	require.NoError(t, err)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				assert.NoError(t, s.Append(context.Background(), fmt.Sprintf("writer-%d-record-%03d", w, i)))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, writers*perWriter)

	var want []string
	for w := range writers {
		for i := range perWriter {
			want = append(want, fmt.Sprintf("writer-%d-record-%03d", w, i))
		}
	}
	sort.Strings(want)
	sort.Strings(lines)
	assert.Equal(t, want, lines)
}

func TestNewFileSinkRejectsEmptyPath(t *testing.T) {
	_, err := NewFileSink("", 1)
	assert.Error(t, err)
}

func TestRedisSink(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisSink(client, "faqbot:test")
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "one"))
	require.NoError(t, s.Append(ctx, "two\nlines"))
	require.NoError(t, s.Close())

	got, err := client.LRange(ctx, "faqbot:test", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two lines"}, got)
}

func TestRedisSinkError(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	srv.Close()

	err := NewRedisSink(client, "k").Append(context.Background(), "x")
	assert.Error(t, err)
}
