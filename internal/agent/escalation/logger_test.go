package escalation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memorySink struct {
	mu    sync.Mutex
	lines []string
	gate  chan struct{}
	err   error
}

func (s *memorySink) Append(_ context.Context, line string) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return s.err
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func TestLogWritesInOrderAndCloseDrains(t *testing.T) {
	s := &memorySink{}
	l := New(s, 8)

	assert.True(t, l.Log("first"))
	assert.True(t, l.Log("first"))
	assert.True(t, l.Log("second"))

	require.NoError(t, l.Close(context.Background()))
	assert.Equal(t, []string{"first", "first", "second"}, s.Lines())
}

func TestLogDropsWhenBufferFull(t *testing.T) {
	s := &memorySink{gate: make(chan struct{})}
	l := New(s, 1)

	// One entry is held by the blocked writer, one fills the buffer.
	require.True(t, l.Log("a"))
	require.Eventually(t, func() bool { return len(l.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, l.Log("b"))
	assert.False(t, l.Log("c"))

	close(s.gate)
	require.NoError(t, l.Close(context.Background()))
	assert.Equal(t, []string{"a", "b"}, s.Lines())
}

func TestLogAfterCloseIsDropped(t *testing.T) {
	s := &memorySink{}
	l := New(s, 4)
	require.NoError(t, l.Close(context.Background()))
	require.NoError(t, l.Close(context.Background()))

	assert.False(t, l.Log("late"))
	assert.Empty(t, s.Lines())
}

func TestSinkErrorsDoNotStopTheWriter(t *testing.T) {
	s := &memorySink{err: errors.New("disk full")}
	l := New(s, 4)

	l.Log("x")
	l.Log("y")
	require.NoError(t, l.Close(context.Background()))
	assert.Equal(t, []string{"x", "y"}, s.Lines())
}

func TestCloseHonoursContext(t *testing.T) {
	s := &memorySink{gate: make(chan struct{})}
	l := New(s, 4)
	l.Log("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Close(ctx), context.DeadlineExceeded)

	close(s.gate)
	require.NoError(t, l.Close(context.Background()))
}

func TestConcurrentLog(t *testing.T) {
	s := &memorySink{}
	l := New(s, 1000)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				l.Log("q")
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close(context.Background()))
	assert.Len(t, s.Lines(), 500)
}
