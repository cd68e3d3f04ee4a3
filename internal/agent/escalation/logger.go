// Package escalation records questions the knowledge base could not answer.
package escalation

import (
	"context"
	"sync"

	"github.com/bytecode-faq-assistant/server/internal/agent/sink"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

const DefaultBuffer = 256

// Logger appends unanswered questions from a single background goroutine.
// Log never blocks the caller: when the buffer is full the entry is dropped.
type Logger struct {
	sink  sink.LineSink
	queue chan string

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func New(s sink.LineSink, buffer int) *Logger {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	l := &Logger{
		sink:  s,
		queue: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues text and reports whether it was accepted.
func (l *Logger) Log(text string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		logx.Warn().Str("question", text).Msg("Escalation logger closed; dropping unanswered question")
		return false
	}

	select {
	case l.queue <- text:
		return true
	default:
		logx.Warn().Str("question", text).Int("buffer", cap(l.queue)).Msg("Escalation buffer full; dropping unanswered question")
		return false
	}
}

func (l *Logger) run() {
	defer close(l.done)
	for text := range l.queue {
		if err := l.sink.Append(context.Background(), text); err != nil {
			logx.Error().Err(err).Str("question", text).Msg("Failed to record unanswered question")
		}
	}
}

// Close stops accepting entries and waits until the queued ones are written
// or ctx ends.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
