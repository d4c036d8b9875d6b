package prompt

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// flushingWriter pushes every prompt through a buffered output before the console blocks on input.
type flushingWriter struct {
	mutex  sync.Mutex
	target io.Writer
}

func newFlushingWriter(target io.Writer) io.Writer {
	if existing, wrapped := target.(*flushingWriter); wrapped {
		return existing
	}
	return &flushingWriter{target: target}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.target.Write(data)
	if writeError != nil {
		return written, writeError
	}
	if bufferedTarget, buffered := writer.target.(flusher); buffered {
		return written, bufferedTarget.Flush()
	}
	return written, nil
}
