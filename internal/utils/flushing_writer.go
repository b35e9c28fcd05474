package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes from concurrent producers and flushes buffered destinations after each write,
// so reports emitted by long-running commands appear as soon as they are rendered.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
}

// NewFlushingWriter wraps destination. Writers that are already wrapped are returned unchanged.
func NewFlushingWriter(destination io.Writer) *FlushingWriter {
	if wrapped, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return wrapped
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when it buffers output.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if writer.destination == nil {
		return len(data), nil
	}

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedDestination, buffered := writer.destination.(flusher); buffered {
		return bytesWritten, bufferedDestination.Flush()
	}
	return bytesWritten, nil
}
