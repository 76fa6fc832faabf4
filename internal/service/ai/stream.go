package ai

import (
	"github.com/cloudwego/eino/schema"
)

// Stream normalizes provider output into plain text fragments. Upstream
// chunks arrive as schema messages that may be nil or empty; downstream
// consumers only ever see strings and io.EOF.
type Stream struct {
	inner *schema.StreamReader[*schema.Message]
}

func newStream(inner *schema.StreamReader[*schema.Message]) *Stream {
	return &Stream{inner: inner}
}

// Recv returns the next text fragment. io.EOF signals normal end of stream;
// any other error is a provider fault. Nil chunks are skipped.
func (s *Stream) Recv() (string, error) {
	for {
		chunk, err := s.inner.Recv()
		if err != nil {
			return "", err
		}
		if chunk == nil {
			continue
		}
		return chunk.Content, nil
	}
}

// Close releases the underlying stream.
func (s *Stream) Close() {
	s.inner.Close()
}
