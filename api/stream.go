package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const streamReadSize = 4096

// LatexStream yields the chunked text/plain body of the LaTeX stream as
// decoded text, one transport chunk per Next call.
//
// Decoding is incremental: a multi-byte rune split across two reads is held
// back and emitted with the following chunk.
type LatexStream struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	buf     []byte
	pending []byte
	done    bool
}

// NewLatexStream wraps a response body.
func NewLatexStream(body io.ReadCloser) *LatexStream {
	return &LatexStream{body: body, buf: make([]byte, streamReadSize)}
}

// Next returns the text of the next chunk. It returns io.EOF once the stream
// has ended; any other error is a transport failure.
func (s *LatexStream) Next() (string, error) {
	for {
		if s.done {
			return "", io.EOF
		}
		n, err := s.body.Read(s.buf)
		if n > 0 {
			text := s.decode(s.buf[:n])
			if err == io.EOF {
				s.done = true
				text += s.flush()
			}
			if text != "" {
				return text, nil
			}
		}
		if err == io.EOF {
			s.done = true
			if rest := s.flush(); rest != "" {
				return rest, nil
			}
			return "", io.EOF
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", transport(0, err)
			}
			return "", transport(0, fmt.Errorf("stream interrupted: %w", err))
		}
	}
}

// decode returns the complete runes of pending+chunk and keeps any
// incomplete trailing sequence for the next read.
func (s *LatexStream) decode(chunk []byte) string {
	data := append(s.pending, chunk...)
	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				cut = i
			}
			break
		}
	}
	text := strings.ToValidUTF8(string(data[:cut]), string(utf8.RuneError))
	s.pending = append([]byte(nil), data[cut:]...)
	return text
}

// flush emits whatever is left at end of stream; a truncated rune becomes
// the replacement character.
func (s *LatexStream) flush() string {
	if len(s.pending) == 0 {
		return ""
	}
	text := strings.ToValidUTF8(string(s.pending), string(utf8.RuneError))
	s.pending = nil
	return text
}

// Close releases the response body.
func (s *LatexStream) Close() error {
	err := s.body.Close()
	if s.cancel != nil {
		s.cancel()
	}
	return err
}
