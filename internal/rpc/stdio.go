package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Requests can inline full source files and test vectors, so lines get a
// generous ceiling instead of bufio's default.
const maxLineBytes = 16 * 1024 * 1024

// StdioSession serves the line-delimited JSON protocol over a reader and
// writer pair, one response line per request line. Blank lines are
// skipped; malformed lines produce an error response with a null id
// rather than ending the session.
type StdioSession struct {
	in   io.Reader
	out  io.Writer
	disp *Dispatcher
	log  *slog.Logger
}

func NewStdioSession(in io.Reader, out io.Writer, disp *Dispatcher, log *slog.Logger) *StdioSession {
	return &StdioSession{in: in, out: out, disp: disp, log: log}
}

func (s *StdioSession) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	w := bufio.NewWriter(s.out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.disp.Handle(ctx, line)
		b, err := json.Marshal(resp)
		if err != nil {
			// the envelope itself is always marshalable; this guards
			// the session anyway
			s.log.Error("failed to marshal response", "error", err)
			continue
		}
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request line: %w", err)
	}
	return nil
}
