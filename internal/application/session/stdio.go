package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/toolmesh/fleet/internal/application/runner"
)

// frame is the newline-delimited JSON envelope exchanged with a stdio
// subordinate. The tool-protocol payload itself is out of scope; this is
// the minimal stand-in transport the Session Handle contract requires.
type frame struct {
	Kind string `json:"kind"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// Stdio is the Handle implementation bound to a live Process Runner's
// stdio pipes.
type Stdio struct {
	runner *runner.Runner

	mu     sync.Mutex
	reader *bufio.Reader
	closed bool
}

// NewStdio binds a Handle to r's stdio pipes. r must already be started.
func NewStdio(r *runner.Runner) *Stdio {
	return &Stdio{runner: r}
}

func (s *Stdio) exchange(ctx context.Context, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session: stdio handle closed")
	}

	stdin := s.runner.Stdin()
	stdout := s.runner.Stdout()
	if stdin == nil || stdout == nil {
		return fmt.Errorf("session: stdio transport not attached")
	}
	if s.reader == nil {
		s.reader = bufio.NewReader(stdout)
	}

	done := make(chan error, 1)
	go func() {
		enc := json.NewEncoder(stdin)
		if err := enc.Encode(frame{Kind: kind}); err != nil {
			done <- err
			return
		}
		line, err := s.reader.ReadString('\n')
		if err != nil {
			done <- err
			return
		}
		var resp frame
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			done <- err
			return
		}
		if !resp.OK {
			done <- fmt.Errorf("session: %s rejected: %s", kind, resp.Err)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handshake performs the stdio handshake exchange.
func (s *Stdio) Handshake(ctx context.Context) error {
	return s.exchange(ctx, "handshake")
}

// Ping performs the stdio liveness exchange.
func (s *Stdio) Ping(ctx context.Context) error {
	return s.exchange(ctx, "ping")
}

// Close releases the session's read buffer. Idempotent; does not stop the
// underlying process, which is owned by the lifecycle.
func (s *Stdio) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.reader = nil
	return nil
}

var _ io.Closer = (*Stdio)(nil)
