package events

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/hyprspaces/hyprspaces/internal/util"
)

// Source yields classified events. Next blocks for at most wait and returns a
// Timeout event when nothing arrived. After the stream closes every call
// returns Disconnected.
type Source interface {
	Next(wait time.Duration) Event
	Close() error
}

type deadlineReader interface {
	io.ReadCloser
	SetReadDeadline(t time.Time) error
}

// StreamSource reads the stream on the caller's goroutine using read
// deadlines for the bounded wait.
type StreamSource struct {
	conn    deadlineReader
	reader  *bufio.Reader
	partial []byte
	closed  bool
	logger  *util.Logger
	now     func() time.Time
}

// NewStreamSource wraps an established connection.
func NewStreamSource(conn deadlineReader, logger *util.Logger) *StreamSource {
	return &StreamSource{
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: logger,
		now:    time.Now,
	}
}

// DialStream connects to the event socket at path.
func DialStream(ctx context.Context, path string, logger *util.Logger) (*StreamSource, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	return NewStreamSource(conn, logger), nil
}

// Next implements Source.
func (s *StreamSource) Next(wait time.Duration) Event {
	if s.closed {
		return Event{Kind: Disconnected, At: s.now()}
	}
	deadline := s.now().Add(wait)
	for {
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return s.disconnect(err)
		}
		chunk, err := s.reader.ReadBytes('\n')
		s.partial = append(s.partial, chunk...)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return Event{Kind: Timeout, At: s.now()}
			}
			return s.disconnect(err)
		}
		line := string(s.partial)
		s.partial = s.partial[:0]
		if ev, ok := Classify(line, s.now()); ok {
			return ev
		}
		if s.logger != nil {
			s.logger.Tracef("ignored %q", line)
		}
		if !s.now().Before(deadline) {
			return Event{Kind: Timeout, At: s.now()}
		}
	}
}

func (s *StreamSource) disconnect(err error) Event {
	s.closed = true
	if s.logger != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.logger.Warnf("event stream error: %v", err)
	}
	return Event{Kind: Disconnected, At: s.now()}
}

// Close closes the connection. It is safe to call from another goroutine to
// unblock Next.
func (s *StreamSource) Close() error {
	return s.conn.Close()
}

// PushSource reads the stream on a background goroutine that only sends
// classified events over a channel; Next is the single consumer.
type PushSource struct {
	events    chan Event
	conn      io.ReadCloser
	closeOnce sync.Once
	done      chan struct{}
	closed    bool
	now       func() time.Time
}

// NewPushSource starts the reader goroutine on conn.
func NewPushSource(conn io.ReadCloser, logger *util.Logger) *PushSource {
	return newPushSource(conn, logger, time.Now)
}

func newPushSource(conn io.ReadCloser, logger *util.Logger, now func() time.Time) *PushSource {
	p := &PushSource{
		events: make(chan Event, 64),
		conn:   conn,
		done:   make(chan struct{}),
		now:    now,
	}
	go p.run(logger)
	return p
}

// DialPush connects to the event socket at path and starts pushing events.
func DialPush(ctx context.Context, path string, logger *util.Logger) (*PushSource, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	return NewPushSource(conn, logger), nil
}

func (p *PushSource) run(logger *util.Logger) {
	defer close(p.events)
	reader := bufio.NewReader(p.conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			ev, ok := Classify(line, p.now())
			if ok {
				select {
				case p.events <- ev:
				case <-p.done:
					return
				}
			} else if logger != nil {
				logger.Tracef("ignored %q", line)
			}
		}
		if err != nil {
			if logger != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warnf("event stream error: %v", err)
			}
			return
		}
	}
}

// Next implements Source.
func (p *PushSource) Next(wait time.Duration) Event {
	if p.closed {
		return Event{Kind: Disconnected, At: p.now()}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ev, ok := <-p.events:
		if !ok {
			p.closed = true
			return Event{Kind: Disconnected, At: p.now()}
		}
		return ev
	case <-timer.C:
		return Event{Kind: Timeout, At: p.now()}
	}
}

// Close stops the reader goroutine. Events already buffered are still
// returned by Next; once they drain Next reports Disconnected.
func (p *PushSource) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.conn.Close()
	})
	return err
}

var (
	_ Source = (*StreamSource)(nil)
	_ Source = (*PushSource)(nil)
)
