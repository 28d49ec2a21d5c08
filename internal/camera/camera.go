// Package camera acquires a live capture device for the scan screen. The
// result only drives what the scan screen displays; scanning itself is
// simulated and never waits on the camera.
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is what the scan screen shows in place of the preview.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnsupported
	StateDenied
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnsupported:
		return "unsupported"
	case StateDenied:
		return "denied"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrUnsupported means the host has no capture support at all.
	ErrUnsupported = errors.New("camera: not supported")
	// ErrDenied means a device exists but access was refused.
	ErrDenied = errors.New("camera: access denied")
	// ErrNoMatch means no device satisfies the constraints; the next
	// constraint set is tried.
	ErrNoMatch = errors.New("camera: no device matches constraints")
)

// Facing selects which way the camera points.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
	FacingAny         Facing = ""
)

// Constraints narrows which device may be opened.
type Constraints struct {
	Facing Facing
}

func (c Constraints) String() string {
	if c.Facing == FacingAny {
		return "any camera"
	}
	return string(c.Facing) + " camera"
}

// FallbackChain is tried in order: rear-facing first, then front-facing,
// then whatever is available.
var FallbackChain = []Constraints{
	{Facing: FacingEnvironment},
	{Facing: FacingUser},
	{Facing: FacingAny},
}

// Stream is an acquired capture device.
type Stream interface {
	Label() string
	Close() error
}

// Source opens capture devices.
type Source interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Session is one visit to the scan screen. Start acquires a stream and
// Release gives it back; Release may be called at any time, including while
// Start is still running, and any number of times.
type Session struct {
	source Source

	mu       sync.Mutex
	state    State
	stream   Stream
	err      error
	released bool
}

// NewSession prepares a session in the loading state. A nil source reports
// unsupported.
func NewSession(source Source) *Session {
	return &Session{source: source, state: StateLoading}
}

// Start walks FallbackChain until a device opens. Denied and unsupported
// stop the walk; other failures move on to the next constraint set. It
// blocks, so callers run it off the UI loop.
func (s *Session) Start(ctx context.Context) State {
	if s.source == nil {
		return s.finish(StateUnsupported, ErrUnsupported)
	}
	var lastErr error
	for _, c := range FallbackChain {
		if s.isReleased() {
			return s.State()
		}
		if err := ctx.Err(); err != nil {
			return s.finish(StateError, err)
		}
		stream, err := s.source.Open(ctx, c)
		if err == nil {
			return s.attach(stream)
		}
		switch {
		case errors.Is(err, ErrDenied):
			return s.finish(StateDenied, err)
		case errors.Is(err, ErrUnsupported):
			return s.finish(StateUnsupported, err)
		}
		lastErr = fmt.Errorf("%s: %w", c, err)
	}
	if lastErr == nil {
		lastErr = ErrNoMatch
	}
	return s.finish(StateError, lastErr)
}

// State reports the latest acquisition outcome.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the failure behind a denied, unsupported or error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Label names the acquired device, or "" when none is held.
func (s *Session) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return ""
	}
	return s.stream.Label()
}

// Release closes the stream if one is held. A stream that arrives after
// Release is closed immediately.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}

// Released reports whether Release has been called.
func (s *Session) Released() bool { return s.isReleased() }

func (s *Session) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *Session) attach(stream Stream) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		_ = stream.Close()
		return s.state
	}
	s.stream = stream
	s.state = StateReady
	s.err = nil
	return s.state
}

func (s *Session) finish(state State, err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return s.state
	}
	s.state = state
	s.err = err
	return s.state
}
