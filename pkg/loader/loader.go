// Package loader implements the background producer that decodes frames from
// a DecodeSource into a framebuffer.Buffer, looping forever until stopped.
package loader

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/framebuffer"
	"github.com/user/reelsync/pkg/ports"
)

var (
	// ErrOpen wraps failures to create or open the source.
	ErrOpen = errors.New("loader: open failed")
	// ErrDecode wraps failures to read a frame.
	ErrDecode = errors.New("loader: decode failed")
	// ErrEmptyMedium is returned when a source opens with no frames.
	ErrEmptyMedium = errors.New("loader: medium has no frames")
)

// State is the loader lifecycle state.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateDraining
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is published by the loader goroutine.
type Event interface {
	event()
}

// EventLoaded is published once, after a successful open.
type EventLoaded struct {
	Info  ports.MediaInfo
	Start int // start index after wrapping into range
}

// EventError is published once when the loader terminates on failure.
// Err wraps ErrOpen or ErrDecode.
type EventError struct {
	Err error
}

func (EventLoaded) event() {}
func (EventError) event() {}

// Options configures a Loader.
type Options struct {
	// Start is the first index to decode. It is reduced modulo the frame count.
	Start int
	// Logger receives debug output. Defaults to discarding.
	Logger ports.Logger
	// Notify is called from the loader goroutine. Implementations should hand
	// the event off to another goroutine rather than block.
	Notify func(Event)
}

// Stats is a snapshot of loader counters.
type Stats struct {
	Produced int64 // frames pushed into the buffer
	Waits    int64 // backoff sleeps while the buffer was full
	Wraps    int64 // times the index returned to 0
}

// Loader decodes frames on its own goroutine. A Loader runs once; seeking
// discards it and starts a new one.
type Loader struct {
	factory ports.SourceFactory
	path    string
	buf     *framebuffer.Buffer
	opts    Options
	logger  ports.Logger

	state   atomic.Int32
	stopped atomic.Bool
	failed  atomic.Bool

	mu      sync.Mutex
	started bool
	done    chan struct{}

	produced atomic.Int64
	waits    atomic.Int64
	wraps    atomic.Int64
}

// New creates a loader that will fill buf from the medium at path.
func New(factory ports.SourceFactory, path string, buf *framebuffer.Buffer, opts Options) *Loader {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	return &Loader{
		factory: factory,
		path:    path,
		buf:     buf,
		opts:    opts,
		logger:  log.WithComponent("loader"),
		done:    make(chan struct{}),
	}
}

// Start launches the producer goroutine. Calling Start more than once, or
// after Stop, has no effect.
func (l *Loader) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped.Load() {
		return
	}
	l.started = true
	go l.run()
}

// Stop requests termination and waits for the producer goroutine to exit.
// The source is closed before Stop returns and no frame is pushed afterwards.
// Stop is idempotent.
func (l *Loader) Stop() {
	l.mu.Lock()
	first := !l.stopped.Swap(true)
	if first && !l.started {
		close(l.done)
	}
	started := l.started
	l.mu.Unlock()

	if first && started {
		l.setState(StateDraining)
	}
	<-l.done
	l.setState(StateStopped)
}

// Done is closed when the producer goroutine exits.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	return State(l.state.Load())
}

// Buffer returns the buffer this loader fills.
func (l *Loader) Buffer() *framebuffer.Buffer {
	return l.buf
}

// Path returns the medium path.
func (l *Loader) Path() string {
	return l.path
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Produced: l.produced.Load(),
		Waits:    l.waits.Load(),
		Wraps:    l.wraps.Load(),
	}
}

func (l *Loader) setState(s State) {
	l.state.Store(int32(s))
}

func (l *Loader) run() {
	defer func() {
		if l.failed.Load() {
			l.setState(StateStopped)
		}
		close(l.done)
	}()

	src, info, err := l.open()
	if err != nil {
		l.fail(err)
		return
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			l.logger.Warn("Failed to close %s: %v", l.path, cerr)
		}
	}()

	if in, ok := src.(ports.Interruptible); ok {
		in.SetInterrupt(l.stopped.Load)
	}

	idx := wrap(l.opts.Start, info.FrameCount)
	l.publish(EventLoaded{Info: info, Start: idx})
	if l.stopped.Load() {
		return
	}
	l.setState(StateRunning)
	l.logger.Debug("Decoding %s from frame %d of %d", l.path, idx, info.FrameCount)

	for !l.stopped.Load() {
		f, err := src.Read(idx)
		if errors.Is(err, ports.ErrInterrupted) {
			return
		}
		if errors.Is(err, ports.ErrEndOfSequence) {
			if idx == 0 {
				l.fail(fmt.Errorf("%w: %s: stream ended before frame 0", ErrDecode, l.path))
				return
			}
			// Stream ended before the reported count; loop.
			l.logger.Debug("End of stream at frame %d, wrapping", idx)
			l.wraps.Inc()
			idx = 0
			continue
		}
		if err != nil {
			l.fail(fmt.Errorf("%w: %s: frame %d: %w", ErrDecode, l.path, idx, err))
			return
		}

		ok, waits := l.buf.Push(framebuffer.Item{Frame: f, Index: idx}, l.stopped.Load)
		l.waits.Add(int64(waits))
		if !ok {
			return
		}
		l.produced.Inc()

		idx++
		if idx >= info.FrameCount {
			idx = 0
			l.wraps.Inc()
		}
	}
}

func (l *Loader) open() (ports.DecodeSource, ports.MediaInfo, error) {
	src, err := l.factory(l.path)
	if err != nil {
		return nil, ports.MediaInfo{}, fmt.Errorf("%w: %s: %w", ErrOpen, l.path, err)
	}
	info, err := src.Open(l.path)
	if err != nil {
		src.Close()
		return nil, ports.MediaInfo{}, fmt.Errorf("%w: %s: %w", ErrOpen, l.path, err)
	}
	if info.FrameCount <= 0 {
		src.Close()
		return nil, ports.MediaInfo{}, fmt.Errorf("%w: %s: %w", ErrOpen, l.path, ErrEmptyMedium)
	}
	return src, info, nil
}

// fail moves the loader to draining; run marks it stopped once the source is closed.
func (l *Loader) fail(err error) {
	l.failed.Store(true)
	l.setState(StateDraining)
	l.logger.Error("%v", err)
	l.publish(EventError{Err: err})
}

// publish suppresses events once Stop has been requested, so a replaced
// loader never reports into its successor's session.
func (l *Loader) publish(ev Event) {
	if l.opts.Notify == nil || l.stopped.Load() {
		return
	}
	l.opts.Notify(ev)
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
