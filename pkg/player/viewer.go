// Package player implements the viewer controller. A Viewer owns one
// medium's loader and frame buffer and presents frames at a controllable
// rate, optionally following or leading a sync group.
//
// Every Viewer method must be called on the scheduler goroutine, except
// Alive, ID and Path which are safe anywhere.
package player

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/user/reelsync/pkg/adapters/logger"
	"github.com/user/reelsync/pkg/adapters/lognotifier"
	"github.com/user/reelsync/pkg/adapters/nulldisplay"
	"github.com/user/reelsync/pkg/clock"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/framebuffer"
	"github.com/user/reelsync/pkg/loader"
	"github.com/user/reelsync/pkg/ports"
	"github.com/user/reelsync/pkg/syncgroup"
)

var (
	ErrMissingDeps  = errors.New("player: source factory and scheduler are required")
	ErrInvalidRate  = errors.New("player: rate must be positive")
	ErrInvalidSpeed = errors.New("player: speed must be positive")
	ErrNotLoaded    = errors.New("player: no medium loaded")
	ErrClosed       = errors.New("player: viewer closed")
)

// Deps are the collaborators a Viewer talks to.
type Deps struct {
	Factory   ports.SourceFactory
	Scheduler ports.Scheduler
	Display   ports.Display      // defaults to discarding frames
	Notifier  ports.Notifier     // defaults to logging
	Logger    ports.Logger       // defaults to no-op
	NewClock  ports.ClockFactory // defaults to clock.Factory(Scheduler)
}

// State is a snapshot of a viewer's playback state.
type State struct {
	CurrentFrame int
	TotalFrames  int
	Rate         float64
	Speed        float64
	Playing      bool
	Loaded       bool
	LastFrame    *frame.RGB
}

type subscriber struct {
	id uint64
	fn func(f *frame.RGB, index int)
}

// Viewer plays one medium.
type Viewer struct {
	id     string
	deps   Deps
	opts   Options
	logger ports.Logger
	clock  ports.Clock
	alive  atomic.Bool

	path  string
	info  ports.MediaInfo
	state State

	buf       *framebuffer.Buffer
	ld        *loader.Loader
	loaderGen uint64
	reloading bool

	seekGen     uint64
	seekPending bool
	cancelPoll  func()

	group      *syncgroup.Group
	subs       []subscriber
	nextSub    uint64
	closeHooks []func(*Viewer)
}

// New creates an idle viewer. Call Load to open a medium.
func New(deps Deps, opts Options) (*Viewer, error) {
	if deps.Factory == nil || deps.Scheduler == nil {
		return nil, ErrMissingDeps
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoop()
	}
	if deps.Display == nil {
		deps.Display = nulldisplay.New()
	}
	if deps.Notifier == nil {
		deps.Notifier = lognotifier.New(deps.Logger)
	}
	if deps.NewClock == nil {
		deps.NewClock = clock.Factory(deps.Scheduler)
	}
	opts = opts.withDefaults()

	v := &Viewer{
		id:     uuid.NewString(),
		deps:   deps,
		opts:   opts,
		logger: deps.Logger.WithComponent("viewer"),
		state:  State{Rate: opts.DefaultRate, Speed: 1},
	}
	v.clock = deps.NewClock(v.Tick)
	v.alive.Store(true)
	return v, nil
}

// ID returns the viewer's unique handle.
func (v *Viewer) ID() string {
	return v.id
}

// Path returns the medium path, empty before Load.
func (v *Viewer) Path() string {
	return v.path
}

// Name returns the medium's base name.
func (v *Viewer) Name() string {
	if v.path == "" {
		return ""
	}
	return filepath.Base(v.path)
}

// Info returns the media description reported by the last open.
func (v *Viewer) Info() ports.MediaInfo {
	return v.info
}

// Alive reports whether the viewer has not been closed.
func (v *Viewer) Alive() bool {
	return v.alive.Load()
}

// Snapshot returns a copy of the playback state.
func (v *Viewer) Snapshot() State {
	return v.state
}

// IsPlaying reports whether the clock is advancing frames.
func (v *Viewer) IsPlaying() bool { return v.state.Playing }

// CurrentFrame returns the index of the frame last shown.
func (v *Viewer) CurrentFrame() int { return v.state.CurrentFrame }

// Rate returns the playback rate in frames per second.
func (v *Viewer) Rate() float64 { return v.state.Rate }

// Speed returns the speed multiplier applied to Rate.
func (v *Viewer) Speed() float64 { return v.state.Speed }

// LastFrame returns the most recently displayed decoded frame.
func (v *Viewer) LastFrame() *frame.RGB { return v.state.LastFrame }

// Buffered returns the number of decoded frames waiting to be shown.
func (v *Viewer) Buffered() int {
	if v.buf == nil {
		return 0
	}
	return v.buf.Len()
}

// Stats returns the current loader's counters.
func (v *Viewer) Stats() loader.Stats {
	if v.ld == nil {
		return loader.Stats{}
	}
	return v.ld.Stats()
}

// Load opens path, replacing any medium already loaded. Playback starts
// from frame 0 once the loader reports the medium is open.
func (v *Viewer) Load(path string) error {
	if !v.Alive() {
		return ErrClosed
	}
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrNotLoaded)
	}
	v.Pause()
	v.cancelSeekPoll()

	v.path = path
	v.info = ports.MediaInfo{}
	v.state.Loaded = false
	v.state.TotalFrames = 0
	v.state.CurrentFrame = 0
	v.state.LastFrame = nil

	v.logger.Info("Opening %s", path)
	v.startLoader(0, false)
	return nil
}

// Tick shows the next buffered frame, if any. It is driven by the clock.
func (v *Viewer) Tick() {
	if !v.Alive() || v.buf == nil {
		return
	}
	it, ok := v.buf.TryPop()
	if !ok {
		return
	}
	v.show(it)
	if v.IsMaster() {
		v.group.SyncFrame(it.Index)
	}
}

// SeekTo restarts decoding at index, wrapped into range. The current frame
// index changes immediately; the frame itself appears once decoded.
func (v *Viewer) SeekTo(index int) error {
	if !v.Alive() {
		return ErrClosed
	}
	if !v.state.Loaded || v.state.TotalFrames <= 0 {
		return ErrNotLoaded
	}
	idx := wrapIndex(index, v.state.TotalFrames)

	v.cancelSeekPoll()
	v.startLoader(idx, true)
	v.state.CurrentFrame = idx
	v.seekPending = true
	v.logger.Debug("Seek to frame %d", idx)

	gen := v.seekGen
	v.schedulePoll(gen, v.opts.SeekRetries, v.opts.SeekInitialDelay)
	return nil
}

// Play starts the clock.
func (v *Viewer) Play() {
	if !v.Alive() || !v.state.Loaded {
		return
	}
	v.state.Playing = true
	v.clock.Start(v.interval())
	if v.IsMaster() {
		v.group.SetPlaying(true)
	}
}

// Pause stops the clock.
func (v *Viewer) Pause() {
	v.state.Playing = false
	v.clock.Stop()
	if v.Alive() && v.IsMaster() {
		v.group.SetPlaying(false)
	}
}

// TogglePlayback switches between Play and Pause.
func (v *Viewer) TogglePlayback() {
	if v.state.Playing {
		v.Pause()
	} else {
		v.Play()
	}
}

// SetRate sets the nominal frames per second, clamped to [MinRate, MaxRate].
func (v *Viewer) SetRate(r float64) error {
	if !(r > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, r)
	}
	v.setRate(ClampRate(r))
	return nil
}

// SetSpeed sets the playback speed multiplier. Speed is not propagated to
// followers.
func (v *Viewer) SetSpeed(m float64) error {
	if !(m > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, m)
	}
	v.state.Speed = m
	if v.state.Playing {
		v.clock.Start(v.interval())
	}
	return nil
}

// NextFrame steps forward one frame, wrapping from the last frame to 0.
func (v *Viewer) NextFrame() error {
	return v.step(1)
}

// PrevFrame steps back one frame, wrapping from 0 to the last frame.
func (v *Viewer) PrevFrame() error {
	return v.step(-1)
}

// Subscribe registers fn for every frame shown from the buffer.
func (v *Viewer) Subscribe(fn func(f *frame.RGB, index int)) (cancel func()) {
	v.nextSub++
	id := v.nextSub
	v.subs = append(v.subs, subscriber{id: id, fn: fn})
	return func() {
		v.subs = slices.DeleteFunc(v.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Present hands f to the display as a composited frame without touching
// the viewer's state.
func (v *Viewer) Present(f *frame.RGB) {
	if !v.Alive() || f == nil {
		return
	}
	v.deps.Display.Display(f, ports.FrameInfo{
		Index:      v.state.CurrentFrame,
		Total:      v.state.TotalFrames,
		Composited: true,
	})
}

// OnClose registers fn to run once when the viewer closes.
func (v *Viewer) OnClose(fn func(*Viewer)) {
	v.closeHooks = append(v.closeHooks, fn)
}

// Close stops playback and decoding and marks the viewer dead. It is idempotent.
func (v *Viewer) Close() {
	if !v.alive.CompareAndSwap(true, false) {
		return
	}
	v.clock.Stop()
	v.state.Playing = false
	v.cancelSeekPoll()
	v.stopLoader()
	v.buf = nil
	v.subs = nil

	hooks := v.closeHooks
	v.closeHooks = nil
	for _, fn := range hooks {
		fn(v)
	}
	v.logger.Info("Closed %s", v.Name())
}

func (v *Viewer) show(it framebuffer.Item) {
	v.seekPending = false
	v.state.CurrentFrame = it.Index
	v.state.LastFrame = it.Frame
	v.deps.Display.Display(it.Frame, ports.FrameInfo{Index: it.Index, Total: v.state.TotalFrames})

	for _, s := range slices.Clone(v.subs) {
		s.fn(it.Frame, it.Index)
	}
}

func (v *Viewer) step(delta int) error {
	if !v.Alive() {
		return ErrClosed
	}
	if !v.state.Loaded || v.state.TotalFrames <= 0 {
		return ErrNotLoaded
	}
	wasPlaying := v.state.Playing
	if wasPlaying {
		v.Pause()
	}
	if err := v.SeekTo(v.state.CurrentFrame + delta); err != nil {
		return err
	}
	if wasPlaying {
		v.Play()
	}
	return nil
}

func (v *Viewer) setRate(r float64) {
	v.state.Rate = r
	if v.state.Playing {
		v.clock.Start(v.interval())
	}
	if v.IsMaster() {
		v.group.SetRate(r)
	}
}

func (v *Viewer) interval() time.Duration {
	fps := v.state.Rate * v.state.Speed
	if fps <= 0 {
		fps = v.opts.DefaultRate
	}
	return time.Duration(float64(time.Second) / fps)
}

func (v *Viewer) startLoader(start int, reload bool) {
	v.stopLoader()

	v.loaderGen++
	gen := v.loaderGen
	v.reloading = reload
	v.buf = framebuffer.New(v.opts.BufferCapacity, v.opts.PollInterval)
	v.ld = loader.New(v.deps.Factory, v.path, v.buf, loader.Options{
		Start:  start,
		Logger: v.deps.Logger,
		Notify: func(ev loader.Event) {
			v.deps.Scheduler.Post(func() { v.handleLoaderEvent(gen, ev) })
		},
	})
	v.ld.Start()
}

func (v *Viewer) stopLoader() {
	if v.ld != nil {
		v.ld.Stop()
		v.ld = nil
	}
}

func (v *Viewer) handleLoaderEvent(gen uint64, ev loader.Event) {
	if gen != v.loaderGen || !v.Alive() {
		return
	}
	switch e := ev.(type) {
	case loader.EventLoaded:
		v.info = e.Info
		v.state.TotalFrames = e.Info.FrameCount
		if v.reloading {
			// keep position and any rate the user set
			return
		}
		v.state.Loaded = true
		v.state.CurrentFrame = 0
		rate := e.Info.Rate
		if !(rate > 0) {
			rate = v.opts.DefaultRate
		}
		v.logger.Info("Loaded %s: %d frames at %.2f fps", v.Name(), e.Info.FrameCount, rate)
		v.setRate(ClampRate(rate))
		v.Play()

	case loader.EventError:
		v.logger.Error("Playback of %s stopped: %v", v.Name(), e.Err)
		v.deps.Notifier.ReportError(e.Err.Error())
		v.Pause()
	}
}

func (v *Viewer) schedulePoll(gen uint64, remaining int, delay time.Duration) {
	v.cancelPoll = v.deps.Scheduler.After(delay, func() { v.pollSeek(gen, remaining) })
}

// pollSeek shows the first frame of the post-seek buffer, unless a tick got
// there first or a newer seek superseded this one.
func (v *Viewer) pollSeek(gen uint64, remaining int) {
	if gen != v.seekGen || !v.Alive() || !v.seekPending || v.buf == nil {
		return
	}
	v.cancelPoll = nil
	if it, ok := v.buf.TryPop(); ok {
		v.show(it)
		if v.IsMaster() {
			v.group.SyncFrame(it.Index)
		}
		return
	}
	remaining--
	if remaining <= 0 {
		v.logger.Warn("No frame decoded after seek to %d", v.state.CurrentFrame)
		return
	}
	v.schedulePoll(gen, remaining, v.opts.SeekRetryDelay)
}

func (v *Viewer) cancelSeekPoll() {
	v.seekGen++
	v.seekPending = false
	if v.cancelPoll != nil {
		v.cancelPoll()
		v.cancelPoll = nil
	}
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
