package player

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/reelsync/pkg/eventloop"
	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/mocks"
	"github.com/user/reelsync/pkg/syncgroup"
)

const waitFor = 2 * time.Second

type harness struct {
	t        *testing.T
	loop     *eventloop.Loop
	src      *mocks.PatternSource
	display  *mocks.Display
	notifier *mocks.Notifier
	clocks   []*mocks.Clock
	v        *Viewer
}

func testOptions() Options {
	return Options{
		BufferCapacity:   4,
		PollInterval:     time.Millisecond,
		SeekInitialDelay: time.Millisecond,
		SeekRetries:      100,
		SeekRetryDelay:   time.Millisecond,
	}
}

func newHarness(t *testing.T, loop *eventloop.Loop, src *mocks.PatternSource) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		loop:     loop,
		src:      src,
		display:  &mocks.Display{},
		notifier: &mocks.Notifier{},
	}
	v, err := New(Deps{
		Factory:   src.Factory(),
		Scheduler: loop,
		Display:   h.display,
		Notifier:  h.notifier,
		NewClock:  mocks.NewClock(&h.clocks),
	}, testOptions())
	require.NoError(t, err)
	h.v = v
	t.Cleanup(v.Close)
	return h
}

// load opens the medium and runs the loop until the viewer is playing.
func (h *harness) load() {
	h.t.Helper()
	require.NoError(h.t, h.v.Load("clip.tif"))
	require.Eventually(h.t, func() bool {
		h.loop.RunPending()
		return h.v.Snapshot().Loaded
	}, waitFor, time.Millisecond)
}

// tick waits for a buffered frame, then fires the clock once.
func (h *harness) tick() {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		h.loop.RunPending()
		return h.v.Buffered() > 0
	}, waitFor, time.Millisecond)
	require.True(h.t, h.clock().Fire(), "clock not running")
}

// settle runs the loop until the display has shown index.
func (h *harness) settle(index int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		h.loop.RunPending()
		last, ok := h.display.Last()
		return ok && last.Info.Index == index && !last.Info.Composited
	}, waitFor, time.Millisecond)
}

func (h *harness) clock() *mocks.Clock {
	return h.clocks[0]
}

func TestNew_RequiresFactoryAndScheduler(t *testing.T) {
	_, err := New(Deps{}, Options{})
	require.ErrorIs(t, err, ErrMissingDeps)
}

func TestViewer_LoadStartsPlaybackAtMediumRate(t *testing.T) {
	src := mocks.NewPatternSource(50)
	src.Rate = 25
	h := newHarness(t, eventloop.New(), src)
	h.load()

	st := h.v.Snapshot()
	require.Equal(t, 50, st.TotalFrames)
	require.Equal(t, 0, st.CurrentFrame)
	require.Equal(t, 25.0, st.Rate)
	require.True(t, st.Playing)
	require.True(t, h.clock().Running())
	require.Equal(t, time.Second/25, h.clock().Interval())
	require.Equal(t, 50, h.v.Info().FrameCount)
	require.Equal(t, "clip.tif", h.v.Name())
}

func TestViewer_LoadClampsOrDefaultsRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"unknown rate", 0, DefaultRate},
		{"too fast", 1000, MaxRate},
		{"too slow", 0.2, MinRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := mocks.NewPatternSource(5)
			src.Rate = tt.rate
			h := newHarness(t, eventloop.New(), src)
			h.load()
			require.Equal(t, tt.want, h.v.Rate())
		})
	}
}

func TestViewer_TickShowsFramesInOrderAndLoops(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.load()

	for i := 0; i < 12; i++ {
		h.tick()
	}

	require.Equal(t, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1}, h.display.Indices())
	for _, s := range h.display.Shown() {
		require.Equal(t, s.Info.Index, mocks.PatternIndex(s.Frame))
		require.Equal(t, 5, s.Info.Total)
	}
	require.Equal(t, 1, h.v.CurrentFrame())
	require.Equal(t, 1, mocks.PatternIndex(h.v.LastFrame()))
}

func TestViewer_TickWithoutBufferedFrameIsNoop(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.v.Tick()
	require.Empty(t, h.display.Shown())
}

func TestViewer_SeekShowsTargetAndNoStaleFrames(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()
	h.tick()
	h.tick()

	require.NoError(t, h.v.SeekTo(40))
	require.Equal(t, 40, h.v.CurrentFrame(), "index updates before the frame arrives")

	h.settle(40)
	h.display.Reset()
	for i := 0; i < 3; i++ {
		h.tick()
	}
	require.Equal(t, []int{41, 42, 43}, h.display.Indices())
}

func TestViewer_SeekWrapsIndex(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()

	require.NoError(t, h.v.SeekTo(-1))
	require.Equal(t, 49, h.v.CurrentFrame())
	h.settle(49)

	require.NoError(t, h.v.SeekTo(53))
	require.Equal(t, 3, h.v.CurrentFrame())
	h.settle(3)
}

func TestViewer_NewerSeekSupersedesOlder(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()
	h.v.Pause()

	require.NoError(t, h.v.SeekTo(10))
	require.NoError(t, h.v.SeekTo(20))
	h.settle(20)

	for _, idx := range h.display.Indices() {
		require.NotEqual(t, 10, idx, "frame from superseded seek was shown")
	}
}

func TestViewer_SeekBeforeLoad(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	require.ErrorIs(t, h.v.SeekTo(2), ErrNotLoaded)
	require.ErrorIs(t, h.v.NextFrame(), ErrNotLoaded)
}

func TestViewer_SeekReloadKeepsUserRate(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()

	require.NoError(t, h.v.SetRate(12))
	require.NoError(t, h.v.SeekTo(10))
	h.settle(10)

	st := h.v.Snapshot()
	require.Equal(t, 12.0, st.Rate)
	require.Equal(t, 50, st.TotalFrames)
	require.Equal(t, 10, st.CurrentFrame)
}

func TestViewer_SetRateClampsAndRearms(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.load()
	starts := h.clock().Starts()

	require.NoError(t, h.v.SetRate(500))
	require.Equal(t, MaxRate, h.v.Rate())
	maxRate := MaxRate
	require.Equal(t, time.Duration(float64(time.Second)/maxRate), h.clock().Interval())
	require.Greater(t, h.clock().Starts(), starts)

	require.NoError(t, h.v.SetRate(0.5))
	require.Equal(t, MinRate, h.v.Rate())

	require.ErrorIs(t, h.v.SetRate(0), ErrInvalidRate)
	require.ErrorIs(t, h.v.SetRate(-3), ErrInvalidRate)
	require.Equal(t, MinRate, h.v.Rate())
}

func TestViewer_SetSpeedScalesInterval(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.load()

	require.NoError(t, h.v.SetSpeed(2))
	require.Equal(t, time.Second/60, h.clock().Interval())
	require.ErrorIs(t, h.v.SetSpeed(0), ErrInvalidSpeed)

	h.v.Pause()
	require.NoError(t, h.v.SetSpeed(0.5))
	require.False(t, h.clock().Running(), "speed change must not start a paused clock")
}

func TestViewer_PlayPauseToggle(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.v.Play()
	require.False(t, h.v.IsPlaying(), "cannot play before load")

	h.load()
	h.v.TogglePlayback()
	require.False(t, h.v.IsPlaying())
	require.False(t, h.clock().Running())

	h.v.TogglePlayback()
	require.True(t, h.v.IsPlaying())
	require.True(t, h.clock().Running())
}

func TestViewer_StepWrapsAtBothEnds(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()
	h.v.Pause()

	require.NoError(t, h.v.PrevFrame())
	require.Equal(t, 49, h.v.CurrentFrame())
	h.settle(49)

	require.NoError(t, h.v.NextFrame())
	require.Equal(t, 0, h.v.CurrentFrame())
	h.settle(0)
	require.False(t, h.v.IsPlaying())
}

func TestViewer_StepResumesPlayback(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(50))
	h.load()

	require.NoError(t, h.v.NextFrame())
	require.True(t, h.v.IsPlaying())
	require.True(t, h.clock().Running())
	require.Equal(t, 1, h.v.CurrentFrame())
}

func TestViewer_LoaderErrorReportsAndPauses(t *testing.T) {
	src := mocks.NewPatternSource(5)
	src.FailAt = 1
	h := newHarness(t, eventloop.New(), src)
	h.load()

	require.Eventually(t, func() bool {
		h.loop.RunPending()
		return len(h.notifier.Messages()) == 1
	}, waitFor, time.Millisecond)

	require.Contains(t, h.notifier.Messages()[0], "decode failed")
	require.False(t, h.v.IsPlaying())
	require.False(t, h.clock().Running())
}

func TestViewer_OpenErrorReports(t *testing.T) {
	src := mocks.NewPatternSource(5)
	src.FailOpen = true
	h := newHarness(t, eventloop.New(), src)
	require.NoError(t, h.v.Load("missing.mp4"))

	require.Eventually(t, func() bool {
		h.loop.RunPending()
		return len(h.notifier.Messages()) == 1
	}, waitFor, time.Millisecond)
	require.True(t, strings.HasPrefix(h.notifier.Messages()[0], "loader: open failed"))
	require.False(t, h.v.Snapshot().Loaded)
}

func TestViewer_SubscribeAndPresent(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.load()

	var seen []int
	cancel := h.v.Subscribe(func(f *frame.RGB, index int) {
		seen = append(seen, index)
	})
	h.tick()
	h.tick()
	cancel()
	h.tick()
	require.Equal(t, []int{0, 1}, seen)

	before := h.v.Snapshot()
	h.v.Present(frame.NewRGB(4, 2))
	last, ok := h.display.Last()
	require.True(t, ok)
	require.True(t, last.Info.Composited)
	require.Equal(t, before.CurrentFrame, last.Info.Index)
	require.Equal(t, before, h.v.Snapshot(), "Present must not change state")
}

func TestViewer_CloseIsTerminalAndIdempotent(t *testing.T) {
	src := mocks.NewPatternSource(5)
	h := newHarness(t, eventloop.New(), src)
	h.load()

	hooks := 0
	h.v.OnClose(func(*Viewer) { hooks++ })
	h.v.Subscribe(func(*frame.RGB, int) { t.Error("subscriber called after close") })

	h.v.Close()
	h.v.Close()

	require.Equal(t, 1, hooks)
	require.False(t, h.v.Alive())
	require.False(t, h.v.IsPlaying())
	require.False(t, h.clock().Running())
	require.True(t, src.Closed())

	shown := len(h.display.Shown())
	h.v.Tick()
	h.v.Present(frame.NewRGB(1, 1))
	h.loop.RunPending()
	require.Len(t, h.display.Shown(), shown)
	require.ErrorIs(t, h.v.Load("again.tif"), ErrClosed)
}

func TestViewer_LoadReplacesMedium(t *testing.T) {
	h := newHarness(t, eventloop.New(), mocks.NewPatternSource(5))
	h.load()
	h.tick()
	h.tick()

	h.load()
	require.Equal(t, 0, h.v.CurrentFrame())
	h.display.Reset()
	h.tick()
	require.Equal(t, []int{0}, h.display.Indices())
}

func TestViewer_MasterDrivesFollower(t *testing.T) {
	loop := eventloop.New()
	master := newHarness(t, loop, mocks.NewPatternSource(50))
	follower := newHarness(t, loop, mocks.NewPatternSource(50))

	g := syncgroup.New(nil)
	master.v.SetGroup(g)
	follower.v.SetGroup(g)
	g.Add(master.v)
	g.Add(follower.v)
	require.True(t, master.v.IsMaster())
	require.False(t, follower.v.IsMaster())

	master.load()
	follower.load()

	// rate propagates from the master
	require.NoError(t, master.v.SetRate(15))
	require.Equal(t, 15.0, follower.v.Rate())

	// pause propagates
	master.v.Pause()
	require.False(t, follower.v.IsPlaying())

	// a seek on the paused master is followed once its frame is shown
	require.NoError(t, master.v.SeekTo(30))
	master.settle(30)
	require.Equal(t, 30, follower.v.CurrentFrame())
	follower.settle(30)
	require.False(t, follower.v.IsPlaying(), "follower resumes only while the master plays")

	// play propagates
	master.v.Play()
	require.True(t, follower.v.IsPlaying())

	// ticks on the master pull the follower along
	master.tick()
	require.Equal(t, 31, follower.v.CurrentFrame())
	require.True(t, follower.v.IsPlaying())

	// follower speed is its own
	require.NoError(t, master.v.SetSpeed(2))
	require.Equal(t, 1.0, follower.v.Speed())
}

func TestViewer_FollowerActionsAreNotSuppressed(t *testing.T) {
	loop := eventloop.New()
	master := newHarness(t, loop, mocks.NewPatternSource(10))
	follower := newHarness(t, loop, mocks.NewPatternSource(10))
	g := syncgroup.New(nil)
	for _, h := range []*harness{master, follower} {
		h.v.SetGroup(g)
		g.Add(h.v)
	}
	master.load()
	follower.load()

	follower.v.Pause()
	require.True(t, master.v.IsPlaying(), "a follower's pause does not propagate")
	require.NoError(t, follower.v.SetRate(5))
	require.Equal(t, 5.0, follower.v.Rate())
	require.NotEqual(t, 5.0, master.v.Rate())
}
