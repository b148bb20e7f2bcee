package ffmpegsource

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/reelsync/pkg/ports"
)

// fakeTools writes shell scripts standing in for ffprobe and ffmpeg.
// The fake ffmpeg emits three 2x1 frames whose bytes equal the frame index
// and appends a line to the returned log on every start.
func fakeTools(t *testing.T) (opts Options, starts func() int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	dir := t.TempDir()
	startLog := filepath.Join(dir, "starts.log")

	probe := `#!/bin/sh
echo '{"streams":[{"codec_name":"vp9","width":2,"height":1,"r_frame_rate":"25/1","avg_frame_rate":"0/0","nb_frames":"3"}]}'
`
	ffmpeg := `#!/bin/sh
echo start >> "` + startLog + `"
printf '\000\000\000\000\000\000\001\001\001\001\001\001\002\002\002\002\002\002'
`
	opts.FFprobePath = filepath.Join(dir, "ffprobe")
	opts.FFmpegPath = filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(opts.FFprobePath, []byte(probe), 0755))
	require.NoError(t, os.WriteFile(opts.FFmpegPath, []byte(ffmpeg), 0755))

	starts = func() int {
		data, err := os.ReadFile(startLog)
		if err != nil {
			return 0
		}
		return strings.Count(string(data), "start")
	}
	return opts, starts
}

func TestSource_SequentialReads(t *testing.T) {
	opts, starts := fakeTools(t)
	src := New(opts)
	defer src.Close()

	info, err := src.Open("clip.mkv")
	require.NoError(t, err)
	require.Equal(t, ports.KindVideo, info.Kind)
	require.Equal(t, 3, info.FrameCount)
	require.InDelta(t, 25.0, info.Rate, 0.001)
	require.Equal(t, "vp9", info.Codec)

	for i := 0; i < 3; i++ {
		f, err := src.Read(i)
		require.NoError(t, err)
		r, g, b := f.Pixel(1, 0)
		require.Equal(t, [3]uint8{uint8(i), uint8(i), uint8(i)}, [3]uint8{r, g, b})
	}
	require.Equal(t, 1, starts())

	_, err = src.Read(3)
	require.ErrorIs(t, err, ports.ErrEndOfSequence)
}

func TestSource_RandomAccessRestarts(t *testing.T) {
	opts, starts := fakeTools(t)
	src := New(opts)
	defer src.Close()

	_, err := src.Open("clip.mkv")
	require.NoError(t, err)

	f, err := src.Read(2)
	require.NoError(t, err)
	r, _, _ := f.Pixel(0, 0)
	require.Equal(t, uint8(2), r)
	require.Equal(t, 1, starts())

	// Reading behind the stream position re-opens the process
	f, err = src.Read(1)
	require.NoError(t, err)
	r, _, _ = f.Pixel(0, 0)
	require.Equal(t, uint8(1), r)
	require.Equal(t, 2, starts())
}

func TestSource_InterruptStopsSkipAhead(t *testing.T) {
	opts, _ := fakeTools(t)
	src := New(opts)
	defer src.Close()

	_, err := src.Open("clip.mkv")
	require.NoError(t, err)

	stop := true
	src.SetInterrupt(func() bool { return stop })
	_, err = src.Read(2)
	require.ErrorIs(t, err, ports.ErrInterrupted)

	stop = false
	f, err := src.Read(2)
	require.NoError(t, err)
	r, _, _ := f.Pixel(0, 0)
	require.Equal(t, uint8(2), r)
}

func TestSource_ReadBeforeOpen(t *testing.T) {
	_, err := New(Options{}).Read(0)
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestFindTool_CustomPathMissing(t *testing.T) {
	_, err := FindTool("ffmpeg", filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}

	_, err = New(Options{FFmpegPath: filepath.Join(t.TempDir(), "nope")}).Open("clip.mp4")
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected Open to fail with ErrFFmpegNotFound, got %v", err)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30000/1001", 29.97},
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tt := range tests {
		got := ParseRate(tt.in)
		if got < tt.want-0.01 || got > tt.want+0.01 {
			t.Errorf("ParseRate(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestStreamInfo_FrameCount(t *testing.T) {
	s := StreamInfo{NbFrames: "120", AvgFrameRate: "30/1"}
	if got := s.FrameCount(); got != 120 {
		t.Errorf("expected nb_frames to win, got %d", got)
	}

	s = StreamInfo{NbFrames: "N/A", Duration: "2.0", AvgFrameRate: "0/0", RFrameRate: "24/1"}
	if got := s.FrameCount(); got != 48 {
		t.Errorf("expected 48 estimated frames, got %d", got)
	}

	if got := (StreamInfo{}).FrameCount(); got != 0 {
		t.Errorf("expected 0 for unknown length, got %d", got)
	}
}

func TestParseProbe(t *testing.T) {
	s, err := ParseProbe([]byte(`{"streams":[{"codec_name":"h264","width":1920,"height":1080}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CodecName != "h264" || s.Width != 1920 || s.Height != 1080 {
		t.Errorf("unexpected stream %+v", s)
	}

	if _, err := ParseProbe([]byte(`{"streams":[]}`)); !errors.Is(err, ErrNoVideoStream) {
		t.Errorf("expected ErrNoVideoStream, got %v", err)
	}
	if _, err := ParseProbe([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}
}
