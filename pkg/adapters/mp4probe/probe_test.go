package mp4probe

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

func newVideoInit(timescale uint32, entry string, width, height uint16) *mp4.InitSegment {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox(entry, width, height, nil))
	trak.Tkhd.Width = mp4.Fixed32(uint32(width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(height) << 16)
	return init
}

func TestProbe_Progressive(t *testing.T) {
	init := newVideoInit(24000, "avc1", 640, 360)
	stts := init.Moov.Trak.Mdia.Minf.Stbl.Stts
	stts.SampleCount = []uint32{40, 8}
	stts.SampleTimeDelta = []uint32{1000, 1000}

	info, err := probeFile(&mp4.File{Moov: init.Moov})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if info.Codec != CodecH264 {
		t.Errorf("expected h264, got %s", info.Codec)
	}
	if info.Width != 640 || info.Height != 360 {
		t.Errorf("expected 640x360, got %dx%d", info.Width, info.Height)
	}
	if info.FrameCount != 48 {
		t.Errorf("expected 48 frames, got %d", info.FrameCount)
	}
	if info.Duration != 2*time.Second {
		t.Errorf("expected 2s, got %v", info.Duration)
	}
	if rate := info.Rate(); rate < 23.99 || rate > 24.01 {
		t.Errorf("expected 24 fps, got %v", rate)
	}
}

func TestProbe_Fragmented(t *testing.T) {
	const timescale = 30000
	init := newVideoInit(timescale, "hvc1", 320, 240)

	seg := mp4.NewMediaSegment()
	for n := 0; n < 2; n++ {
		frag, err := mp4.CreateFragment(uint32(n+1), init.Moov.Trak.Tkhd.TrackID)
		if err != nil {
			t.Fatalf("create fragment: %v", err)
		}
		for i := 0; i < 15; i++ {
			frag.AddFullSample(mp4.FullSample{
				Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: 1, Dur: 1000},
				DecodeTime: uint64((n*15 + i) * 1000),
				Data:       []byte{0},
			})
		}
		seg.AddFragment(frag)
	}

	info, err := probeFile(&mp4.File{Init: init, Segments: []*mp4.MediaSegment{seg}})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if info.Codec != CodecHEVC {
		t.Errorf("expected hevc, got %s", info.Codec)
	}
	if info.FrameCount != 30 {
		t.Errorf("expected 30 frames, got %d", info.FrameCount)
	}
	if info.Duration != time.Second {
		t.Errorf("expected 1s, got %v", info.Duration)
	}
}

func TestProbe_NoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "und")

	_, err := probeFile(&mp4.File{Moov: init.Moov})
	if !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}

	if _, err := probeFile(&mp4.File{}); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack for empty file, got %v", err)
	}
}

func TestProbe_InvalidData(t *testing.T) {
	if _, err := Probe(bytes.NewReader([]byte("not an mp4 file"))); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestCodecFor(t *testing.T) {
	tests := map[string]Codec{
		"avc1": CodecH264,
		"avc3": CodecH264,
		"hev1": CodecHEVC,
		"av01": CodecAV1,
		"vp09": CodecVP9,
		"mp4v": CodecMPEG4,
		"mp4a": CodecUnknown,
	}
	for box, want := range tests {
		if got := codecFor(box); got != want {
			t.Errorf("codecFor(%q): expected %s, got %s", box, want, got)
		}
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"clip.mp4": true,
		"clip.MOV": true,
		"clip.m4v": true,
		"clip.mkv": false,
		"clip.tif": false,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q): expected %v, got %v", path, want, got)
		}
	}
}
