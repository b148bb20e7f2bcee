// Package mp4probe reads stream facts (codec, geometry, frame count, rate)
// from MP4/MOV containers without decoding any samples.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecMPEG4   Codec = "mpeg4"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track")

// Info describes the first video track of a container.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	FrameCount int
	Timescale  uint32
	Duration   time.Duration
}

// Rate returns the nominal frame rate, or 0 when it cannot be derived.
func (i Info) Rate() float64 {
	if i.FrameCount == 0 || i.Duration <= 0 {
		return 0
	}
	return float64(i.FrameCount) / i.Duration.Seconds()
}

// Supported reports whether the path has an extension this package can parse.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// ProbeFile reads Info from an MP4 file on disk.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe reads Info from an MP4 stream.
func Probe(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probeFile(mp4File)
}

func probeFile(f *mp4.File) (Info, error) {
	moov := f.Moov
	if f.Init != nil && f.Init.Moov != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := videoTrack(moov)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	var count int
	var ticks uint64
	if len(f.Segments) > 0 {
		// Fragmented files carry samples in moof boxes
		count, ticks = fragmentTotals(f, trak.Tkhd.TrackID, findTrex(moov, trak.Tkhd.TrackID))
	} else {
		count, ticks = sttsTotals(trak.Mdia.Minf.Stbl.Stts)
	}
	info.FrameCount = count
	info.Duration = ticksToDuration(ticks, info.Timescale)
	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		if trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

func trackInfo(trak *mp4.TrakBox) Info {
	info := Info{Codec: CodecUnknown, Timescale: 1000}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		info.Timescale = trak.Mdia.Mdhd.Timescale
	}
	if trak.Tkhd != nil {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}

	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil {
		return info
	}
	for _, child := range stsd.Children {
		codec := codecFor(child.Type())
		if codec == CodecUnknown {
			continue
		}
		info.Codec = codec
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		break
	}
	return info
}

func codecFor(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	case "mp4v":
		return CodecMPEG4
	}
	return CodecUnknown
}

func sttsTotals(stts *mp4.SttsBox) (count int, ticks uint64) {
	if stts == nil {
		return 0, 0
	}
	for i, n := range stts.SampleCount {
		count += int(n)
		if i < len(stts.SampleTimeDelta) {
			ticks += uint64(n) * uint64(stts.SampleTimeDelta[i])
		}
	}
	return count, ticks
}

func findTrex(moov *mp4.MoovBox, trackID uint32) *mp4.TrexBox {
	if moov.Mvex == nil {
		return nil
	}
	for _, t := range moov.Mvex.Trexs {
		if t.TrackID == trackID {
			return t
		}
	}
	return nil
}

func fragmentTotals(f *mp4.File, trackID uint32, trex *mp4.TrexBox) (count int, ticks uint64) {
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				fallback := uint32(0)
				if traf.Tfhd.HasDefaultSampleDuration() {
					fallback = traf.Tfhd.DefaultSampleDuration
				} else if trex != nil {
					fallback = trex.DefaultSampleDuration
				}
				for _, trun := range traf.Truns {
					for _, s := range trun.Samples {
						dur := s.Dur
						if dur == 0 {
							dur = fallback
						}
						count++
						ticks += uint64(dur)
					}
				}
			}
		}
	}
	return count, ticks
}

func ticksToDuration(ticks uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	return time.Duration(ticks * uint64(time.Second) / uint64(timescale))
}
