package ffmpegsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// StreamInfo is the subset of ffprobe's stream report the source needs.
type StreamInfo struct {
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NbFrames     string `json:"nb_frames"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

type probeReport struct {
	Streams []StreamInfo `json:"streams"`
}

// Rate returns the average frame rate, falling back to the real base rate.
func (s StreamInfo) Rate() float64 {
	if r := ParseRate(s.AvgFrameRate); r > 0 {
		return r
	}
	return ParseRate(s.RFrameRate)
}

// FrameCount returns nb_frames, or an estimate from duration and rate.
func (s StreamInfo) FrameCount() int {
	if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
		return n
	}
	d, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return int(math.Round(d * s.Rate()))
}

// ParseRate parses ffprobe rationals such as "30000/1001" or "25".
func ParseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// ParseProbe decodes ffprobe JSON output and returns the first stream.
func ParseProbe(data []byte) (StreamInfo, error) {
	var report probeReport
	if err := json.Unmarshal(data, &report); err != nil {
		return StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(report.Streams) == 0 {
		return StreamInfo{}, ErrNoVideoStream
	}
	return report.Streams[0], nil
}

// Probe runs ffprobe against path and reports its first video stream.
func Probe(ctx context.Context, ffprobePath, path string) (StreamInfo, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,nb_frames,r_frame_rate,avg_frame_rate,duration",
		"-of", "json",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}
	return ParseProbe(stdout.Bytes())
}
