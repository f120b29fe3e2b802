package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe probes files with the ffprobe binary at Bin.
type FFprobe struct {
	Bin string
}

// New returns an FFprobe using bin, or "ffprobe" from PATH when bin is empty.
func New(bin string) *FFprobe {
	if bin == "" {
		bin = "ffprobe"
	}
	return &FFprobe{Bin: bin}
}

// Probe runs ffprobe once against path, listing every stream. The first
// video stream supplies geometry and codec; any audio stream sets HasAudio.
func (p *FFprobe) Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error",
		"-show_entries", "stream=codec_type,codec_name,width,height:format=duration",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: ffprobe %q: %v: %s", ErrProbeFailed, path, err, msg)
		}
		return nil, fmt.Errorf("%w: ffprobe %q: %v", ErrProbeFailed, path, err)
	}

	r, err := ParseJSON(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe JSON: %v", ErrProbeFailed, err)
	}
	return buildResult(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func buildResult(raw *ffprobeOutput) (*Result, error) {
	r := &Result{Duration: parseFloat(raw.Format.Duration)}
	found := false
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if !found {
				r.Video = VideoStream{Codec: s.CodecName, Width: s.Width, Height: s.Height}
				found = true
			}
		case "audio":
			r.HasAudio = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no video stream", ErrProbeFailed)
	}
	if r.Video.Width <= 0 || r.Video.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid video geometry %dx%d", ErrProbeFailed, r.Video.Width, r.Video.Height)
	}
	return r, nil
}

// ffprobe returns numbers as strings.
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
