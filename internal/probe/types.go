package probe

import (
	"context"
	"errors"
	"strconv"
)

// ErrProbeFailed marks every probe failure: a nonzero ffprobe exit,
// unparsable output, or a file without a usable video stream.
var ErrProbeFailed = errors.New("probe failed")

// Prober inspects a single media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*Result, error)
}

// VideoStream holds the parsed properties of the first video stream.
type VideoStream struct {
	Codec  string
	Width  int
	Height int
}

// Result is the parsed output of a single ffprobe JSON call.
type Result struct {
	Duration float64 // Container duration in seconds; 0 if unknown.
	Video    VideoStream
	HasAudio bool
}

// Resolution returns "WxH" for the video stream.
func (r *Result) Resolution() string {
	return strconv.Itoa(r.Video.Width) + "x" + strconv.Itoa(r.Video.Height)
}
