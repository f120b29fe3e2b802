package planner

import (
	"errors"
	"fmt"

	"github.com/backmassage/tripmaster/internal/config"
)

// Kind is the plan shape.
type Kind int

const (
	KindBasic   Kind = iota // Concat demuxer over a list file.
	KindComplex             // One input per clip joined by a concat filter.
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindComplex:
		return "complex"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// OverwriteDecision is the overwrite flag resolved at plan time.
type OverwriteDecision int

const (
	OverwriteUndecided OverwriteDecision = iota // Resolved by the invoker.
	OverwriteYes                                // -y
	OverwriteNo                                 // -n
)

// Tag is one -metadata key=value pair.
type Tag struct {
	Key   string
	Value string
}

// EncodePlan holds every decision for one trip. It is built by BuildPlan and
// consumed once by the ffmpeg package; nothing mutates it afterwards.
type EncodePlan struct {
	Kind       Kind
	Inputs     []string // Clip paths in capture order.
	ListFile   string   // Concat list path (Basic only).
	OutputPath string

	// Video.
	VideoFilter string // -vf chain (Basic only, may be empty).
	FilterGraph string // -filter_complex value (Complex only).
	VideoCodec  config.Codec
	Preset      string // Empty for copy.
	CRF         int    // Ignored for copy.

	// Audio. Basic plans always copy audio.
	AudioCodec   string
	AudioBitrate string

	Metadata  []Tag
	Overwrite OverwriteDecision
}

// Encodes reports whether the plan re-encodes video.
func (p *EncodePlan) Encodes() bool { return p.VideoCodec != config.CodecCopy }

// Sentinel planning errors, always wrapped in a *ConfigError.
var (
	ErrCopyHeterogeneous = errors.New("stream copy cannot join clips of different resolutions")
	ErrCopyFilter        = errors.New("stream copy cannot apply a video filter")
	ErrInvalidCodec      = errors.New("invalid video codec")
	ErrNoClips           = errors.New("trip has no clips")
)

// ConfigError is a planning failure caused by the settings rather than the
// media. It is fatal to the trip, never to the run.
type ConfigError struct {
	Trip string // Output path of the affected trip.
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Trip == "" {
		return "configuration error: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Trip, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
