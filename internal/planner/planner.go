package planner

import (
	"fmt"
	"time"

	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/trip"
)

// CreationTimeLayout formats the creation_time tag from the first clip's
// local modification time.
const CreationTimeLayout = "2006-01-02 15:04:05"

// Paths carries the filesystem facts BuildPlan needs but does not compute.
type Paths struct {
	Output       string
	ListFile     string    // Used by Basic plans only.
	CreationTime time.Time // Modification time of the first clip.
}

// IsSimple reports whether every resolution is identical and no denoise
// filter is configured.
func IsSimple(resolutions []string, p config.Profile) bool {
	if p.Denoise != "" {
		return false
	}
	for _, r := range resolutions {
		if r != resolutions[0] {
			return false
		}
	}
	return true
}

// BuildPlan produces the EncodePlan for t. resolutions[i] is the probed
// resolution of t.Clips[i].
//
// Flow:
//  1. Validate the codec
//  2. Pick Basic or Complex via IsSimple
//  3. Reject stream copy for anything the concat demuxer cannot join
//  4. Attach filters, codec settings, metadata and the overwrite decision
func BuildPlan(p config.Profile, t trip.Trip, resolutions []string, paths Paths) (*EncodePlan, error) {
	if len(t.Clips) == 0 {
		return nil, &ConfigError{Trip: paths.Output, Err: ErrNoClips}
	}
	if len(resolutions) != len(t.Clips) {
		return nil, fmt.Errorf("planner: %d resolutions for %d clips", len(resolutions), len(t.Clips))
	}

	// --- 1. Codec ---
	switch p.Codec {
	case config.CodecCopy, config.CodecLibx264, config.CodecLibx265:
	default:
		return nil, &ConfigError{Trip: paths.Output, Err: fmt.Errorf("%w: %q", ErrInvalidCodec, p.Codec)}
	}

	plan := &EncodePlan{
		Inputs:     make([]string, len(t.Clips)),
		OutputPath: paths.Output,
		VideoCodec: p.Codec,
		Metadata:   metadataTags(p, paths.CreationTime),
		Overwrite:  decideOverwrite(p.Overwrite),
	}
	for i, c := range t.Clips {
		plan.Inputs[i] = c.Path
	}
	if plan.Encodes() {
		plan.Preset = p.Preset
		plan.CRF = p.CRF
	}

	// --- 2. Shape ---
	filter := ""
	if plan.Encodes() {
		filter = VideoFilter(p)
	}
	if IsSimple(resolutions, p) {
		plan.Kind = KindBasic
		plan.ListFile = paths.ListFile
		plan.VideoFilter = filter
		return plan, nil
	}

	// --- 3. Stream copy guard ---
	if !plan.Encodes() {
		err := ErrCopyFilter
		if !IsSimple(resolutions, config.Profile{}) {
			err = ErrCopyHeterogeneous
		}
		return nil, &ConfigError{Trip: paths.Output, Err: err}
	}

	// --- 4. Complex graph ---
	plan.Kind = KindComplex
	plan.FilterGraph = FilterGraph(len(t.Clips), filter)
	plan.AudioCodec = p.AudioCodec
	plan.AudioBitrate = p.AudioBitrate
	return plan, nil
}

func metadataTags(p config.Profile, created time.Time) []Tag {
	return []Tag{
		{"creation_time", created.Local().Format(CreationTimeLayout)},
		{"artist", p.Author},
		{"author", p.Author},
		{"album_author", p.Author},
		{"comment", p.Comment},
		{"copyright", p.Copyright},
	}
}

func decideOverwrite(policy config.OverwritePolicy) OverwriteDecision {
	switch policy {
	case config.OverwriteAlways:
		return OverwriteYes
	case config.OverwriteNever:
		return OverwriteNo
	}
	return OverwriteUndecided
}
