// Package verify runs the post-encode integrity checks on a trip output.
package verify

import (
	"context"
	"fmt"

	"github.com/backmassage/tripmaster/internal/ffmpeg"
)

// Stage is one integrity check.
type Stage struct {
	Name string
	Args func(ffmpegBin, ffprobeBin, path string) []string
}

// Stages are run in order, cheapest first.
var Stages = []Stage{
	{
		Name: "container probe",
		Args: func(_, ffprobe, path string) []string {
			return []string{ffprobe, "-hide_banner", "-i", path}
		},
	},
	{
		Name: "audio decode",
		Args: func(ffmpegBin, _, path string) []string {
			return []string{ffmpegBin, "-hide_banner", "-v", "error", "-i", path, "-map", "0:1", "-f", "null", "-"}
		},
	},
	{
		Name: "full decode",
		Args: func(ffmpegBin, _, path string) []string {
			return []string{ffmpegBin, "-hide_banner", "-v", "error", "-i", path, "-f", "null", "-"}
		},
	},
}

// Progress is called before each stage with its 1-based index.
type Progress func(stage, total int, name string)

// Verifier checks produced files.
type Verifier struct {
	Runner     ffmpeg.Runner
	FFmpeg     string
	FFprobe    string
	OnProgress Progress
}

// Result records where verification stopped.
type Result struct {
	Status int    // 0 when every stage passed, else the failing stage's exit code.
	Stage  int    // 1-based index of the failing stage; 0 on success.
	Name   string // Name of the failing stage.
	Stderr string
}

// Passed reports whether all stages succeeded.
func (r Result) Passed() bool { return r.Status == 0 }

// Verify runs the stages against path and stops at the first nonzero exit.
func (v *Verifier) Verify(ctx context.Context, path string) (Result, error) {
	for i, st := range Stages {
		if v.OnProgress != nil {
			v.OnProgress(i+1, len(Stages), st.Name)
		}
		res, err := v.Runner.Run(ctx, st.Args(v.FFmpeg, v.FFprobe, path))
		if err != nil {
			return Result{}, fmt.Errorf("integrity %s of %s: %w", st.Name, path, err)
		}
		if res.ExitCode != 0 {
			return Result{Status: res.ExitCode, Stage: i + 1, Name: st.Name, Stderr: res.Stderr}, nil
		}
	}
	return Result{}, nil
}
