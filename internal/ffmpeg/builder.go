package ffmpeg

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/tripmaster/internal/planner"
)

// Build constructs the complete argument slice for plan, program name first.
// ow overrides plan.Overwrite when the invoker resolved an undecided plan.
//
//	Basic:   ffmpeg -hide_banner [-y|-n] -f concat -safe 0 -i <list> <metadata>
//	         [-vf <chain>] -c:v <codec> [-preset P -crf N] -c:a copy -movflags +faststart <out>
//	Complex: ffmpeg -hide_banner [-y|-n] -i <clip>... -filter_complex <graph> -map [v] -map [a]
//	         <metadata> -c:v <codec> -preset P -crf N -c:a <acodec> -b:a <rate> -movflags +faststart <out>
func Build(bin string, plan *planner.EncodePlan, ow planner.OverwriteDecision) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner")
	switch ow {
	case planner.OverwriteYes:
		args = append(args, "-y")
	case planner.OverwriteNo:
		args = append(args, "-n")
	}

	// --- Inputs and graph ---
	switch plan.Kind {
	case planner.KindBasic:
		args = append(args, "-f", "concat", "-safe", "0", "-i", plan.ListFile)
	case planner.KindComplex:
		for _, in := range plan.Inputs {
			args = append(args, "-i", in)
		}
		args = append(args,
			"-filter_complex", plan.FilterGraph,
			"-map", "[v]", "-map", "[a]",
		)
	}

	// --- Metadata ---
	for _, tag := range plan.Metadata {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}

	// --- Video ---
	if plan.Kind == planner.KindBasic && plan.VideoFilter != "" {
		args = append(args, "-vf", plan.VideoFilter)
	}
	args = append(args, "-c:v", string(plan.VideoCodec))
	if plan.Encodes() {
		args = append(args, "-preset", plan.Preset, "-crf", strconv.Itoa(plan.CRF))
	}

	// --- Audio ---
	if plan.Kind == planner.KindComplex {
		args = append(args, "-c:a", plan.AudioCodec, "-b:a", plan.AudioBitrate)
	} else {
		args = append(args, "-c:a", "copy")
	}

	// --- Container and output ---
	args = append(args, "-movflags", "+faststart", plan.OutputPath)
	return args
}

// WriteConcatList writes a concat demuxer list for clips into a temporary
// file in dir (the system temp dir when empty). Paths are made absolute and
// single quotes are escaped. The returned cleanup removes the file.
func WriteConcatList(dir string, clips []string) (string, func(), error) {
	f, err := os.CreateTemp(dir, "tripmaster_concat_*.txt")
	if err != nil {
		return "", func() {}, fmt.Errorf("create concat list: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	fail := func(err error) (string, func(), error) {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write concat list: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fail(err)
		}
		if _, err := fmt.Fprintf(w, "file '%s'\n", EscapeConcatPath(abs)); err != nil {
			return fail(err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close concat list: %w", err)
	}
	return f.Name(), cleanup, nil
}

// EscapeConcatPath escapes p for a single-quoted concat list entry.
func EscapeConcatPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}
