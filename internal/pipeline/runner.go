package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/display"
	"github.com/backmassage/tripmaster/internal/ffmpeg"
	"github.com/backmassage/tripmaster/internal/filetimes"
	"github.com/backmassage/tripmaster/internal/ledger"
	"github.com/backmassage/tripmaster/internal/logging"
	"github.com/backmassage/tripmaster/internal/metrics"
	"github.com/backmassage/tripmaster/internal/naming"
	"github.com/backmassage/tripmaster/internal/photos"
	"github.com/backmassage/tripmaster/internal/planner"
	"github.com/backmassage/tripmaster/internal/probe"
	"github.com/backmassage/tripmaster/internal/trip"
	"github.com/backmassage/tripmaster/internal/verify"
)

// Ledger receives one record per finished trip.
type Ledger interface {
	Put(ledger.Record) error
}

// Deps are the collaborators of a run. Runner and Prober are required; the
// rest may be nil.
type Deps struct {
	Runner  ffmpeg.Runner
	Prober  probe.Prober
	Decide  ffmpeg.Decider // Overwrite prompt; nil declines.
	Setter  filetimes.CreationTimeSetter
	Ledger  Ledger
	Metrics *metrics.Recorder
	RunID   uuid.UUID
	ListDir string // Directory for concat lists; the system temp dir when empty.
}

// ErrNoClips is returned when the card holds no clips at all.
var ErrNoClips = errors.New("no clips found on card")

type runner struct {
	cfg     *config.Config
	log     *logging.Logger
	deps    Deps
	profile config.Profile
	invoker *ffmpeg.Invoker
	verify  *verify.Verifier
	stats   *RunStats
}

// Run is the top-level entry point. It discovers the card, segments every
// batch into trips, processes each trip sequentially, copies photos and
// returns aggregate stats. The error is non-nil only when the run could not
// start or was interrupted.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) (*RunStats, error) {
	stats := &RunStats{}

	card, err := DiscoverCard(cfg.CardRoot)
	if err != nil {
		return stats, err
	}
	for _, dir := range card.Missing {
		log.Warn("%s/ not found on card, skipping", dir)
	}

	r := &runner{
		cfg:     cfg,
		log:     log,
		deps:    deps,
		profile: cfg.Profile(),
		invoker: &ffmpeg.Invoker{
			Runner:  deps.Runner,
			Bin:     cfg.FFmpegPath,
			Decide:  deps.Decide,
			Timeout: cfg.TranscodeTimeout.Duration,
		},
		verify: &verify.Verifier{
			Runner:  deps.Runner,
			FFmpeg:  cfg.FFmpegPath,
			FFprobe: cfg.FFprobePath,
			OnProgress: func(stage, total int, name string) {
				log.Info("Test %d of %d: %s", stage, total, name)
			},
		},
		stats: stats,
	}

	trips := r.segment(card.Batches(cfg.CombineMovieAndEMR))
	stats.Trips = len(trips)
	if stats.Trips == 0 && len(card.Photos) == 0 {
		return stats, ErrNoClips
	}
	r.logHeader()

	var runErr error
	for i, t := range trips {
		if err := ctx.Err(); err != nil {
			log.Warn("Interrupted")
			runErr = err
			break
		}
		stats.Current = i + 1
		j := r.processTrip(ctx, t)
		stats.record(j)
		r.persist(j)
		fmt.Println()
	}

	if runErr == nil && !cfg.SkipPhotos && len(card.Photos) > 0 {
		runErr = r.copyPhotos(ctx, card.Photos)
	}

	r.logSummary()
	deps.Metrics.Finish(time.Now())
	return stats, runErr
}

// segment parses clip names and splits every batch into trips, in batch
// order.
func (r *runner) segment(batches []Batch) []trip.Trip {
	var all []trip.Trip
	for _, b := range batches {
		clips := make([]naming.Clip, 0, len(b.Clips))
		for _, p := range b.Clips {
			c, err := naming.ParseClip(p)
			if err != nil {
				r.log.Warn("Ignoring %s: %v", filepath.Base(p), err)
				r.stats.Ignored++
				continue
			}
			clips = append(clips, c)
		}
		trips := trip.Plan(clips, r.cfg.MaxDiff, r.cfg.NominalClipSeconds)
		r.log.Info("%s: %d clips in %d trips", b.Name, len(clips), len(trips))
		r.stats.Clips += len(clips)
		all = append(all, trips...)
	}
	return all
}

// processTrip handles one trip: probe → plan → invoke → verify → preserve.
func (r *runner) processTrip(ctx context.Context, t trip.Trip) JobResult {
	first := t.First()
	last := t.Clips[len(t.Clips)-1]
	out := naming.TripOutputPath(r.cfg.OutputDir, t.DateKey, first.CaptureToken, "mp4")
	job := JobResult{OutputPath: out, Inputs: make([]string, len(t.Clips))}
	for i, c := range t.Clips {
		job.Inputs[i] = c.Path
	}

	r.log.Info("[%d/%d] %s %s-%s, %d clips", r.stats.Current, r.stats.Trips, t.DateKey,
		display.FormatClock(first.CaptureSeconds), display.FormatClock(last.CaptureSeconds), len(t.Clips))
	r.log.Info("  -> %s", filepath.Base(out))

	// --- Probe ---
	resolutions, err := r.probeTrip(ctx, t)
	if err != nil {
		r.log.Error("%v", err)
		job.Err = err
		r.deps.Metrics.Trip(metrics.ResultProbe, len(t.Clips))
		return job
	}

	// --- Plan ---
	paths := planner.Paths{Output: out}
	if fi, err := os.Stat(first.Path); err == nil {
		paths.CreationTime = fi.ModTime()
	}
	simple := planner.IsSimple(resolutions, r.profile)
	if simple {
		if r.cfg.DryRun {
			paths.ListFile = filepath.Join(os.TempDir(), "tripmaster_concat.txt")
		} else {
			list, cleanup, err := ffmpeg.WriteConcatList(r.deps.ListDir, job.Inputs)
			if err != nil {
				r.log.Error("%v", err)
				job.Err = err
				r.deps.Metrics.Trip(metrics.ResultConfig, len(t.Clips))
				return job
			}
			defer cleanup()
			paths.ListFile = list
		}
	}
	plan, err := planner.BuildPlan(r.profile, t, resolutions, paths)
	if err != nil {
		if errors.Is(err, planner.ErrCopyHeterogeneous) {
			r.log.Error("Clip resolutions differ (%s); stream copy cannot join them, set a video codec", strings.Join(distinct(resolutions), ", "))
		} else {
			r.log.Error("%v", err)
		}
		job.Err = err
		r.deps.Metrics.Trip(metrics.ResultConfig, len(t.Clips))
		return job
	}
	r.log.Debug("Plan: %s, codec %s", plan.Kind, plan.VideoCodec)

	// --- Dry-run ---
	if r.cfg.DryRun {
		r.log.Render("%s", strings.Join(ffmpeg.Build(r.cfg.FFmpegPath, plan, plan.Overwrite), " "))
		r.log.Success("[DRY] Would concatenate %d clips", len(t.Clips))
		job.DryRun = true
		r.deps.Metrics.Trip(metrics.ResultDryRun, len(t.Clips))
		return job
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		r.log.Error("Cannot create output directory: %v", err)
		job.Err = err
		r.deps.Metrics.Trip(metrics.ResultConfig, len(t.Clips))
		return job
	}

	// --- Invoke ---
	r.log.Render("%s", strings.Join(ffmpeg.Build(r.cfg.FFmpegPath, plan, plan.Overwrite), " "))
	start := time.Now()
	res, err := r.invoker.Invoke(ctx, plan)
	elapsed := time.Since(start)
	r.deps.Metrics.Encode(plan.Kind.String(), elapsed)
	if err != nil {
		r.log.Error("ffmpeg: %v", err)
		job.Err = err
		r.deps.Metrics.Trip(metrics.ResultEncodeError, len(t.Clips))
		r.preserveTimes(first.Path, out)
		return job
	}
	job.ExitCode = res.ExitCode
	if res.Skipped() {
		r.log.Warn("Skip (exists): %s", filepath.Base(out))
		job.Skipped = true
		r.deps.Metrics.Trip(metrics.ResultSkipped, len(t.Clips))
		return job
	}
	if res.ExitCode != 0 {
		if reason := ffmpeg.Classify(res.Stderr); reason != ffmpeg.ReasonUnknown {
			r.log.Error("ffmpeg exited %d: %s", res.ExitCode, reason)
		} else {
			r.log.Error("ffmpeg exited %d", res.ExitCode)
			logStderr(r.log, res.Stderr)
		}
		r.deps.Metrics.Trip(metrics.ResultEncodeError, len(t.Clips))
		r.preserveTimes(first.Path, out)
		return job
	}

	// --- Verify ---
	vr, err := r.verify.Verify(ctx, out)
	switch {
	case err != nil:
		r.log.Error("%v", err)
		job.Err = err
	case !vr.Passed():
		r.log.Error("Integrity test %d (%s) failed with status %d", vr.Stage, vr.Name, vr.Status)
		logStderr(r.log, vr.Stderr)
	default:
		job.IntegrityPassed = true
	}
	r.preserveTimes(first.Path, out)

	if !job.IntegrityPassed {
		r.deps.Metrics.Trip(metrics.ResultIntegrity, len(t.Clips))
		return job
	}
	var size int64
	if fi, err := os.Stat(out); err == nil {
		size = fi.Size()
	}
	r.stats.OutputBytes += size
	r.deps.Metrics.Trip(metrics.ResultSuccess, len(t.Clips))
	r.log.Success("Trip written in %s (%s)", display.FormatDuration(elapsed), display.FormatBytes(size))
	return job
}

// probeTrip returns one resolution per clip, in clip order.
func (r *runner) probeTrip(ctx context.Context, t trip.Trip) ([]string, error) {
	resolutions := make([]string, len(t.Clips))
	for i, c := range t.Clips {
		pr, err := r.deps.Prober.Probe(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		resolutions[i] = pr.Resolution()
		r.log.Debug("  %s: %s %s, %.1fs", c.Name(), pr.Video.Codec, resolutions[i], pr.Duration)
		logClipOutlier(r.log, r.cfg, c, pr, i == len(t.Clips)-1)
	}
	return resolutions, nil
}

// logClipOutlier flags clips whose duration is far from nominal, and clips
// without audio. The last clip of a trip is usually cut short and is not
// flagged for duration.
func logClipOutlier(log *logging.Logger, cfg *config.Config, c naming.Clip, pr *probe.Result, last bool) {
	if !pr.HasAudio {
		log.Outlier("%s has no audio stream", c.Name())
	}
	if last || pr.Duration <= 0 {
		return
	}
	if math.Abs(pr.Duration-cfg.NominalClipSeconds) > cfg.MaxDiff {
		log.Outlier("%s runs %.1fs (nominal %.0fs)", c.Name(), pr.Duration, cfg.NominalClipSeconds)
	}
}

// preserveTimes stamps dst with src's times when dst exists.
func (r *runner) preserveTimes(src, dst string) {
	if _, err := os.Stat(dst); err != nil {
		return
	}
	if err := filetimes.Preserve(src, dst, r.deps.Setter); err != nil {
		r.log.Warn("Could not preserve timestamps on %s: %v", filepath.Base(dst), err)
	}
}

func (r *runner) persist(j JobResult) {
	if r.deps.Ledger == nil || j.DryRun {
		return
	}
	rec := ledger.Record{
		RunID:           r.deps.RunID,
		OutputPath:      j.OutputPath,
		Inputs:          j.Inputs,
		ExitCode:        j.ExitCode,
		IntegrityPassed: j.IntegrityPassed,
		Skipped:         j.Skipped,
		Finished:        time.Now(),
	}
	if j.Err != nil {
		rec.Error = j.Err.Error()
	}
	if err := r.deps.Ledger.Put(rec); err != nil {
		r.log.Warn("Ledger: %v", err)
	}
}

func (r *runner) copyPhotos(ctx context.Context, srcs []string) error {
	r.log.Info("Copying %d photos", len(srcs))
	if !r.cfg.DryRun {
		if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
			r.log.Error("Cannot create output directory: %v", err)
			r.stats.PhotoFailed = len(srcs)
			return nil
		}
	}
	rep, err := photos.Copy(ctx, srcs, r.cfg.OutputDir, photos.Options{
		Optimize:  r.cfg.OptimizePhotos,
		Jpegoptim: r.cfg.JpegoptimPath,
		Runner:    r.deps.Runner,
		Setter:    r.deps.Setter,
		DryRun:    r.cfg.DryRun,
	})
	for src, ferr := range rep.Failed {
		r.log.Error("Photo %s: %v", filepath.Base(src), ferr)
	}
	r.stats.Photos = len(rep.Copied)
	r.stats.PhotoFailed = len(rep.Failed)
	r.deps.Metrics.Photos(len(rep.Copied), len(rep.Failed))
	if r.cfg.DryRun {
		r.log.Success("[DRY] Would copy %d photos", len(rep.Copied))
	} else if len(rep.Copied) > 0 {
		r.log.Success("Copied %d photos (%s)", len(rep.Copied), display.FormatBytes(rep.Bytes))
	}
	return err
}

func logStderr(log *logging.Logger, stderr string) {
	if stderr == "" {
		return
	}
	log.Error("Last ffmpeg output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

func distinct(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// --- Logging helpers ---

func (r *runner) logHeader() {
	cfg := r.cfg
	r.log.Info("Found %d trips from %d clips", r.stats.Trips, r.stats.Clips)
	if cfg.Video.Codec == config.CodecCopy {
		r.log.Info("Video: stream copy")
	} else {
		r.log.Info("Video: %s, preset %s, CRF %d", cfg.Video.Codec, cfg.Video.Preset, cfg.Video.CRF)
		if cfg.Video.Resolution != "" {
			r.log.Info("Scale: %s (%s)", cfg.Video.Resolution, cfg.Video.Scaler)
		}
		if cfg.Video.Denoise != "" {
			r.log.Info("Denoise: %s", cfg.Video.Denoise)
		}
	}
	r.log.Info("Trip gap: more than %gs beyond the %gs clip length", cfg.MaxDiff, cfg.NominalClipSeconds)
	if cfg.DryRun {
		r.log.Info("Dry run: nothing will be written")
	}
	fmt.Println()
}

func (r *runner) logSummary() {
	s := r.stats
	r.log.Info("=== Summary ===")
	if r.cfg.DryRun {
		r.log.Info("Planned: %d trips", s.Planned)
	} else {
		r.log.Info("Written: %d trips (%s)", s.Written, display.FormatBytes(s.OutputBytes))
	}
	if s.Skipped > 0 {
		r.log.Info("Skipped: %d", s.Skipped)
	}
	if s.Ignored > 0 {
		r.log.Warn("Ignored clips: %d", s.Ignored)
	}
	if s.Photos > 0 || s.PhotoFailed > 0 {
		r.log.Info("Photos: %d copied, %d failed", s.Photos, s.PhotoFailed)
	}
	failures := s.Failures()
	if len(failures) == 0 {
		r.log.Success("No failed trips")
		return
	}
	r.log.Error("There were errors processing the following %d outputs:", len(failures))
	for _, f := range failures {
		r.log.Error("  %s", f)
	}
}
