// Package check provides system diagnostics (the check subcommand) and
// pre-run dependency validation (CheckDeps) for ffmpeg, ffprobe, the
// configured encoders and jpegoptim.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound    = errors.New("could not execute ffmpeg")
	ErrFfprobeNotFound   = errors.New("could not execute ffprobe")
	ErrEncoderFailed     = errors.New("video encoder test encode failed")
	ErrAudioFailed       = errors.New("audio encoder test encode failed")
	ErrJpegoptimNotFound = errors.New("jpegoptim not found (needed for optimize_photos)")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck prints the availability of every external tool and encoder the
// archiver can use. It is informational and does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, r ffmpeg.Runner, log Logger) {
	log.Info("=== System Check ===")

	checkVersion(ctx, r, log, cfg.FFmpegPath)
	checkVersion(ctx, r, log, cfg.FFprobePath)
	for _, enc := range []string{string(config.CodecLibx264), string(config.CodecLibx265)} {
		log.Info("Testing %s...", enc)
		if videoEncodeWorks(ctx, r, cfg.FFmpegPath, enc) {
			log.Success("%s works", enc)
		} else {
			log.Warn("%s test encode failed", enc)
		}
	}
	log.Info("Testing %s encoder...", cfg.Audio.Codec)
	if audioEncodeWorks(ctx, r, cfg.FFmpegPath, cfg.Audio.Codec) {
		log.Success("%s encoder works", cfg.Audio.Codec)
	} else {
		log.Error("%s encoder test failed", cfg.Audio.Codec)
	}

	if p, err := exec.LookPath(cfg.JpegoptimPath); err != nil {
		log.Warn("jpegoptim not found; optimize_photos is unavailable")
	} else {
		log.Success("jpegoptim: %s", p)
	}
}

// checkVersion logs the first line of bin -version.
func checkVersion(ctx context.Context, r ffmpeg.Runner, log Logger, bin string) {
	res, err := r.Run(ctx, []string{bin, "-hide_banner", "-version"})
	if err != nil {
		log.Error("%s not found: %v", bin, err)
		return
	}
	if res.ExitCode != 0 {
		log.Warn("%s found but -version exited %d", bin, res.ExitCode)
		return
	}
	log.Success("%s found", bin)
	log.Debug("%s", firstLine(res.Stderr))
}

// CheckDeps is the pre-run validation. ffmpeg must answer -h and ffprobe
// must start. When re-encoding, a short test encode with the configured
// video codec must pass. jpegoptim is required only with OptimizePhotos.
func CheckDeps(ctx context.Context, cfg *config.Config, r ffmpeg.Runner) error {
	if !runOK(ctx, r, cfg.FFmpegPath, "-hide_banner", "-h") {
		return fmt.Errorf("%w: %q", ErrFfmpegNotFound, cfg.FFmpegPath)
	}
	if !runOK(ctx, r, cfg.FFprobePath, "-hide_banner", "-version") {
		return fmt.Errorf("%w: %q", ErrFfprobeNotFound, cfg.FFprobePath)
	}
	if cfg.Video.Codec != config.CodecCopy {
		if !videoEncodeWorks(ctx, r, cfg.FFmpegPath, string(cfg.Video.Codec)) {
			return fmt.Errorf("%w: %s", ErrEncoderFailed, cfg.Video.Codec)
		}
	}
	if cfg.OptimizePhotos {
		if _, err := exec.LookPath(cfg.JpegoptimPath); err != nil {
			return ErrJpegoptimNotFound
		}
	}
	return nil
}

// CheckAudio verifies the audio encoder used by filter-graph concatenation.
// It is separate from CheckDeps because only heterogeneous trips need it.
func CheckAudio(ctx context.Context, cfg *config.Config, r ffmpeg.Runner) error {
	if !audioEncodeWorks(ctx, r, cfg.FFmpegPath, cfg.Audio.Codec) {
		return fmt.Errorf("%w: %s", ErrAudioFailed, cfg.Audio.Codec)
	}
	return nil
}

// --- internal helpers ---

func videoEncodeWorks(ctx context.Context, r ffmpeg.Runner, bin, codec string) bool {
	return runOK(ctx, r, bin,
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	)
}

func audioEncodeWorks(ctx context.Context, r ffmpeg.Runner, bin, codec string) bool {
	return runOK(ctx, r, bin,
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", codec, "-f", "null", "-",
	)
}

// runOK reports whether bin started and exited 0.
func runOK(ctx context.Context, r ffmpeg.Runner, bin string, args ...string) bool {
	res, err := r.Run(ctx, append([]string{bin}, args...))
	return err == nil && res.ExitCode == 0
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
