package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/tripmaster/internal/config"
)

// PrintSettings writes the loaded settings shown before the confirmation
// prompt.
func PrintSettings(w io.Writer, cfg *config.Config) {
	orNone := func(s string) string {
		if s == "" {
			return "None"
		}
		return s
	}
	rule := "---------------------------------------------------"
	fmt.Fprintln(w, "Loaded Settings")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "ffmpeg_path = %s\n", cfg.FFmpegPath)
	fmt.Fprintf(w, "ffprobe_path = %s\n", cfg.FFprobePath)
	fmt.Fprintf(w, "jpegoptim_path = %s\n\n", cfg.JpegoptimPath)

	fmt.Fprintf(w, "camera = %s\n", orNone(strings.TrimSpace(cfg.Author())))
	fmt.Fprintf(w, "comment = %s\n", cfg.Camera.Comment)
	fmt.Fprintf(w, "copyright = %s\n\n", cfg.Camera.Copyright)

	fmt.Fprintf(w, "card_root = %s\n", cfg.CardRoot)
	fmt.Fprintf(w, "output_dir = %s\n\n", cfg.OutputDir)

	fmt.Fprintf(w, "max_diff = %v\n", cfg.MaxDiff)
	fmt.Fprintf(w, "video codec = %s\n", cfg.Video.Codec)
	if cfg.Video.Codec != config.CodecCopy {
		fmt.Fprintf(w, "crf = %d\n", cfg.Video.CRF)
		fmt.Fprintf(w, "preset = %s\n", cfg.Video.Preset)
		fmt.Fprintf(w, "resolution = %s\n", orNone(cfg.Video.Resolution))
		fmt.Fprintf(w, "scaler = %s\n", cfg.Video.Scaler)
		fmt.Fprintf(w, "denoise = %s\n", orNone(cfg.Video.Denoise))
	}
	fmt.Fprintf(w, "audio = %s %s\n", cfg.Audio.Codec, cfg.Audio.Bitrate)
	fmt.Fprintf(w, "combine_movie_and_emr = %t\n", cfg.CombineMovieAndEMR)
	fmt.Fprintf(w, "optimize_photos = %t\n", cfg.OptimizePhotos)
	fmt.Fprintf(w, "overwrite = %s\n", cfg.Overwrite)
	if cfg.TranscodeTimeout.Duration > 0 {
		fmt.Fprintf(w, "transcode_timeout = %s\n", cfg.TranscodeTimeout.Duration)
	}
	fmt.Fprintln(w, rule)
}
