// Package config holds runtime configuration: defaults, the TOML settings
// file, CLI flag overrides, and validation. Defaults match the settings the
// original dash cam archiver shipped with.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Codec is the output video codec.
type Codec string

const (
	CodecCopy    Codec = "copy"    // Stream copy (default). No re-encode.
	CodecLibx264 Codec = "libx264" // Software H.264.
	CodecLibx265 Codec = "libx265" // Software HEVC.
)

// OverwritePolicy controls what happens when a trip output already exists.
type OverwritePolicy string

const (
	OverwriteAlways OverwritePolicy = "always" // Pass -y to ffmpeg.
	OverwriteNever  OverwritePolicy = "never"  // Pass -n to ffmpeg.
	OverwritePrompt OverwritePolicy = "prompt" // Ask per existing file (default).
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Duration is a time.Duration that decodes from TOML strings like "30m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Camera holds the strings written into output metadata.
type Camera struct {
	Name      string `toml:"name"`
	Model     string `toml:"model"`
	Serial    string `toml:"serial"`
	Comment   string `toml:"comment"`
	Copyright string `toml:"copyright"`
}

// Video holds video encoding settings. Preset, CRF, Resolution, Scaler and
// Denoise only apply when Codec is not copy.
type Video struct {
	Codec      Codec  `toml:"codec"`
	Preset     string `toml:"preset"`
	CRF        int    `toml:"crf"`
	Resolution string `toml:"resolution"` // "W:H", empty keeps the source size.
	Scaler     string `toml:"scaler"`     // swscale algorithm, e.g. "bicubic".
	Denoise    string `toml:"denoise"`    // ffmpeg filter expression, used verbatim.
}

// Audio holds the audio settings used when the filter-graph path re-encodes audio.
type Audio struct {
	Codec   string `toml:"codec"`
	Bitrate string `toml:"bitrate"`
}

// Logging holds display and log sink settings.
type Logging struct {
	Color   ColorMode `toml:"color"`
	File    string    `toml:"file"`
	Verbose bool      `toml:"verbose"`
}

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by [LoadFile], then by [Flags.Apply]. After [Config.Validate] it is treated
// as read-only and handed to packages by pointer.
type Config struct {
	// Paths.
	CardRoot      string `toml:"card_root"`
	OutputDir     string `toml:"output_dir"`
	FFmpegPath    string `toml:"ffmpeg_path"`
	FFprobePath   string `toml:"ffprobe_path"`
	JpegoptimPath string `toml:"jpegoptim_path"`

	// Segmentation.
	MaxDiff            float64 `toml:"max_diff"`             // Default: 5 seconds.
	NominalClipSeconds float64 `toml:"nominal_clip_seconds"` // Default: 60 seconds.

	// Behavior.
	CombineMovieAndEMR bool            `toml:"combine_movie_and_emr"`
	OptimizePhotos     bool            `toml:"optimize_photos"`
	SkipPhotos         bool            `toml:"skip_photos"`
	Overwrite          OverwritePolicy `toml:"overwrite"`
	TranscodeTimeout   Duration        `toml:"transcode_timeout"` // 0 disables.
	FailOnError        bool            `toml:"fail_on_error"`

	// Persistence and reporting.
	LedgerPath      string `toml:"ledger_path"`
	MetricsTextfile string `toml:"metrics_textfile"`

	Camera  Camera  `toml:"camera"`
	Video   Video   `toml:"video"`
	Audio   Audio   `toml:"audio"`
	Logging Logging `toml:"logging"`

	// CLI-only (not read from the settings file).
	ConfigFile  string `toml:"-"`
	DryRun      bool   `toml:"-"`
	AssumeYes   bool   `toml:"-"`
	WaitForCard bool   `toml:"-"`
	CheckOnly   bool   `toml:"-"` // Diagnostics only; paths are not required.
}

// DefaultConfig returns a Config with the archiver's stock defaults.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		JpegoptimPath:      "jpegoptim",
		MaxDiff:            5,
		NominalClipSeconds: 60,
		Overwrite:          OverwritePrompt,
		Video: Video{
			Codec:  CodecCopy,
			Preset: "medium",
			CRF:    23,
			Scaler: "bicubic",
		},
		Audio: Audio{
			Codec:   "aac",
			Bitrate: "192k",
		},
		Logging: Logging{
			Color: ColorAuto,
		},
	}
}

// Sentinel validation errors.
var (
	ErrInvalidCodec     = errors.New("invalid video codec (use 'copy', 'libx264' or 'libx265')")
	ErrInvalidOverwrite = errors.New("invalid overwrite policy (use 'always', 'never' or 'prompt')")
	ErrInvalidColor     = errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	ErrMissingCardRoot  = errors.New("card_root was not specified")
	ErrMissingOutputDir = errors.New("output_dir was not specified")
)

// Validate checks enum fields, numeric ranges and required paths, and
// canonicalizes the audio bitrate. Paths are not required in CheckOnly mode.
// It does not touch the filesystem.
func (c *Config) Validate() error {
	switch c.Video.Codec {
	case CodecCopy, CodecLibx264, CodecLibx265:
		// valid
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidCodec, c.Video.Codec)
	}

	switch c.Overwrite {
	case OverwriteAlways, OverwriteNever, OverwritePrompt:
		// valid
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidOverwrite, c.Overwrite)
	}

	switch c.Logging.Color {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidColor, c.Logging.Color)
	}

	if c.MaxDiff < 0 || math.IsNaN(c.MaxDiff) || math.IsInf(c.MaxDiff, 0) {
		return fmt.Errorf("max_diff must be a finite non-negative number (got %v)", c.MaxDiff)
	}
	if !(c.NominalClipSeconds > 0) || math.IsInf(c.NominalClipSeconds, 0) {
		return fmt.Errorf("nominal_clip_seconds must be positive (got %v)", c.NominalClipSeconds)
	}
	if c.TranscodeTimeout.Duration < 0 {
		return errors.New("transcode_timeout must not be negative")
	}

	if c.Video.Codec != CodecCopy {
		if c.Video.CRF < 0 || c.Video.CRF > 51 {
			return fmt.Errorf("crf must be between 0 and 51 (got %d)", c.Video.CRF)
		}
		if strings.TrimSpace(c.Video.Preset) == "" {
			return fmt.Errorf("preset must not be empty for %s", c.Video.Codec)
		}
		if c.Video.Resolution != "" {
			if err := validateResolution(c.Video.Resolution); err != nil {
				return err
			}
			if c.Video.Scaler == "" {
				return errors.New("scaler must not be empty when resolution is set")
			}
		}
	}

	normalizedBitrate, err := normalizeAudioBitrate(c.Audio.Bitrate)
	if err != nil {
		return err
	}
	c.Audio.Bitrate = normalizedBitrate
	if strings.TrimSpace(c.Audio.Codec) == "" {
		return errors.New("audio codec must not be empty")
	}

	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg_path and ffprobe_path must not be empty")
	}
	if c.CheckOnly {
		return nil
	}
	if c.CardRoot == "" {
		return ErrMissingCardRoot
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	return nil
}

// Normalize clears the settings that stream copy cannot honor. It returns
// one notice per ignored setting that was explicitly non-empty, plus a
// general notice whenever the codec is copy. Call after Validate.
func (c *Config) Normalize() []string {
	if c.Video.Codec != CodecCopy {
		return nil
	}
	notices := []string{"codec is 'copy': crf, preset, resolution, denoise and scaler are ignored"}
	if c.Video.Resolution != "" {
		notices = append(notices, fmt.Sprintf("resolution %q ignored", c.Video.Resolution))
	}
	if c.Video.Denoise != "" {
		notices = append(notices, fmt.Sprintf("denoise %q ignored", c.Video.Denoise))
	}
	c.Video.Preset = ""
	c.Video.CRF = 0
	c.Video.Resolution = ""
	c.Video.Scaler = ""
	c.Video.Denoise = ""
	return notices
}

// Author composes the string written to the artist/author/album_author tags.
func (c *Config) Author() string {
	return strings.Join([]string{c.Camera.Name, c.Camera.Model, c.Camera.Serial}, " ")
}

// Profile returns the per-run encoding profile derived from c.
func (c *Config) Profile() Profile {
	return Profile{
		Codec:        c.Video.Codec,
		Preset:       c.Video.Preset,
		CRF:          c.Video.CRF,
		Resolution:   c.Video.Resolution,
		Scaler:       c.Video.Scaler,
		Denoise:      c.Video.Denoise,
		AudioCodec:   c.Audio.Codec,
		AudioBitrate: c.Audio.Bitrate,
		Overwrite:    c.Overwrite,
		Author:       c.Author(),
		Comment:      c.Camera.Comment,
		Copyright:    c.Camera.Copyright,
	}
}

// Profile is the immutable encoding profile passed by value into the planner.
type Profile struct {
	Codec        Codec
	Preset       string
	CRF          int
	Resolution   string
	Scaler       string
	Denoise      string
	AudioCodec   string
	AudioBitrate string
	Overwrite    OverwritePolicy
	Author       string
	Comment      string
	Copyright    string
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved card root. Both arguments must be absolute, symlink-resolved
// paths.
func (c *Config) ValidatePaths(cardAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == cardAbs || strings.HasPrefix(outputAbs+sep, cardAbs+sep) {
		return errors.New("output directory must not be inside the card root")
	}
	return nil
}

// validateResolution accepts "W:H" where each side is a positive integer or
// -1/-2 (ffmpeg's keep-aspect markers).
func validateResolution(res string) error {
	w, h, ok := strings.Cut(res, ":")
	if !ok {
		return fmt.Errorf("invalid resolution %q (use W:H, e.g. 1280:720)", res)
	}
	for _, side := range []string{w, h} {
		n, err := strconv.Atoi(side)
		if err != nil || n == 0 || n < -2 {
			return fmt.Errorf("invalid resolution %q (use W:H, e.g. 1280:720)", res)
		}
	}
	return nil
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "192", "192k", "192K", "192kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("audio bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid audio bitrate %q (use positive Kbps value, e.g. 192k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}
