package config

// This file implements CLI flag binding for the root command.
// Flag values are captured into a separate struct and applied after the
// settings file is loaded, so only flags the user actually passed override
// the file (precedence: flags > file > defaults).

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the values captured from the command line.
type Flags struct {
	configFile     string
	cardRoot       string
	outputDir      string
	codec          Codec
	crf            int
	preset         string
	resolution     string
	scaler         string
	denoise        string
	maxDiff        float64
	overwrite      OverwritePolicy
	timeout        Duration
	combineEMR     bool
	optimizePhotos bool
	noPhotos       bool
	dryRun         bool
	assumeYes      bool
	waitForCard    bool
	ledger         string
	metricsFile    string
	failOnError    bool
	logFile        string
	verbose        bool
	forceColor     bool
	noColor        bool
}

// BindFlags registers the root command flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{codec: CodecCopy, overwrite: OverwritePrompt}

	fs.StringVarP(&f.configFile, "config", "c", "", "Settings file (TOML); default: ./tripmaster.toml if present")
	fs.StringVar(&f.cardRoot, "card", "", "SD card root containing Movie/, EMR/ and Photo/")
	fs.StringVar(&f.outputDir, "out", "", "Output directory for trip files and photos")

	fs.Var(&codecValue{&f.codec}, "codec", "Video codec: copy | libx264 | libx265")
	fs.IntVar(&f.crf, "crf", 23, "CRF for libx264/libx265")
	fs.StringVar(&f.preset, "preset", "medium", "Encoder preset (e.g. medium, slow)")
	fs.StringVar(&f.resolution, "resolution", "", "Scale output to W:H (re-encode only)")
	fs.StringVar(&f.scaler, "scaler", "bicubic", "Scaling algorithm for --resolution")
	fs.StringVar(&f.denoise, "denoise", "", "Denoise filter expression, e.g. hqdn3d")
	fs.Float64Var(&f.maxDiff, "max-diff", 5, "Max seconds between clips before a new trip starts")
	fs.Var(&overwriteValue{&f.overwrite}, "overwrite", "Existing outputs: always | never | prompt")
	fs.Var(&f.timeout, "timeout", "Per-trip ffmpeg timeout (e.g. 45m); 0 disables")

	fs.BoolVar(&f.combineEMR, "combine-emr", false, "Merge Movie and EMR clips into the same trips")
	fs.BoolVar(&f.optimizePhotos, "optimize-photos", false, "Run jpegoptim on copied photos")
	fs.BoolVar(&f.noPhotos, "no-photos", false, "Do not copy photos")
	fs.BoolVarP(&f.dryRun, "dry-run", "d", false, "Plan trips and print commands; do not run ffmpeg")
	fs.BoolVarP(&f.assumeYes, "yes", "y", false, "Skip the settings confirmation prompt")
	fs.BoolVar(&f.waitForCard, "wait-for-card", false, "Wait for the card root to appear before starting")

	fs.StringVar(&f.ledger, "ledger", "", "Pebble ledger directory for job results")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile at exit")
	fs.BoolVar(&f.failOnError, "fail-on-error", false, "Exit 1 when any trip failed")

	fs.StringVarP(&f.logFile, "log", "l", "", "Append logs to file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	return f
}

// ConfigFile returns the --config value.
func (f *Flags) ConfigFile() string { return f.configFile }

// Apply copies every flag the user set on fs into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	set := fs.Changed

	cfg.ConfigFile = f.configFile
	if set("card") {
		cfg.CardRoot = NormalizeDirArg(f.cardRoot)
	}
	if set("out") {
		cfg.OutputDir = NormalizeDirArg(f.outputDir)
	}
	if set("codec") {
		cfg.Video.Codec = f.codec
	}
	if set("crf") {
		cfg.Video.CRF = f.crf
	}
	if set("preset") {
		cfg.Video.Preset = f.preset
	}
	if set("resolution") {
		cfg.Video.Resolution = f.resolution
	}
	if set("scaler") {
		cfg.Video.Scaler = f.scaler
	}
	if set("denoise") {
		cfg.Video.Denoise = f.denoise
	}
	if set("max-diff") {
		cfg.MaxDiff = f.maxDiff
	}
	if set("overwrite") {
		cfg.Overwrite = f.overwrite
	}
	if set("timeout") {
		cfg.TranscodeTimeout = f.timeout
	}
	if set("combine-emr") {
		cfg.CombineMovieAndEMR = f.combineEMR
	}
	if set("optimize-photos") {
		cfg.OptimizePhotos = f.optimizePhotos
	}
	if set("no-photos") {
		cfg.SkipPhotos = f.noPhotos
	}
	if set("ledger") {
		cfg.LedgerPath = f.ledger
	}
	if set("metrics-file") {
		cfg.MetricsTextfile = f.metricsFile
	}
	if set("fail-on-error") {
		cfg.FailOnError = f.failOnError
	}
	if set("log") {
		cfg.Logging.File = f.logFile
	}
	if set("verbose") {
		cfg.Logging.Verbose = f.verbose
	}
	if f.noColor {
		cfg.Logging.Color = ColorNever
	} else if f.forceColor {
		cfg.Logging.Color = ColorAlways
	}

	cfg.DryRun = f.dryRun
	cfg.AssumeYes = f.assumeYes
	cfg.WaitForCard = f.waitForCard
}

// pflag.Value adapters so enum types can be used with fs.Var.

type codecValue struct{ p *Codec }

func (c *codecValue) String() string { return string(*c.p) }
func (c *codecValue) Type() string   { return "codec" }
func (c *codecValue) Set(s string) error {
	switch Codec(strings.ToLower(s)) {
	case CodecCopy:
		*c.p = CodecCopy
	case CodecLibx264:
		*c.p = CodecLibx264
	case CodecLibx265:
		*c.p = CodecLibx265
	default:
		return fmt.Errorf("invalid codec %q (use 'copy', 'libx264' or 'libx265')", s)
	}
	return nil
}

type overwriteValue struct{ p *OverwritePolicy }

func (o *overwriteValue) String() string { return string(*o.p) }
func (o *overwriteValue) Type() string   { return "policy" }
func (o *overwriteValue) Set(s string) error {
	switch OverwritePolicy(strings.ToLower(s)) {
	case OverwriteAlways:
		*o.p = OverwriteAlways
	case OverwriteNever:
		*o.p = OverwriteNever
	case OverwritePrompt:
		*o.p = OverwritePrompt
	default:
		return fmt.Errorf("invalid overwrite policy %q (use 'always', 'never' or 'prompt')", s)
	}
	return nil
}

// Set and Type make Duration usable as a pflag.Value.
func (d *Duration) Set(s string) error { return d.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (d *Duration) Type() string { return "duration" }
