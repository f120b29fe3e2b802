package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/ffmpeg"
)

// scriptRunner answers by argv[0] and records every call.
type scriptRunner struct {
	missing map[string]bool // binaries that fail to start
	failing map[string]bool // substrings whose presence in argv forces exit 1
	calls   [][]string
}

func (s *scriptRunner) Run(_ context.Context, argv []string) (ffmpeg.Result, error) {
	s.calls = append(s.calls, argv)
	if s.missing[argv[0]] {
		return ffmpeg.Result{}, fmt.Errorf("%s: executable file not found", argv[0])
	}
	joined := strings.Join(argv, " ")
	for sub := range s.failing {
		if strings.Contains(joined, sub) {
			return ffmpeg.Result{ExitCode: 1}, nil
		}
	}
	return ffmpeg.Result{Stderr: argv[0] + " version 6.1\n"}, nil
}

type nopLogger struct{ errors, warns int }

func (n *nopLogger) Info(string, ...interface{})    {}
func (n *nopLogger) Success(string, ...interface{}) {}
func (n *nopLogger) Warn(string, ...interface{})    { n.warns++ }
func (n *nopLogger) Error(string, ...interface{})   { n.errors++ }
func (n *nopLogger) Debug(string, ...interface{})   {}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.JpegoptimPath = "/nonexistent/jpegoptim"
	return &cfg
}

func TestCheckDeps(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		runner  *scriptRunner
		wantErr error
	}{
		{"copy ok", nil, &scriptRunner{}, nil},
		{"ffmpeg missing", nil, &scriptRunner{missing: map[string]bool{"ffmpeg": true}}, ErrFfmpegNotFound},
		{"ffmpeg -h fails", nil, &scriptRunner{failing: map[string]bool{"banner -h": true}}, ErrFfmpegNotFound},
		{"ffprobe missing", nil, &scriptRunner{missing: map[string]bool{"ffprobe": true}}, ErrFfprobeNotFound},
		{
			"encoder fails",
			func(c *config.Config) { c.Video.Codec = config.CodecLibx265 },
			&scriptRunner{failing: map[string]bool{"libx265": true}},
			ErrEncoderFailed,
		},
		{
			"encoder not tested for copy",
			nil,
			&scriptRunner{failing: map[string]bool{"libx265": true, "libx264": true}},
			nil,
		},
		{
			"jpegoptim required",
			func(c *config.Config) { c.OptimizePhotos = true },
			&scriptRunner{},
			ErrJpegoptimNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := CheckDeps(context.Background(), cfg, tt.runner)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckDeps() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckDeps() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckDepsUsesConfiguredPaths(t *testing.T) {
	cfg := testConfig()
	cfg.FFmpegPath = "/opt/ff/ffmpeg"
	cfg.FFprobePath = "/opt/ff/ffprobe"
	r := &scriptRunner{}
	if err := CheckDeps(context.Background(), cfg, r); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 2 || r.calls[0][0] != "/opt/ff/ffmpeg" || r.calls[1][0] != "/opt/ff/ffprobe" {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestCheckAudio(t *testing.T) {
	cfg := testConfig()
	if err := CheckAudio(context.Background(), cfg, &scriptRunner{}); err != nil {
		t.Fatal(err)
	}
	err := CheckAudio(context.Background(), cfg, &scriptRunner{failing: map[string]bool{"-c:a aac": true}})
	if !errors.Is(err, ErrAudioFailed) {
		t.Errorf("CheckAudio() = %v, want ErrAudioFailed", err)
	}
}

func TestRunCheckReportsWithoutStopping(t *testing.T) {
	cfg := testConfig()
	r := &scriptRunner{missing: map[string]bool{"ffprobe": true}, failing: map[string]bool{"libx264": true}}
	log := &nopLogger{}
	RunCheck(context.Background(), cfg, r, log)
	if log.errors != 1 {
		t.Errorf("errors = %d, want 1 (ffprobe)", log.errors)
	}
	// libx264 failure plus missing jpegoptim.
	if log.warns != 2 {
		t.Errorf("warns = %d, want 2", log.warns)
	}
}
