package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestExecRunner(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not in PATH")
	}
	var tee bytes.Buffer
	r := &ExecRunner{Stderr: &tee}

	res, err := r.Run(context.Background(), []string{sh, "-c", "echo boom >&2; exit 3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "boom") || !strings.Contains(tee.String(), "boom") {
		t.Errorf("stderr not captured and tee'd: %q / %q", res.Stderr, tee.String())
	}

	res, err = r.Run(context.Background(), []string{sh, "-c", "exit 0"})
	if err != nil || res.ExitCode != 0 {
		t.Errorf("success: code=%d err=%v", res.ExitCode, err)
	}
}

func TestExecRunner_Errors(t *testing.T) {
	r := &ExecRunner{}
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Error("expected error for empty argv")
	}
	if _, err := r.Run(context.Background(), []string{"/nonexistent/ffmpeg-binary"}); err == nil {
		t.Error("expected error for missing binary")
	}

	sh, err := exec.LookPath("sh")
	if err != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, []string{sh, "-c", "sleep 5"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		stderr string
		want   Reason
	}{
		{"File '/archive/x_trip.mp4' already exists. Exiting.", ReasonAlreadyExists},
		{"Stream specifier ':a' in filtergraph description [v0][0:a]concat matches no streams.", ReasonMissingAudio},
		{"[mov,mp4] moov atom not found\n/card/a.MP4: Invalid data found when processing input", ReasonCorruptInput},
		{"Unknown encoder 'libx265'", ReasonUnknownEncoder},
		{"[AVFilterGraph] No such filter: 'hqdn4d'\nError initializing filters", ReasonFilterError},
		{"frame= 1800 fps=120", ReasonUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.stderr); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.stderr, got, tc.want)
		}
	}
}
