package verify

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/backmassage/tripmaster/internal/ffmpeg"
)

// scriptRunner returns codes[i] for the i-th call.
type scriptRunner struct {
	codes []int
	calls [][]string
	err   error
}

func (s *scriptRunner) Run(_ context.Context, argv []string) (ffmpeg.Result, error) {
	i := len(s.calls)
	s.calls = append(s.calls, argv)
	if s.err != nil {
		return ffmpeg.Result{}, s.err
	}
	return ffmpeg.Result{ExitCode: s.codes[i], Stderr: "stage output"}, nil
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name      string
		codes     []int
		wantCalls int
		want      int
		wantStage int
	}{
		{"all pass", []int{0, 0, 0}, 3, 0, 0},
		{"stage 1 fails", []int{1, 0, 0}, 1, 1, 1},
		{"stage 2 fails", []int{0, 69, 0}, 2, 69, 2},
		{"stage 3 fails", []int{0, 0, 183}, 3, 183, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &scriptRunner{codes: tc.codes}
			var seen []int
			v := &Verifier{Runner: r, FFmpeg: "ffmpeg", FFprobe: "ffprobe",
				OnProgress: func(stage, total int, _ string) {
					if total != 3 {
						t.Errorf("total = %d", total)
					}
					seen = append(seen, stage)
				}}

			res, err := v.Verify(context.Background(), "/archive/out.mp4")
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if res.Status != tc.want || res.Stage != tc.wantStage {
				t.Errorf("result = %+v, want status %d stage %d", res, tc.want, tc.wantStage)
			}
			if res.Passed() != (tc.want == 0) {
				t.Errorf("Passed() = %v", res.Passed())
			}
			if len(r.calls) != tc.wantCalls {
				t.Errorf("runner calls = %d, want %d", len(r.calls), tc.wantCalls)
			}
			if len(seen) != tc.wantCalls {
				t.Errorf("progress callbacks = %v", seen)
			}
		})
	}
}

func TestVerify_StageCommands(t *testing.T) {
	r := &scriptRunner{codes: []int{0, 0, 0}}
	v := &Verifier{Runner: r, FFmpeg: "/bin/ffmpeg", FFprobe: "/bin/ffprobe"}
	if _, err := v.Verify(context.Background(), "out.mp4"); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"/bin/ffprobe", "-hide_banner", "-i", "out.mp4"},
		{"/bin/ffmpeg", "-hide_banner", "-v", "error", "-i", "out.mp4", "-map", "0:1", "-f", "null", "-"},
		{"/bin/ffmpeg", "-hide_banner", "-v", "error", "-i", "out.mp4", "-f", "null", "-"},
	}
	for i := range want {
		if !slices.Equal(r.calls[i], want[i]) {
			t.Errorf("stage %d argv = %q, want %q", i+1, r.calls[i], want[i])
		}
	}
}

func TestVerify_RunnerError(t *testing.T) {
	v := &Verifier{Runner: &scriptRunner{err: errors.New("no ffprobe")}, FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
	if _, err := v.Verify(context.Background(), "out.mp4"); err == nil {
		t.Error("expected error")
	}
}
