package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/backmassage/tripmaster/internal/planner"
)

// fakeRunner records argv and returns a canned exit code.
type fakeRunner struct {
	calls [][]string
	code  int
	err   error
	block bool
}

func (f *fakeRunner) Run(ctx context.Context, argv []string) (Result, error) {
	f.calls = append(f.calls, argv)
	if f.block {
		<-ctx.Done()
		return Result{}, ctx.Err()
	}
	return Result{ExitCode: f.code}, f.err
}

func planAt(t *testing.T, exists bool, ow planner.OverwriteDecision) *planner.EncodePlan {
	t.Helper()
	plan := basicCopyPlan()
	plan.OutputPath = filepath.Join(t.TempDir(), "k_174102_trip.mp4")
	plan.Overwrite = ow
	if exists {
		if err := os.WriteFile(plan.OutputPath, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return plan
}

func TestInvoke_Overwrite(t *testing.T) {
	cases := []struct {
		name     string
		exists   bool
		ow       planner.OverwriteDecision
		decide   Decider
		code     int
		wantFlag string
		wantCode int
		asked    bool
	}{
		{name: "always", exists: true, ow: planner.OverwriteYes, wantFlag: "-y"},
		{name: "never on missing output", ow: planner.OverwriteNo, wantFlag: "-n"},
		{name: "never on existing output", exists: true, ow: planner.OverwriteNo, code: 1, wantFlag: "-n", wantCode: ExitSkipped},
		{name: "prompt yes", exists: true, decide: func(string) (bool, error) { return true, nil }, wantFlag: "-y", asked: true},
		{name: "prompt no", exists: true, decide: func(string) (bool, error) { return false, nil }, code: 1, wantFlag: "-n", wantCode: ExitSkipped, asked: true},
		{name: "prompt on missing output", decide: func(string) (bool, error) { return true, nil }},
		{name: "nil decider declines", exists: true, code: 1, wantFlag: "-n", wantCode: ExitSkipped},
		{name: "genuine failure", exists: false, ow: planner.OverwriteYes, code: 1, wantFlag: "-y", wantCode: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := planAt(t, tc.exists, tc.ow)
			asked := false
			var decide Decider
			if tc.decide != nil {
				decide = func(p string) (bool, error) {
					asked = true
					return tc.decide(p)
				}
			}
			r := &fakeRunner{code: tc.code}
			iv := &Invoker{Runner: r, Bin: "ffmpeg", Decide: decide}

			out, err := iv.Invoke(context.Background(), plan)
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if out.ExitCode != tc.wantCode {
				t.Errorf("ExitCode = %d, want %d", out.ExitCode, tc.wantCode)
			}
			if asked != tc.asked {
				t.Errorf("decider asked = %v, want %v", asked, tc.asked)
			}
			if len(r.calls) != 1 {
				t.Fatalf("runner calls = %d, want 1", len(r.calls))
			}
			argv := r.calls[0]
			hasY, hasN := slices.Contains(argv, "-y"), slices.Contains(argv, "-n")
			switch tc.wantFlag {
			case "-y":
				if !hasY || hasN {
					t.Errorf("want -y only: %q", argv)
				}
			case "-n":
				if !hasN || hasY {
					t.Errorf("want -n only: %q", argv)
				}
			default:
				if hasY || hasN {
					t.Errorf("want no overwrite flag: %q", argv)
				}
			}
			if plan.Overwrite != tc.ow {
				t.Error("Invoke modified the plan")
			}
		})
	}
}

func TestInvoke_DeciderError(t *testing.T) {
	plan := planAt(t, true, planner.OverwriteUndecided)
	r := &fakeRunner{}
	iv := &Invoker{Runner: r, Bin: "ffmpeg", Decide: func(string) (bool, error) {
		return false, errors.New("stdin closed")
	}}
	if _, err := iv.Invoke(context.Background(), plan); err == nil {
		t.Fatal("expected decider error")
	}
	if len(r.calls) != 0 {
		t.Error("ffmpeg should not run when the decider fails")
	}
}

func TestInvoke_StartFailure(t *testing.T) {
	plan := planAt(t, false, planner.OverwriteYes)
	iv := &Invoker{Runner: &fakeRunner{err: errors.New("exec: not found")}, Bin: "ffmpeg"}
	if _, err := iv.Invoke(context.Background(), plan); err == nil {
		t.Error("expected start error")
	}
}

func TestInvoke_Timeout(t *testing.T) {
	plan := planAt(t, false, planner.OverwriteYes)
	iv := &Invoker{Runner: &fakeRunner{block: true}, Bin: "ffmpeg", Timeout: 20 * time.Millisecond}
	_, err := iv.Invoke(context.Background(), plan)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}

func TestOutcome_Skipped(t *testing.T) {
	if !(Outcome{ExitCode: ExitSkipped}).Skipped() {
		t.Error("ExitSkipped should report Skipped")
	}
	if (Outcome{ExitCode: 1}).Skipped() {
		t.Error("exit 1 is not a skip")
	}
}
