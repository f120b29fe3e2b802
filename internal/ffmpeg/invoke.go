package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/tripmaster/internal/planner"
)

// ExitSkipped is returned in place of ffmpeg's exit code when the run was
// told not to overwrite an existing output.
const ExitSkipped = -1

// Decider answers whether an existing output should be overwritten.
type Decider func(outputPath string) (bool, error)

// Invoker runs encode plans.
type Invoker struct {
	Runner  Runner
	Bin     string        // ffmpeg binary.
	Decide  Decider       // Consulted for undecided plans; nil declines.
	Timeout time.Duration // Per-invocation bound; 0 disables.
}

// Outcome is the result of one Invoke call.
type Outcome struct {
	ExitCode int // ffmpeg's exit status, or ExitSkipped.
	Stderr   string
	Args     []string
}

// Skipped reports whether the run was a deliberate non-overwrite.
func (o Outcome) Skipped() bool { return o.ExitCode == ExitSkipped }

// Invoke resolves the overwrite decision, runs ffmpeg and maps a refused
// overwrite to ExitSkipped. The plan is not modified.
func (iv *Invoker) Invoke(ctx context.Context, plan *planner.EncodePlan) (Outcome, error) {
	ow, err := iv.resolveOverwrite(plan)
	if err != nil {
		return Outcome{}, err
	}
	skipArmed := ow == planner.OverwriteNo && exists(plan.OutputPath)

	args := Build(iv.Bin, plan, ow)
	out := Outcome{Args: args}

	if iv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.Timeout)
		defer cancel()
	}
	res, err := iv.Runner.Run(ctx, args)
	out.Stderr = res.Stderr
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return out, fmt.Errorf("ffmpeg timed out after %s: %w", iv.Timeout, err)
		}
		return out, err
	}
	out.ExitCode = res.ExitCode
	// ffmpeg -n exits nonzero without touching an existing file.
	if skipArmed && res.ExitCode != 0 {
		out.ExitCode = ExitSkipped
	}
	return out, nil
}

func (iv *Invoker) resolveOverwrite(plan *planner.EncodePlan) (planner.OverwriteDecision, error) {
	if plan.Overwrite != planner.OverwriteUndecided || !exists(plan.OutputPath) {
		return plan.Overwrite, nil
	}
	if iv.Decide == nil {
		return planner.OverwriteNo, nil
	}
	yes, err := iv.Decide(plan.OutputPath)
	if err != nil {
		return planner.OverwriteUndecided, fmt.Errorf("overwrite prompt for %s: %w", plan.OutputPath, err)
	}
	if yes {
		return planner.OverwriteYes, nil
	}
	return planner.OverwriteNo, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
