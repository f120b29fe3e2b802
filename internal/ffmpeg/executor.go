package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Result is the outcome of one external process run.
type Result struct {
	ExitCode int
	Stderr   string
}

// Runner runs an external program. argv[0] is the program. A process that
// ran and exited nonzero is not an error; err is reserved for processes that
// could not start, were cancelled, or were killed by a signal.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// ExecRunner runs processes with os/exec. When Stderr is set the child's
// stderr is tee'd to it in real time; it is always captured into Result.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner. Stdin is never connected, so ffmpeg cannot block on
// an interactive prompt.
func (r *ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("ffmpeg: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderrBuf bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}
	cmd.Stdout = r.Stdout

	err := cmd.Run()
	res := Result{Stderr: stderrBuf.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", argv[0], ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			res.ExitCode = code
			return res, nil
		}
		return res, fmt.Errorf("%s: %v", argv[0], exitErr)
	}
	return res, fmt.Errorf("%s: %w", argv[0], err)
}
