// Package photos copies dash cam snapshots to the archive, optionally runs
// jpegoptim on the copies, and carries the source timestamps over.
package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/tripmaster/internal/ffmpeg"
	"github.com/backmassage/tripmaster/internal/filetimes"
)

// Options controls a Copy run.
type Options struct {
	Optimize  bool
	Jpegoptim string        // jpegoptim binary; used when Optimize is set.
	Runner    ffmpeg.Runner // Runs jpegoptim.
	Setter    filetimes.CreationTimeSetter
	DryRun    bool
}

// Report summarizes a Copy run.
type Report struct {
	Copied    []string // Destination paths.
	Optimized int
	Bytes     int64
	Failed    map[string]error // Keyed by source path.
}

// IsPhoto reports whether name is a JPEG snapshot.
func IsPhoto(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".jpg")
}

// Copy copies every photo in srcs into dstDir. A failure on one photo is
// recorded and the rest are still copied. Only a cancelled context stops
// the loop early.
func Copy(ctx context.Context, srcs []string, dstDir string, opts Options) (*Report, error) {
	rep := &Report{Failed: make(map[string]error)}
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !IsPhoto(src) {
			continue
		}
		dst := filepath.Join(dstDir, filepath.Base(src))
		if opts.DryRun {
			rep.Copied = append(rep.Copied, dst)
			continue
		}
		n, err := copyOne(ctx, src, dst, opts)
		if err != nil {
			rep.Failed[src] = err
			continue
		}
		rep.Copied = append(rep.Copied, dst)
		rep.Bytes += n
		if opts.Optimize {
			rep.Optimized++
		}
	}
	return rep, nil
}

func copyOne(ctx context.Context, src, dst string, opts Options) (int64, error) {
	times, err := filetimes.Read(src)
	if err != nil {
		return 0, err
	}
	n, err := copyFile(src, dst)
	if err != nil {
		return 0, err
	}
	if opts.Optimize {
		res, err := opts.Runner.Run(ctx, []string{opts.Jpegoptim, "-p", dst})
		if err != nil {
			return n, fmt.Errorf("jpegoptim %s: %w", dst, err)
		}
		if res.ExitCode != 0 {
			return n, fmt.Errorf("jpegoptim %s: exit status %d: %s",
				dst, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}
	if err := filetimes.Apply(dst, times, opts.Setter); err != nil {
		return n, err
	}
	return n, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", dst, err)
	}
	return n, nil
}
