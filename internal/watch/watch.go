// Package watch blocks until a directory appears, so a run can be started
// before the SD card is inserted.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options tunes WaitForDir.
type Options struct {
	// Settle is how long the directory must exist before WaitForDir returns,
	// giving the mount time to populate. Default 1500ms.
	Settle time.Duration
	// Poll re-checks the target at this interval in case the filesystem
	// emits no event for the mount. Default 2s.
	Poll time.Duration
	// OnWait is called once with the directory being watched.
	OnWait func(watched string)
}

// WaitForDir returns as soon as dir exists and is a directory, or when ctx
// is done. The nearest existing ancestor of dir is watched for creations.
func WaitForDir(ctx context.Context, dir string, opts Options) error {
	if opts.Settle <= 0 {
		opts.Settle = 1500 * time.Millisecond
	}
	if opts.Poll <= 0 {
		opts.Poll = 2 * time.Second
	}
	dir = filepath.Clean(dir)
	if isDir(dir) {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	watched, err := watchAncestor(w, dir, "")
	if err != nil {
		return err
	}
	if opts.OnWait != nil {
		opts.OnWait(watched)
	}

	poll := time.NewTicker(opts.Poll)
	defer poll.Stop()

	var settle *time.Timer
	var settleC <-chan time.Time
	arm := func() {
		if settle == nil {
			settle = time.NewTimer(opts.Settle)
			settleC = settle.C
		}
	}
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watch: event channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if isDir(dir) {
				arm()
				continue
			}
			// An intermediate directory appeared; move the watch down.
			if watched, err = watchAncestor(w, dir, watched); err != nil {
				return err
			}

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watch: error channel closed")
			}
			return fmt.Errorf("watch: %w", err)

		case <-poll.C:
			if isDir(dir) {
				arm()
			}

		case <-settleC:
			if isDir(dir) {
				return nil
			}
			settle, settleC = nil, nil
		}
	}
}

// watchAncestor adds a watch on the deepest existing ancestor of dir and
// removes the previous one when it changes.
func watchAncestor(w *fsnotify.Watcher, dir, prev string) (string, error) {
	anc := filepath.Dir(dir)
	for !isDir(anc) {
		next := filepath.Dir(anc)
		if next == anc {
			return "", fmt.Errorf("watch: no existing ancestor of %s", dir)
		}
		anc = next
	}
	if anc == prev {
		return prev, nil
	}
	if err := w.Add(anc); err != nil {
		return "", fmt.Errorf("watch %s: %w", anc, err)
	}
	if prev != "" {
		_ = w.Remove(prev)
	}
	return anc, nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
