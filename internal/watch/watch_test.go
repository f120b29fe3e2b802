package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForDir_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	called := false
	if err := WaitForDir(ctx, dir, Options{OnWait: func(string) { called = true }}); err != nil {
		t.Fatalf("WaitForDir: %v", err)
	}
	if called {
		t.Error("OnWait should not be called for an existing directory")
	}
}

func TestWaitForDir_AppearsLater(t *testing.T) {
	root := t.TempDir()
	card := filepath.Join(root, "media", "SDCARD")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	waiting := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- WaitForDir(ctx, card, Options{
			Settle: 20 * time.Millisecond,
			Poll:   50 * time.Millisecond,
			OnWait: func(w string) { waiting <- w },
		})
	}()

	select {
	case w := <-waiting:
		if w != root {
			t.Errorf("watched %q, want %q", w, root)
		}
	case <-ctx.Done():
		t.Fatal("OnWait never called")
	}

	if err := os.MkdirAll(card, 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForDir: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("WaitForDir did not return after the directory appeared")
	}
}

func TestWaitForDir_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := WaitForDir(ctx, filepath.Join(t.TempDir(), "never"), Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}

func TestWaitForDir_FileIsNotDir(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "card")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := WaitForDir(ctx, p, Options{}); err == nil {
		t.Error("a regular file should not satisfy WaitForDir")
	}
}
