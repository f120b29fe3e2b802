// Package filetimes reads and copies file timestamps so trip outputs and
// photos keep the times of the clip they came from.
//
// Access and modification times are set everywhere with os.Chtimes.
// Creation time can only be set where the platform allows it; elsewhere the
// CreationTimeSetter is a no-op that reports Supported() == false.
package filetimes

import (
	"fmt"
	"os"
	"time"
)

// Times are the timestamps of one file.
type Times struct {
	Access    time.Time
	Modify    time.Time
	Create    time.Time
	HasCreate bool // False when the filesystem does not record a birth time.
}

// CreationTimeSetter sets a file's creation time where the platform allows.
type CreationTimeSetter interface {
	Supported() bool
	SetCreationTime(path string, t time.Time) error
}

// Read returns the timestamps of path.
func Read(path string) (Times, error) {
	t, err := readTimes(path)
	if err != nil {
		return Times{}, fmt.Errorf("read times of %s: %w", path, err)
	}
	return t, nil
}

// Preserve copies the access and modification times of src onto dst, and
// its creation time when setter supports it. A nil setter uses
// DefaultSetter.
func Preserve(src, dst string, setter CreationTimeSetter) error {
	t, err := Read(src)
	if err != nil {
		return err
	}
	return Apply(dst, t, setter)
}

// Apply sets previously read times on dst.
func Apply(dst string, t Times, setter CreationTimeSetter) error {
	if err := os.Chtimes(dst, t.Access, t.Modify); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	if setter == nil {
		setter = DefaultSetter()
	}
	if !setter.Supported() || !t.HasCreate {
		return nil
	}
	if err := setter.SetCreationTime(dst, t.Create); err != nil {
		return fmt.Errorf("set creation time on %s: %w", dst, err)
	}
	return nil
}
