//go:build !windows

package filetimes

import "time"

// nopSetter is used where creation time cannot be set independently.
type nopSetter struct{}

// DefaultSetter returns the platform creation-time setter.
func DefaultSetter() CreationTimeSetter { return nopSetter{} }

func (nopSetter) Supported() bool                        { return false }
func (nopSetter) SetCreationTime(string, time.Time) error { return nil }
