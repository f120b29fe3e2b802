//go:build windows

package filetimes

import (
	"errors"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

func readTimes(path string) (Times, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Times{}, err
	}
	d, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return Times{}, errors.New("unexpected file attribute data")
	}
	return Times{
		Access:    time.Unix(0, d.LastAccessTime.Nanoseconds()),
		Modify:    time.Unix(0, d.LastWriteTime.Nanoseconds()),
		Create:    time.Unix(0, d.CreationTime.Nanoseconds()),
		HasCreate: true,
	}, nil
}

type windowsSetter struct{}

// DefaultSetter returns the platform creation-time setter.
func DefaultSetter() CreationTimeSetter { return windowsSetter{} }

func (windowsSetter) Supported() bool { return true }

func (windowsSetter) SetCreationTime(path string, t time.Time) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	h, err := windows.CreateFile(p,
		windows.FILE_WRITE_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	ft := windows.NsecToFiletime(t.UnixNano())
	return windows.SetFileTime(h, &ft, nil, nil)
}
