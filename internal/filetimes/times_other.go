//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package filetimes

import "os"

// Only the modification time is portable here; it stands in for access time.
func readTimes(path string) (Times, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Times{}, err
	}
	return Times{Access: fi.ModTime(), Modify: fi.ModTime()}, nil
}
