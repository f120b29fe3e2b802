//go:build linux

package filetimes

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

func readTimes(path string) (Times, error) {
	var st unix.Statx_t
	mask := unix.STATX_ATIME | unix.STATX_MTIME | unix.STATX_BTIME
	err := unix.Statx(unix.AT_FDCWD, path, 0, mask, &st)
	if errors.Is(err, unix.ENOSYS) {
		return readStat(path)
	}
	if err != nil {
		return Times{}, err
	}
	t := Times{
		Access: statxTime(st.Atime),
		Modify: statxTime(st.Mtime),
	}
	if st.Mask&unix.STATX_BTIME != 0 {
		t.Create = statxTime(st.Btime)
		t.HasCreate = true
	}
	return t, nil
}

// readStat serves kernels older than 4.11, which lack statx.
func readStat(path string) (Times, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Times{}, err
	}
	return Times{
		Access: time.Unix(st.Atim.Unix()),
		Modify: time.Unix(st.Mtim.Unix()),
	}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
