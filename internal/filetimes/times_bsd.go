//go:build darwin || freebsd || netbsd

package filetimes

import (
	"time"

	"golang.org/x/sys/unix"
)

func readTimes(path string) (Times, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Times{}, err
	}
	return Times{
		Access:    time.Unix(st.Atim.Unix()),
		Modify:    time.Unix(st.Mtim.Unix()),
		Create:    time.Unix(st.Btim.Unix()),
		HasCreate: true,
	}, nil
}
