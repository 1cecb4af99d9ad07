//go:build linux

package fs

import (
	"os"
	"syscall"
	"time"
)

func fileTimes(info os.FileInfo) (ctime, atime time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec), time.Unix(st.Atim.Sec, st.Atim.Nsec)
}
