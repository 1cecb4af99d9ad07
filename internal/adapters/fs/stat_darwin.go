//go:build darwin

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
	return time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec), time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
}
