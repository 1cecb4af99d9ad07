//go:build !linux && !darwin

package fs

import (
	"os"
	"time"
)

func fileTimes(info os.FileInfo) (ctime, atime time.Time) {
	return info.ModTime(), info.ModTime()
}
