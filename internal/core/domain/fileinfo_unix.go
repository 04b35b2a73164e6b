//go:build unix

package domain

import (
	"io/fs"
	"syscall"
)

type sysInfo struct {
	device uint64
	inode  uint64
}

func statSysInfo(st fs.FileInfo) (sysInfo, bool) {
	sys, ok := st.Sys().(*syscall.Stat_t)
	if !ok {
		return sysInfo{}, false
	}
	return sysInfo{device: uint64(sys.Dev), inode: sys.Ino}, true
}
