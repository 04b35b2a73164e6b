//go:build !unix

package domain

import "io/fs"

type sysInfo struct {
	device uint64
	inode  uint64
}

func statSysInfo(st fs.FileInfo) (sysInfo, bool) {
	return sysInfo{}, false
}
