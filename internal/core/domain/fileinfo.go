package domain

import (
	"io/fs"
	"os"
)

// FileInfo is a stable record of a filesystem object used for up-to-date checks.
// A missing file is marked by Missing (see MissingFileInfo); the zero value,
// with Missing false, is the empty marker used for virtual outputs.
type FileInfo struct {
	Device uint64
	Inode  uint64
	Mode   uint32
	Size   int64
	ModTime int64 // unix nanoseconds
	Missing bool
}

// MissingFileInfo is the canonical "missing" marker.
func MissingFileInfo() FileInfo {
	return FileInfo{Missing: true}
}

// StatFileInfo stats path and returns its FileInfo, or the missing marker if it
// does not exist. A non-ENOENT stat error is returned as an error.
func StatFileInfo(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return MissingFileInfo(), nil
		}
		return FileInfo{}, err
	}
	return fileInfoFromStat(st), nil
}

func fileInfoFromStat(st fs.FileInfo) FileInfo {
	info := FileInfo{
		Mode:    uint32(st.Mode()),
		Size:    st.Size(),
		ModTime: st.ModTime().UnixNano(),
	}
	if sys, ok := statSysInfo(st); ok {
		info.Device = sys.device
		info.Inode = sys.inode
	}
	return info
}

// Equal reports structural equality, the comparison used by validity checks.
func (f FileInfo) Equal(other FileInfo) bool {
	return f == other
}
