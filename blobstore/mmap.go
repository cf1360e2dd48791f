package blobstore

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// mmapRead reads the full contents of path via a memory-mapped read-only
// mapping, avoiding a read() copy for large blob files on the real OS
// filesystem (fs.go falls back to a plain read for in-memory filesystems
// used in tests, which cannot be mapped).
func mmapRead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}
