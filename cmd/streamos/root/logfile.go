package root

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// cappedFile is an append-only log file that drops its oldest bytes once it
// grows past max, keeping the newest keep bytes.
type cappedFile struct {
	mu   sync.Mutex
	file *os.File
	max  int64
	keep int64
}

func openCappedFile(path string, maxSize, keepSize int64) (*cappedFile, error) {
	if keepSize > maxSize {
		keepSize = maxSize
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	c := &cappedFile{file: file, max: maxSize, keep: keepSize}
	if err := c.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return c, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.trim()
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// trim must be called with mu held.
func (c *cappedFile) trim() error {
	info, err := c.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= c.max {
		return nil
	}

	tail := make([]byte, c.keep)
	n, err := c.file.ReadAt(tail, size-c.keep)
	if err != nil && err != io.EOF {
		return err
	}
	if err := c.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = c.file.Write(tail[:n])
	return err
}
