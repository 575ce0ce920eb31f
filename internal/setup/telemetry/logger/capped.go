package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// lineWindow keeps the most recent lines written to a log file.
type lineWindow struct {
	lines []string
	next  int
	count int
}

func newLineWindow(capacity int) *lineWindow {
	return &lineWindow{lines: make([]string, capacity)}
}

func (w *lineWindow) push(line string) {
	w.lines[w.next] = line
	w.next = (w.next + 1) % len(w.lines)

	if w.count < len(w.lines) {
		w.count++
	}
}

// snapshot returns the retained lines oldest first.
func (w *lineWindow) snapshot() []string {
	out := make([]string, 0, w.count)
	start := (w.next - w.count + len(w.lines)) % len(w.lines)

	for i := range w.count {
		out = append(out, w.lines[(start+i)%len(w.lines)])
	}

	return out
}

// CappedFile is a log sink that never lets its file grow past twice maxLines.
// When the threshold is reached the file is compacted down to the last maxLines lines.
type CappedFile struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	window   *lineWindow
	maxLines int
	written  int
}

// OpenCappedFile opens (or creates) the log file at path.
// A maxLines of zero or less disables compaction.
func OpenCappedFile(path string, maxLines int) (*CappedFile, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	c := &CappedFile{
		path:     path,
		file:     f,
		maxLines: maxLines,
	}

	if maxLines > 0 {
		c.window = newLineWindow(maxLines)
	}

	return c, nil
}

// Write implements io.Writer.
func (c *CappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.file.Write(p)
	if err != nil || c.window == nil {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		c.window.push(string(line))
		c.written++

		if c.written >= c.maxLines*2 {
			if err := c.compact(); err != nil {
				return n, fmt.Errorf("failed to compact log file: %w", err)
			}

			c.written = c.window.count
		}
	}

	return n, nil
}

// Sync flushes the underlying file.
func (c *CappedFile) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.file.Sync()
}

// Close closes the underlying file.
func (c *CappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.file.Close()
}

// compact replaces the file with the retained window through a temp file rename.
func (c *CappedFile) compact() error {
	lines := c.window.snapshot()

	temp, err := os.CreateTemp(filepath.Dir(c.path), "compact-log-")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if _, err := temp.Write(buf.Bytes()); err != nil {
		temp.Close()
		os.Remove(temp.Name())

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return err
	}

	c.file.Close()

	// Windows refuses to rename over an existing file
	os.Remove(c.path)

	if err := os.Rename(temp.Name(), c.path); err != nil {
		return err
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	c.file = f

	return nil
}
