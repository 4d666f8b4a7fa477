// Package forgetools implements the built-in forge.Tool set: packing a
// texture atlas into a small binary blob, rasterizing SVGs to PNG, copying
// or symlinking files through unchanged, zlib-compressing binary blobs, and
// archiving a directory tree into a gzipped cpio image. An ignore-filter
// decorator wraps any of these to exclude files named by per-directory
// ignore lists.
package forgetools

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// logSink is embedded by every tool in this package to implement
// forge.LogSetter: the executor's serial path points it at a shared
// buffer, the parallel path leaves it at its os.Stdout default.
type logSink struct {
	mu  sync.Mutex
	out io.Writer
}

// SetLog implements forge.LogSetter.
func (s *logSink) SetLog(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

func (s *logSink) logf(format string, args ...interface{}) {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format+"\n", args...)
}
