package tasks

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/corey/moebuild/internal/fsutil"
	"github.com/rs/zerolog"
)

// toolLog appends tool output to a file, one line per call, in the order the
// lines arrive. Write failures are remembered and reported once on Close.
type toolLog struct {
	path string
	f    *os.File
	w    *bufio.Writer
	err  error
}

func createToolLog(path string) (*toolLog, error) {
	if err := fsutil.MkdirAll(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fsutil.FileMode)
	if err != nil {
		return nil, err
	}
	return &toolLog{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Line appends one line.
func (l *toolLog) Line(s string) {
	if l.err != nil {
		return
	}
	if _, err := l.w.WriteString(s); err != nil {
		l.err = err
		return
	}
	l.err = l.w.WriteByte('\n')
}

// Close flushes and closes the file. Failures are logged, never returned.
func (l *toolLog) Close(log zerolog.Logger) {
	if err := l.w.Flush(); err != nil && l.err == nil {
		l.err = err
	}
	if err := l.f.Close(); err != nil && l.err == nil {
		l.err = err
	}
	if l.err != nil {
		log.Warn().Err(l.err).Str("log", l.path).Msg("tool log incomplete")
	}
}
