// Package auditlog appends the plain-text record of every sync batch,
// independent of the daemon's structured logging.
package auditlog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/minecart-tools/regionsync/internal/utils"
)

const timeFormat = "2006-01-02 15:04:05"

// Sink writes one timestamped line per call to an append-only text file.
// Writes are best-effort: a failure is reported to the operator via slog and
// never propagates, so a broken log disk cannot fail a sync batch.
type Sink struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

func NewSink(path string) *Sink {
	return &Sink{
		path: path,
		now:  time.Now,
	}
}

func (s *Sink) Path() string {
	return s.path
}

// Append writes `YYYY-MM-DD HH:MM:SS: <msg>` plus a newline.
func (s *Sink) Append(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.now().Format(timeFormat) + ": " + msg + "\n"

	if err := s.write(line); err != nil {
		slog.Error("audit log write failed", "path", s.path, "error", err)
	}
}

func (s *Sink) Appendf(format string, args ...any) {
	s.Append(fmt.Sprintf(format, args...))
}

func (s *Sink) write(line string) error {
	if err := utils.EnsureParent(s.path); err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(line)
	return err
}
