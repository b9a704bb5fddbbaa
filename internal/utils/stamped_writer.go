// Package utils provides path, file and logging helpers for the RegionSync daemon.
package utils

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// StampedWriter implements io.Writer and prefixes every line written through it
// with a sequence number and timestamp. It is used for the daemon log file and
// for capturing the supervised service's console output.
type StampedWriter struct {
	target io.Writer
	seq    atomic.Uint64
	buf    *bytes.Buffer
	reader *bufio.Reader
}

// NewStampedWriter wraps target so that each complete line receives a
// `line=N time=...` prefix before being forwarded.
func NewStampedWriter(target io.Writer) *StampedWriter {
	buf := &bytes.Buffer{}
	return &StampedWriter{
		target: target,
		buf:    buf,
		reader: bufio.NewReader(buf),
	}
}

func (w *StampedWriter) writeStampedLine(line []byte) (int, error) {
	lineNum := w.seq.Add(1)
	totalWritten := 0

	prefix := slog.Uint64("line", lineNum).String() + " " +
		slog.String("time", time.Now().Format(time.RFC3339)).String() + " "
	n, err := io.WriteString(w.target, prefix)
	totalWritten += n
	if err != nil {
		return totalWritten, err
	}

	n, err = w.target.Write(append(line, '\n'))
	totalWritten += n
	return totalWritten, err
}

// Write buffers p and forwards complete lines with their prefix.
// Returns the total number of bytes written to the target writer.
func (w *StampedWriter) Write(p []byte) (n int, err error) {
	if _, err := w.buf.Write(p); err != nil {
		return 0, err
	}

	totalWritten := 0
	scanner := bufio.NewScanner(w.buf)
	scanner.Split(bufio.ScanLines) // handles both \n and \r\n
	for scanner.Scan() {
		n, err = w.writeStampedLine([]byte(scanner.Text()))
		totalWritten += n
		if err != nil {
			return totalWritten, err
		}
	}

	return totalWritten, nil
}

// Close flushes any trailing partial line to the target writer.
func (w *StampedWriter) Close() error {
	remaining, err := io.ReadAll(w.reader)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		_, err = w.writeStampedLine(remaining)
	}
	return err
}
