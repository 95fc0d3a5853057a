package wire

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
)

// ReadFrames reads newline-delimited frames from r until EOF or a read
// error, invoking onFrame for each one successfully decoded. A line
// that fails to decode is logged and skipped; the reader keeps going,
// per spec: decode failure on a line is non-fatal.
func ReadFrames(r io.Reader, onFrame func(*Frame)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		f, err := Decode(line)
		if err != nil {
			slog.Debug("wire: dropping malformed frame", "error", err)
			continue
		}
		onFrame(f)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// WriteFrame encodes and writes a single frame line to w.
func WriteFrame(w io.Writer, f *Frame) error {
	line, err := Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}
