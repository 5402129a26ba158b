package dmlog

import (
	"io"
	"os"
)

// newWriter returns os.Stdout for an empty path, otherwise the file opened
// in append mode (created if missing).
func newWriter(filepath string) (*os.File, io.Writer, error) {
	if filepath == "" {
		return nil, os.Stdout, nil
	}
	f, err := os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
