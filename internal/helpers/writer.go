package helpers

import (
	"bytes"
	"io"
)

// PrefixWriter is an io.Writer that adds a prefix to each line. It buffers
// incomplete lines until a newline arrives so the prefix only appears at the
// start of complete lines. Used to tag streamed docker build/push output.
type PrefixWriter struct {
	writer io.Writer
	prefix []byte
	buf    bytes.Buffer
}

func NewPrefixWriter(writer io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{
		writer: writer,
		prefix: []byte(prefix),
	}
}

func (pw *PrefixWriter) Write(p []byte) (n int, err error) {
	pw.buf.Write(p)

	for {
		line, err := pw.buf.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				pw.buf.Write(line) // put the incomplete line back
				break
			}
			return n, err
		}

		if _, wErr := pw.writer.Write(pw.prefix); wErr != nil {
			return n, wErr
		}
		if _, wErr := pw.writer.Write(line); wErr != nil {
			return n, wErr
		}
	}

	return len(p), nil
}
