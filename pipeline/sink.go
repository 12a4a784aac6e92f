package pipeline

import (
	"fmt"
	"io"
)

// Sink receives output lines in input order. partition is "" for records
// without an identifier or when no partitions are configured.
type Sink interface {
	Write(partition string, line []byte) error
}

// WriterSink writes every line to W, ignoring partitions.
type WriterSink struct {
	W io.Writer
}

func (s *WriterSink) Write(_ string, line []byte) error {
	return writeLine(s.W, line)
}

// PartitionedSink writes lines of known partitions to their writer and
// everything else to Default.
type PartitionedSink struct {
	Default    io.Writer
	Partitions map[string]io.Writer
}

func (s *PartitionedSink) Write(partition string, line []byte) error {
	w, ok := s.Partitions[partition]
	if !ok {
		w = s.Default
	}
	if w == nil {
		return fmt.Errorf("no writer for partition %q", partition)
	}
	return writeLine(w, line)
}

func writeLine(w io.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
