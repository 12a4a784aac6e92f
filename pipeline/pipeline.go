// Package pipeline adds flow identifiers to a stream of newline delimited
// JSON records.
package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/stream"

	"community-id-go/partition"
	"community-id-go/processor"
	"community-id-go/record"
	ilog "community-id-go/x/log"
)

var (
	ErrNoProcessor = fmt.Errorf("processor is required")
)

type status int

const (
	statusIdentified status = iota
	statusSkipped
	statusInvalid
)

// Stats counts the records of a run.
type Stats struct {
	// Records is the number of non-blank input lines.
	Records int
	// Identified records gained an identifier.
	Identified int
	// Skipped records lacked a usable 5-tuple.
	Skipped int
	// Invalid lines were not JSON objects and were passed through.
	Invalid int
}

func (s *Stats) add(st status) {
	s.Records++
	switch st {
	case statusIdentified:
		s.Identified++
	case statusSkipped:
		s.Skipped++
	case statusInvalid:
		s.Invalid++
	}
}

type Pipeline struct {
	cfg         Config
	proc        *processor.Processor
	partitioner *partition.Partitioner
}

// New creates a Pipeline running records through proc.
func New(proc *processor.Processor, opts ...Option) (*Pipeline, error) {
	if proc == nil {
		return nil, ErrNoProcessor
	}
	cfg := Config{
		logger: ilog.Component("pipeline", zerolog.InfoLevel),
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Workers < 1 {
		cfg.logger.Warn().
			Int("workers", cfg.Workers).
			Msg("Worker count must be positive. Using a single worker.")
		cfg.Workers = 1
	}
	if cfg.MaxRecordSize < bufio.MaxScanTokenSize {
		cfg.MaxRecordSize = bufio.MaxScanTokenSize
	}
	if cfg.PartitionTableSize < 2 {
		return nil, fmt.Errorf("partition table size must be a prime, got %d", cfg.PartitionTableSize)
	}

	p := &Pipeline{cfg: cfg, proc: proc}
	if len(cfg.Partitions) > 0 {
		p.partitioner = partition.New(cfg.PartitionTableSize, cfg.Partitions...)
	}
	return p, nil
}

// Partitions returns the configured partition names.
func (p *Pipeline) Partitions() []string {
	if p.partitioner == nil {
		return nil
	}
	return p.partitioner.Names()
}

// Run reads records from in until EOF and writes them to out in input
// order. Records that cannot be identified or parsed are written as they
// were read. Run stops early on a write error, an oversized line or when
// ctx is done.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out Sink) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		stats    Stats
		writeErr error
		lineNo   int
	)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), int(p.cfg.MaxRecordSize))

	s := stream.New().WithMaxGoroutines(p.cfg.Workers)
	for ctx.Err() == nil && scanner.Scan() {
		lineNo++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		line := bytes.Clone(scanner.Bytes())
		n := lineNo

		s.Go(func() stream.Callback {
			output, part, st := p.handle(n, line)
			// Callbacks run one at a time in submission order.
			return func() {
				stats.add(st)
				if writeErr != nil {
					return
				}
				if err := out.Write(part, output); err != nil {
					writeErr = fmt.Errorf("write line %d: %w", n, err)
					cancel()
				}
			}
		})
	}
	s.Wait()

	logger := p.cfg.logger.With().
		Int("records", stats.Records).
		Int("identified", stats.Identified).
		Int("skipped", stats.Skipped).
		Int("invalid", stats.Invalid).
		Logger()

	switch {
	case writeErr != nil:
		logger.Err(writeErr).Msg("Pipeline aborted")
		return stats, writeErr
	case scanner.Err() != nil:
		err := fmt.Errorf("read line %d: %w", lineNo+1, scanner.Err())
		if errors.Is(scanner.Err(), bufio.ErrTooLong) {
			logger.Err(err).Int("max_record_size", int(p.cfg.MaxRecordSize)).Msg("Pipeline aborted")
		} else {
			logger.Err(err).Msg("Pipeline aborted")
		}
		return stats, err
	case ctx.Err() != nil:
		logger.Warn().Msg("Pipeline cancelled")
		return stats, ctx.Err()
	}

	logger.Info().Msg("Pipeline finished")
	return stats, nil
}

// handle processes one line and returns what to write and where.
func (p *Pipeline) handle(lineNo int, line []byte) (output []byte, part string, st status) {
	output, st = line, statusInvalid
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			p.cfg.logger.Err(err).Int("line", lineNo).Msg("Panic while processing record")
			output, part, st = line, "", statusInvalid
		}
	}()

	rec, err := record.Decode(line)
	if err != nil {
		p.cfg.logger.Warn().
			AnErr("error", err).
			Int("line", lineNo).
			Msg("Passing through line that is not a JSON object")
		return line, "", statusInvalid
	}

	modified, err := p.proc.Process(rec)
	if err != nil {
		p.cfg.logger.Warn().
			AnErr("error", err).
			Int("line", lineNo).
			Str("target_field", p.proc.TargetField()).
			Msg("Cannot write identifier")
		return line, "", statusSkipped
	}
	if !modified {
		return line, "", statusSkipped
	}

	if p.partitioner != nil {
		id, _ := rec.Get(p.proc.TargetField())
		if s, ok := id.(string); ok {
			part = p.partitioner.Pick(s)
		}
	}
	return rec.Bytes(), part, statusIdentified
}
