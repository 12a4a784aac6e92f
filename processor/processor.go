package processor

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog"

	"community-id-go/record"
	"community-id-go/tuple_hash"
	ilog "community-id-go/x/log"
	"community-id-go/x/ptr"
)

var (
	ErrInvalidFields    = fmt.Errorf("exactly %d fields are required", FieldCount)
	ErrEmptyField       = fmt.Errorf("field path must not be empty")
	ErrEmptyTargetField = fmt.Errorf("target field is required")
)

// skip reasons, used as log values
const (
	reasonMissing   = "missing_field"
	reasonMalformed = "malformed_value"
	reasonProtocol  = "unknown_protocol"
)

var fieldNames = [FieldCount]string{
	"source_address",
	"source_port",
	"destination_address",
	"destination_port",
	"transport",
}

// Processor adds the flow identifier of a record's 5-tuple to the record.
// It is read-only after New and safe for concurrent use, provided each
// record is handled by one goroutine at a time.
type Processor struct {
	cfg  Config
	seed uint16
}

// New creates a Processor. Misconfiguration (wrong number of fields, empty
// paths, invalid seed) is reported here and never per record.
func New(opts ...Option) (*Processor, error) {
	cfg := Config{
		logger: ilog.Component("processor", zerolog.InfoLevel),
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.Fields) != FieldCount {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidFields, len(cfg.Fields))
	}
	for i, field := range cfg.Fields {
		if strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("%s: %w", fieldNames[i], ErrEmptyField)
		}
	}
	if strings.TrimSpace(cfg.TargetField) == "" {
		return nil, ErrEmptyTargetField
	}
	seed, err := tuple_hash.ParseSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug().
		Strs("fields", cfg.Fields).
		Str("target_field", cfg.TargetField).
		Bool("ignore_missing", cfg.IgnoreMissing).
		Msg("Processor configured")

	return &Processor{cfg: cfg, seed: seed}, nil
}

// TargetField returns the path identifiers are written to.
func (p *Processor) TargetField() string {
	return p.cfg.TargetField
}

// Identify returns the identifier of the record's flow, or nil if the
// record lacks one of the fields or holds a value that cannot be resolved.
func (p *Processor) Identify(rec *record.Record) *string {
	var values [FieldCount]interface{}
	for i, path := range p.cfg.Fields {
		v, ok := rec.Get(path)
		if !ok {
			p.skipped(reasonMissing, i)
			return nil
		}
		values[i] = v
	}

	var (
		tuple tuple_hash.FlowTuple
		ok    bool
	)
	if tuple.SrcIP, ok = tuple_hash.ParseAddress(values[0]); !ok {
		p.skipped(reasonMalformed, 0)
		return nil
	}
	if tuple.SrcPort, ok = tuple_hash.ParsePort(values[1]); !ok {
		p.skipped(reasonMalformed, 1)
		return nil
	}
	if tuple.DstIP, ok = tuple_hash.ParseAddress(values[2]); !ok {
		p.skipped(reasonMalformed, 2)
		return nil
	}
	if tuple.DstPort, ok = tuple_hash.ParsePort(values[3]); !ok {
		p.skipped(reasonMalformed, 3)
		return nil
	}
	if tuple.Protocol, ok = tuple_hash.LookupProtocol(values[4]); !ok {
		p.skipped(reasonProtocol, 4)
		return nil
	}
	return ptr.ToPtr(tuple.Hash(p.seed))
}

// Process writes the identifier to the target field. It reports whether the
// record was modified; records without an identifier are left as they are
// and do not produce an error.
func (p *Processor) Process(rec *record.Record) (bool, error) {
	id := p.Identify(rec)
	if id == nil {
		return false, nil
	}
	if err := rec.Set(p.cfg.TargetField, *id); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Processor) skipped(reason string, field int) {
	event := p.cfg.logger.Debug()
	if reason == reasonMissing && !p.cfg.IgnoreMissing {
		event = p.cfg.logger.Warn()
	}
	event.
		Str("field", p.cfg.Fields[field]).
		Str("role", fieldNames[field]).
		Str("reason", reason).
		Msg("Record skipped")
}
