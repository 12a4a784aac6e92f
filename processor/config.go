package processor

import (
	"github.com/rs/zerolog"
)

// FieldCount is the number of field paths a processor reads, in the order
// source address, source port, destination address, destination port,
// transport protocol.
const FieldCount = 5

type Config struct {
	// Fields are the dotted paths of the source address, source port,
	// destination address, destination port and transport protocol, in
	// that order.
	Fields []string `mapstructure:"fields"`
	// TargetField is the dotted path the identifier is written to.
	TargetField string `mapstructure:"target_field" default:"community_id"`
	// Seed is a decimal number in 0..65535 mixed into every identifier to
	// tell deployments apart. Empty means 0.
	Seed string `mapstructure:"seed"`
	// IgnoreMissing leaves records without a complete 5-tuple untouched.
	// When false, such records are logged at warn level.
	IgnoreMissing bool `mapstructure:"ignore_missing" default:"true"`

	logger zerolog.Logger
}
