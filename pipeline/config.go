package pipeline

import (
	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
)

type Config struct {
	// Workers is the number of records processed concurrently.
	Workers int `mapstructure:"workers" default:"4"`
	// MaxRecordSize is the longest input line accepted. Longer lines abort
	// the run.
	MaxRecordSize bytesize.ByteSize `mapstructure:"max_record_size" default:"1048576"`
	// Partitions are the names of the outputs identified records are spread
	// over. Records of one flow always share a partition. Empty means a
	// single output.
	Partitions []string `mapstructure:"partitions"`
	// PartitionTableSize is the size of the partition lookup table. Must be
	// a prime.
	PartitionTableSize uint32 `mapstructure:"partition_table_size" default:"65537"`

	logger zerolog.Logger
}
