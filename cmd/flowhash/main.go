// Command flowhash adds Community ID flow identifiers to newline delimited
// JSON records.
//
//	flowhash --config flowhash.yaml --input events.ndjson --output enriched.ndjson
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"community-id-go/pipeline"
	"community-id-go/processor"
	ilog "community-id-go/x/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		ilog.Logger.Error().Err(err).Msg("flowhash failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("flowhash", pflag.ContinueOnError)
	flags.String("config", "", "path to a YAML config file")
	flags.String("input", "-", "input file, - for stdin")
	flags.String("output", "-", "output file, - for stdout; partitions are written to <output>.<name>")
	flags.String("log-level", "info", "log level")
	flags.StringSlice("fields", nil, "the five 5-tuple field paths, overrides processor.fields")
	flags.String("target-field", "", "overrides processor.target_field")
	flags.String("seed", "", "overrides processor.seed")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("flowhash")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	ilog.Logger = ilog.Logger.Level(level)

	procOpts := []processor.Option{processor.LoadConfig(v), processor.WithLogLevel(level)}
	if flags.Changed("fields") {
		fields, _ := flags.GetStringSlice("fields")
		procOpts = append(procOpts, processor.WithFields(fields...))
	}
	if flags.Changed("target-field") {
		field, _ := flags.GetString("target-field")
		procOpts = append(procOpts, processor.WithTargetField(field))
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetString("seed")
		procOpts = append(procOpts, processor.WithSeed(seed))
	}
	proc, err := processor.New(procOpts...)
	if err != nil {
		return fmt.Errorf("processor: %w", err)
	}
	pl, err := pipeline.New(proc, pipeline.LoadConfig(v), pipeline.WithLogLevel(level))
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	in, closeIn, err := openInput(v.GetString("input"))
	if err != nil {
		return err
	}
	defer closeIn()

	sink, flush, err := openSink(v.GetString("output"), pl.Partitions())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := pl.Run(ctx, in, sink)
	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// openSink returns the sink and a function that flushes and closes all
// outputs.
func openSink(path string, partitions []string) (pipeline.Sink, func() error, error) {
	var (
		files   []*os.File
		writers []*bufio.Writer
	)
	open := func(p string) (io.Writer, error) {
		f := os.Stdout
		if p != "-" {
			var err error
			if f, err = os.Create(p); err != nil {
				return nil, err
			}
			files = append(files, f)
		}
		w := bufio.NewWriter(f)
		writers = append(writers, w)
		return w, nil
	}
	flush := func() error {
		var first error
		for _, w := range writers {
			if err := w.Flush(); err != nil && first == nil {
				first = err
			}
		}
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	def, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	if len(partitions) == 0 {
		return &pipeline.WriterSink{W: def}, flush, nil
	}
	if path == "-" {
		flush()
		return nil, nil, fmt.Errorf("partitions need an output file")
	}

	sink := &pipeline.PartitionedSink{Default: def, Partitions: make(map[string]io.Writer)}
	for _, name := range partitions {
		w, err := open(path + "." + name)
		if err != nil {
			flush()
			return nil, nil, err
		}
		sink.Partitions[name] = w
	}
	return sink, flush, nil
}
