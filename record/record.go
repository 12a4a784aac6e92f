// Package record provides dotted-path access to nested, JSON shaped records.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Jeffail/gabs/v2"
)

var (
	ErrNotObject = fmt.Errorf("record is not a JSON object")
)

// Record is a document made of nested map[string]interface{} values.
// Fields are addressed by dotted paths such as "source.ip". A literal dot
// inside a key is written as "~1".
//
// A Record is not safe for concurrent modification.
type Record struct {
	c *gabs.Container
}

// New wraps fields as a Record. A nil map yields an empty record.
func New(fields map[string]interface{}) *Record {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Record{c: gabs.Wrap(fields)}
}

// Decode parses a JSON object. Numbers are kept as json.Number so that
// integers survive a round trip unchanged.
func Decode(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	c, err := gabs.ParseJSONDecoder(dec)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Data().(map[string]interface{}); !ok {
		return nil, ErrNotObject
	}
	return &Record{c: c}, nil
}

// Get returns the value at path. ok is false if any segment is missing, an
// intermediate value is not an object, or the value is null.
func (r *Record) Get(path string) (value interface{}, ok bool) {
	found := r.c.Path(path)
	if found == nil || found.Data() == nil {
		return nil, false
	}
	return found.Data(), true
}

// Has reports whether Get would find a value at path.
func (r *Record) Has(path string) bool {
	_, ok := r.Get(path)
	return ok
}

// Set writes value at path, creating intermediate objects as needed.
func (r *Record) Set(path string, value interface{}) error {
	if _, err := r.c.SetP(value, path); err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}
	return nil
}

// Map returns the underlying document.
func (r *Record) Map() map[string]interface{} {
	m, _ := r.c.Data().(map[string]interface{})
	return m
}

// Bytes encodes the record as compact JSON.
func (r *Record) Bytes() []byte {
	return r.c.Bytes()
}
