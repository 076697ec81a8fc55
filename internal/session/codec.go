// Package session persists per-visualization-instance state between update
// cycles: the committed drill depths and the previous dataset snapshot.
// Each named session maps to one visualization instance; two cubes on one
// page use two sessions and never share depth state.
package session

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// File suffixes per codec.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
	lz4Extension  = ".json.lz4"
)

// jsonIndent keeps saved state files diffable by eye.
const jsonIndent = "  "

// Codec is the serialization strategy for session state files.
type Codec interface {
	Encode(w io.Writer, state any) error
	Decode(r io.Reader, state any) error
	// Extension is the file suffix for this codec, dot included.
	Extension() string
}

// JSONCodec stores state as indented JSON, the default human-inspectable
// form.
type JSONCodec struct {
	indent string
}

// NewJSONCodec creates the default JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{indent: jsonIndent}
}

// Encode writes the state as indented JSON.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", c.indent)

	err := enc.Encode(state)
	if err != nil {
		return fmt.Errorf("encode session json: %w", err)
	}

	return nil
}

// Decode reads JSON state into the given target.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("decode session json: %w", err)
	}

	return nil
}

// Extension returns the JSON file suffix.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec stores state in gob form for hosts that never inspect the files
// by hand.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode writes the state in gob form.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	err := gob.NewEncoder(w).Encode(state)
	if err != nil {
		return fmt.Errorf("encode session gob: %w", err)
	}

	return nil
}

// Decode reads gob state into the given target.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	err := gob.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("decode session gob: %w", err)
	}

	return nil
}

// Extension returns the gob file suffix.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// LZ4Codec stores state as an LZ4 frame around compact JSON. Dataset
// snapshots repeat member keys heavily, which compresses well.
type LZ4Codec struct{}

// NewLZ4Codec creates an LZ4-compressed JSON codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode writes the state as LZ4-framed compact JSON.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	compressor := lz4.NewWriter(w)

	encodeErr := json.NewEncoder(compressor).Encode(state)
	if encodeErr != nil {
		return fmt.Errorf("encode session lz4: %w", encodeErr)
	}

	closeErr := compressor.Close()
	if closeErr != nil {
		return fmt.Errorf("flush session lz4: %w", closeErr)
	}

	return nil
}

// Decode reads LZ4-framed JSON state into the given target.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(lz4.NewReader(r)).Decode(state)
	if err != nil {
		return fmt.Errorf("decode session lz4: %w", err)
	}

	return nil
}

// Extension returns the compressed-JSON file suffix.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}
