// SPDX-License-Identifier: MIT
package opus

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/charmap"
)

// Kind discriminates the closed set of parameter value shapes. The variant
// is fixed by the record's type code alone, never inferred from content.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one decoded header parameter: a signed 32-bit integer, a 64-bit
// float or a piece of ISO-8859-1 text, tagged by Kind.
type Value struct {
	Kind  Kind
	Int   int32
	Float float64
	Text  string
}

func IntValue(v int32) Value { return Value{Kind: KindInt, Int: v} }

func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }

func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// Number returns the value as a float64 for the two numeric kinds. Several
// tags (RES, PKL) appear as either integers or floats depending on firmware.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	default:
		return v.Text
	}
}

// MarshalJSON emits the bare scalar so serialized headers read naturally.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	default:
		return json.Marshal(v.Text)
	}
}

// DiagnosticFunc receives per-record decode diagnostics. The reader keeps
// no log state of its own; callers that care pass a sink, everyone else
// passes nil and diagnostics are dropped.
type DiagnosticFunc func(format string, args ...any)

func (d DiagnosticFunc) emit(format string, args ...any) {
	if d != nil {
		d(format, args...)
	}
}

// Parameter type codes as stored in record headers.
const (
	typeInt32 = 0
	typeFloat = 1
	// Codes 2 through 4 are fixed-width ISO-8859-1 strings.
	typeTextLo = 2
	typeTextHi = 4
)

// DecodeBlock reads the parameter records of the block starting at offset
// and returns them keyed by tag. length is the directory's 32-bit-word
// count for the block; the record stream carries its own END terminator, so
// length is used only for diagnostics.
//
// A record with an unsupported type code or an implausibly short payload is
// reported to diag and skipped; it never aborts the block. Running off the
// end of the source is a format error and does.
func DecodeBlock(src Source, offset int64, length int32, diag DiagnosticFunc) (map[string]Value, error) {
	params := make(map[string]Value)
	cur := offset
	for {
		raw, err := src.ReadExact(cur, 8)
		if err != nil {
			return nil, fmt.Errorf("opus: parameter record at offset %d (block at %d, %d words): %w",
				cur, offset, length, err)
		}
		tagBytes := raw[:4]
		typeCode := binary.LittleEndian.Uint16(raw[4:6])
		words := binary.LittleEndian.Uint16(raw[6:8])
		cur += 8

		if tagBytes[3] == 0x00 {
			tagBytes = tagBytes[:3]
		}
		tag := string(tagBytes)
		if strings.HasPrefix(tag, "END") || words == 0 {
			return params, nil
		}

		payload, err := src.ReadExact(cur, int(words)*2)
		if err != nil {
			return nil, fmt.Errorf("opus: payload of %q at offset %d: %w", tag, cur, err)
		}
		cur += int64(words) * 2

		switch {
		case typeCode == typeInt32:
			if len(payload) < 4 {
				diag.emit("opus: tag %q: integer payload of %d bytes, skipping", tag, len(payload))
				continue
			}
			params[tag] = IntValue(int32(binary.LittleEndian.Uint32(payload[:4])))
		case typeCode == typeFloat:
			if len(payload) < 8 {
				diag.emit("opus: tag %q: float payload of %d bytes, skipping", tag, len(payload))
				continue
			}
			params[tag] = FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(payload[:8])))
		case typeCode >= typeTextLo && typeCode <= typeTextHi:
			text, err := decodeText(payload)
			if err != nil {
				diag.emit("opus: tag %q: %v, skipping", tag, err)
				continue
			}
			params[tag] = TextValue(text)
		default:
			diag.emit("opus: tag %q: unsupported parameter type %d, skipping", tag, typeCode)
		}
	}
}

// decodeText decodes a fixed-width ISO-8859-1 payload, truncated at the
// first embedded NUL.
func decodeText(payload []byte) (string, error) {
	if i := strings.IndexByte(string(payload), 0x00); i >= 0 {
		payload = payload[:i]
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		return "", fmt.Errorf("decode ISO-8859-1 text: %w", err)
	}
	return string(text), nil
}

// Header maps block names to their decoded parameters. Built once at file
// open time and read-only afterwards.
type Header map[string]map[string]Value

// ReadHeader decodes every header-bearing block of the directory: data
// blocks, empty blocks and the unidentified/unknown entries carry no
// parameter records and are skipped.
func ReadHeader(src Source, dir Directory, diag DiagnosticFunc) (Header, error) {
	hdr := make(Header, len(dir))
	for name, blk := range dir {
		if blk.IsData() || blk.Length == 0 {
			continue
		}
		if strings.Contains(name, "unknown") || strings.HasPrefix(name, "something") {
			continue
		}
		params, err := DecodeBlock(src, int64(blk.Offset), blk.Length, diag)
		if err != nil {
			return nil, fmt.Errorf("opus: header block %q: %w", name, err)
		}
		hdr[name] = params
	}
	return hdr, nil
}

// Find returns the names of all blocks carrying the given tag, sorted.
func (h Header) Find(tag string) []string {
	var blocks []string
	for name, params := range h {
		if _, ok := params[tag]; ok {
			blocks = append(blocks, name)
		}
	}
	sort.Strings(blocks)
	return blocks
}

// Lookup returns the value of tag when exactly one block carries it. A tag
// that is absent, or ambiguous across blocks, reports false.
func (h Header) Lookup(tag string) (Value, bool) {
	blocks := h.Find(tag)
	if len(blocks) != 1 {
		return Value{}, false
	}
	return h[blocks[0]][tag], true
}

// Get returns the value of tag within a specific block.
func (h Header) Get(block, tag string) (Value, bool) {
	params, ok := h[block]
	if !ok {
		return Value{}, false
	}
	v, ok := params[tag]
	return v, ok
}
