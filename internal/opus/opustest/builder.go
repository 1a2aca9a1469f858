// Package opustest builds synthetic FTS containers for tests. The layout
// matches the real instrument output: 24-byte global header, block payloads,
// then the directory at the end of the stream.
package opustest

import (
	"encoding/binary"
	"math"
)

// BlockSpec is one block to place in a synthetic container. Length is
// recorded in the directory in 32-bit units, derived from the payload.
type BlockSpec struct {
	Type    uint8
	Subtype uint8
	Payload []byte
}

// Build assembles a container holding the given blocks in order.
func Build(blocks ...BlockSpec) []byte {
	payloadLen := 0
	for _, b := range blocks {
		payloadLen += len(b.Payload)
	}
	dirOffset := 24 + payloadLen

	out := make([]byte, 0, dirOffset+12*len(blocks))
	out = append(out, 0x0A, 0x0A, 0xFE, 0xFE)
	out = appendU32(out, 0) // reserved
	out = appendU32(out, 0) // reserved
	out = appendU32(out, uint32(dirOffset))
	out = appendU32(out, 0) // reserved
	out = appendU32(out, uint32(len(blocks)))

	for _, b := range blocks {
		out = append(out, b.Payload...)
	}

	offset := 24
	for _, b := range blocks {
		out = append(out, b.Type, b.Subtype, 0, 0)
		out = appendU32(out, uint32(len(b.Payload)/4))
		out = appendU32(out, uint32(offset))
		offset += len(b.Payload)
	}
	return out
}

// Params concatenates parameter records and closes them with an END record.
func Params(records ...[]byte) []byte {
	var out []byte
	for _, r := range records {
		out = append(out, r...)
	}
	return append(out, EndRecord()...)
}

// IntRecord encodes a type-0 record holding a single int32.
func IntRecord(tag string, v int32) []byte {
	out := recordHeader(tag, 0, 2)
	return appendU32(out, uint32(v))
}

// FloatRecord encodes a type-1 record holding a single float64.
func FloatRecord(tag string, v float64) []byte {
	out := recordHeader(tag, 1, 4)
	return binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
}

// TextRecord encodes a type-2 record of the given word count, NUL-padded.
func TextRecord(tag string, text string, words uint16) []byte {
	out := recordHeader(tag, 2, words)
	payload := make([]byte, int(words)*2)
	copy(payload, text)
	return append(out, payload...)
}

// RawRecord encodes a record with an arbitrary type code and payload.
// The payload length must be even.
func RawRecord(tag string, typeCode uint16, payload []byte) []byte {
	out := recordHeader(tag, typeCode, uint16(len(payload)/2))
	return append(out, payload...)
}

// EndRecord terminates a parameter block.
func EndRecord() []byte {
	return recordHeader("END", 0, 0)
}

// FloatData encodes a data block payload of 32-bit float samples.
func FloatData(samples ...float32) []byte {
	out := make([]byte, 0, 4*len(samples))
	for _, s := range samples {
		out = appendU32(out, math.Float32bits(s))
	}
	return out
}

func recordHeader(tag string, typeCode, words uint16) []byte {
	out := make([]byte, 4, 8)
	copy(out, tag)
	out = binary.LittleEndian.AppendUint16(out, typeCode)
	return binary.LittleEndian.AppendUint16(out, words)
}

func appendU32(out []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(out, v)
}
