// SPDX-License-Identifier: MIT
package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// magic is the 4-byte signature found at the start of every FTS container.
var magic = [4]byte{0x0A, 0x0A, 0xFE, 0xFE}

// headerSize is the fixed global header: six little-endian int32 of which
// only the directory offset and the block count are interpreted. The
// remaining fields are format artifacts kept for forward compatibility.
const headerSize = 24

// entrySize is one directory entry: type, subtype, two reserved bytes,
// then length and offset as int32.
const entrySize = 12

// blockNames maps the primary block type code to a display name. Type 0
// always exists in practice and is still unidentified.
var blockNames = map[uint8]string{
	160: "Sample Parameters",
	23:  "Data Parameters",
	96:  "Optic Parameters",
	64:  "FT Parameters",
	48:  "Acquisition Parameters",
	32:  "Instrument Parameters",
	7:   "Data Block",
	0:   "something",
}

// blockSuffixes maps the secondary type code to a name suffix that tells
// interferogram, spectrum, transmittance and phase blocks apart. 136 marks
// the second-channel interferogram variant; a second-channel spectrum
// variant also carries code 132 in the field and is not distinguished
// from " ScSm" here.
var blockSuffixes = map[uint8]string{
	132: " ScSm",
	4:   " SpSm",
	8:   " IgSm",
	20:  " TrSm",
	12:  " PhSm",
	136: " IgSm/2.Chn.",
}

// Block is the location metadata of one directory entry. Length counts
// 32-bit units: float samples for data blocks, words for parameter blocks.
type Block struct {
	Type    uint8
	Subtype uint8
	Length  int32
	Offset  int32
}

// Directory maps resolved block names to their locations. Built once per
// scan and treated as read-only afterwards.
type Directory map[string]Block

// Name resolves the display name of a block through the two catalogues.
// Unknown primary codes and the unidentified type 0 get the block length
// appended so repeated unknown blocks stay distinguishable.
func (b Block) Name() string {
	name, known := blockNames[b.Type]
	if !known {
		name = fmt.Sprintf("[unknown block %d]", b.Type)
	}
	if suffix, ok := blockSuffixes[b.Subtype]; ok {
		name += suffix
	}
	if b.Type == 0 || !known {
		name += fmt.Sprintf(" len %3d", b.Length)
	}
	return name
}

// IsData reports whether the block holds raw samples rather than
// parameter records.
func (b Block) IsData() bool {
	return blockNames[b.Type] == "Data Block"
}

// Scan validates the magic signature, reads the global header and walks the
// block directory. A magic mismatch returns ErrNotOpus together with an
// empty directory. Any read past the end of the source is a fatal format
// error for the scan; no partial directory is returned.
//
// Entries whose resolved names collide overwrite earlier ones. This mirrors
// the instrument's observed output, where colliding names only arise from
// repeated unknown blocks of identical length.
func Scan(src Source) (Directory, error) {
	head, err := src.ReadExact(0, headerSize)
	if err != nil {
		return nil, fmt.Errorf("opus: global header: %w", err)
	}
	if !bytes.Equal(head[:4], magic[:]) {
		return Directory{}, ErrNotOpus
	}

	dirOffset := int32(binary.LittleEndian.Uint32(head[12:16]))
	blockCount := int32(binary.LittleEndian.Uint32(head[20:24]))
	if dirOffset < 0 || blockCount < 0 {
		return nil, fmt.Errorf("opus: implausible directory (offset %d, %d blocks)", dirOffset, blockCount)
	}

	// The count is untrusted; cap the map hint at what the source could
	// physically hold so a corrupt header cannot force a huge allocation.
	hint := int64(blockCount)
	if size, err := src.Size(); err == nil && hint > size/entrySize {
		hint = size / entrySize
	}

	dir := make(Directory, hint)
	for i := int32(0); i < blockCount; i++ {
		raw, err := src.ReadExact(int64(dirOffset)+int64(i)*entrySize, entrySize)
		if err != nil {
			return nil, fmt.Errorf("opus: directory entry %d: %w", i, err)
		}
		blk := Block{
			Type:    raw[0],
			Subtype: raw[1],
			Length:  int32(binary.LittleEndian.Uint32(raw[4:8])),
			Offset:  int32(binary.LittleEndian.Uint32(raw[8:12])),
		}
		dir[blk.Name()] = blk
	}
	return dir, nil
}
