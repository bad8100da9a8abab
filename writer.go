package recordlog

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Writer appends logical records to a Destination, splitting them into
// checksummed fragments that never cross a block boundary.
//
// A Writer assumes exclusive, single-writer ownership of both its cursor
// and its destination. It performs no locking; concurrent calls to
// AddRecord must be serialized by the caller.
type Writer struct {
	dest Destination

	// blockOffset is the write cursor within the current block. It resets
	// to zero every BlockSize bytes and does not track the total number
	// of bytes written.
	blockOffset int

	// typeCRC caches the checksum of each record type's tag byte, used as
	// the seed for fragment checksums.
	typeCRC [maxRecordType + 1]uint32
}

// NewWriter returns a Writer that appends to an empty destination.
func NewWriter(dest Destination) *Writer {
	return &Writer{
		dest:    dest,
		typeCRC: typeChecksums(),
	}
}

// ResumeWriter returns a Writer that appends to a destination already
// holding destLength bytes, recovering the block cursor as destLength mod
// BlockSize.
//
// This is a heuristic, not a verified offset: the existing bytes must
// have been produced by this format and must end exactly on a fragment
// boundary. Resuming against anything else produces a log that readers
// cannot parse past destLength.
func ResumeWriter(dest Destination, destLength uint64) *Writer {
	w := NewWriter(dest)
	w.blockOffset = int(destLength % BlockSize)
	return w
}

// zeroTrailer pads block tails too short to host a fragment header.
var zeroTrailer [headerSize - 1]byte

// AddRecord appends one logical record to the log. It returns nil only
// once every fragment of the record has been appended and flushed. The
// first failure aborts the call and is returned to the caller; the
// remaining bytes of the record are not written, leaving a partial,
// unterminated record that replay drops.
//
// After a failure the cursor reflects the bytes that were attempted
// rather than the bytes known durable, so the true tail of the log is
// ambiguous. Callers must not assume further appends line up with the
// file without re-validating or truncating it first.
func (w *Writer) AddRecord(record []byte) error {
	left := len(record)
	pos := 0

	// Fragment the record if necessary and emit each piece. An empty
	// record still runs the loop once so that a single zero-length full
	// fragment is emitted.
	begin := true
	for {
		leftover := BlockSize - w.blockOffset
		if leftover < headerSize {
			// The block tail cannot host even an empty fragment. Pad it
			// with zeroes and move to a fresh block.
			if leftover > 0 {
				err := w.dest.Append(zeroTrailer[:leftover])
				if err != nil {
					w.blockOffset = 0
					return err
				}
			}
			w.blockOffset = 0
		}

		// Invariant: the current block has room for at least a header.
		avail := BlockSize - w.blockOffset - headerSize
		fragmentLength := left
		if fragmentLength > avail {
			fragmentLength = avail
		}

		end := fragmentLength == left
		var t recordType
		switch {
		case begin && end:
			t = typeFull
		case begin:
			t = typeFirst
		case end:
			t = typeLast
		default:
			t = typeMiddle
		}

		if err := w.emitPhysicalRecord(t, record[pos:pos+fragmentLength]); err != nil {
			return err
		}
		pos += fragmentLength
		left -= fragmentLength
		begin = false

		if left == 0 {
			return nil
		}
	}
}

// emitPhysicalRecord writes a single fragment: the 7 byte header followed
// by the payload, then flushes the destination. The caller guarantees the
// payload fits the length field and the current block.
//
// The cursor advances by the fragment's nominal size even when an append
// fails, keeping it consistent with the bytes that were attempted.
func (w *Writer) emitPhysicalRecord(t recordType, payload []byte) error {
	// sanity checks
	if len(payload) > math.MaxUint16 {
		panic(fmt.Sprintf("sanity check failed: fragment payload is %v bytes, above the two byte length field", len(payload)))
	}
	if w.blockOffset+headerSize+len(payload) > BlockSize {
		panic(fmt.Sprintf("sanity check failed: fragment of %v bytes does not fit the block at offset %v", len(payload), w.blockOffset))
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(payload)))
	header[6] = byte(t)

	// The checksum covers the type byte and the payload. The type byte is
	// folded in through the precomputed seed.
	crc := crc32.Update(w.typeCRC[t], castagnoliTable, payload)
	binary.LittleEndian.PutUint32(header[0:4], maskChecksum(crc))

	err := w.dest.Append(header[:])
	if err == nil {
		err = w.dest.Append(payload)
		if err == nil {
			err = w.dest.Flush()
		}
	}
	w.blockOffset += headerSize + len(payload)
	return err
}
