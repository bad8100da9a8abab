package recordlog

import "hash/crc32"

// The log format checksums with CRC32-C (Castagnoli).
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// crcMaskDelta is the constant added when masking a checksum for storage.
const crcMaskDelta = 0xa282ead8

// maskChecksum returns a masked representation of crc. Stored checksums
// are masked because computing the CRC of a string that itself contains
// embedded CRCs degenerates; the mask is a rotation by 15 bits plus a
// constant, and must match bit-for-bit across implementations of the
// format.
func maskChecksum(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + crcMaskDelta
}

// unmaskChecksum returns the checksum that maskChecksum masked.
func unmaskChecksum(masked uint32) uint32 {
	rot := masked - crcMaskDelta
	return (rot >> 17) | (rot << 15)
}

// typeChecksums returns the checksum of each record type's tag byte,
// indexed by type. A fragment's checksum covers the type byte followed by
// the payload; seeding the payload hash with the precomputed type-only
// checksum folds the type byte in without re-reading it on every
// fragment.
func typeChecksums() [maxRecordType + 1]uint32 {
	var crcs [maxRecordType + 1]uint32
	for i := range crcs {
		crcs[i] = crc32.Checksum([]byte{byte(i)}, castagnoliTable)
	}
	return crcs
}
