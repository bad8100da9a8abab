// Package recordlog implements the write path of a block-framed,
// checksummed record log: logical records of arbitrary length are appended
// to a destination as a sequence of fixed-size physical blocks, and a
// corruption-tolerant reader replays them in write order.
//
// Log format
//
// A log is a sequence of 32 KiB blocks. The only exception is that the
// tail of the log may contain a partial block.
//
// Each block consists of a sequence of fragments:
//
//	block := fragment* trailer?
//	fragment :=
//	  checksum: uint32   // masked crc32c of type and payload; little-endian
//	  length: uint16     // little-endian
//	  type: uint8        // one of full, first, middle, last
//	  payload: uint8[length]
//
// A fragment never starts within the last six bytes of a block, since its
// seven byte header would not fit. Any such leftover bytes form the
// trailer, which consists entirely of zero bytes and is skipped by
// readers. No fragment crosses a block boundary.
//
// A record that fits in the current block is stored as a single fragment
// of type full. A record that does not is split: the first fragment has
// type first, the last has type last, and every fragment between them has
// type middle. A zero-length record still produces one full fragment, and
// if exactly seven bytes remain in a block when a longer record arrives,
// the writer emits a first fragment carrying zero payload bytes there and
// continues in the next block.
//
// The checksum covers the type byte followed by the payload, and is stored
// masked so that logs whose payloads embed checksums of this same format
// do not defeat the corruption check.
package recordlog
