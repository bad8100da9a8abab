package recordlog

const (
	// BlockSize is the size of a physical block in the log. Fragments are
	// packed contiguously from the start of a block and never cross into
	// the next one.
	BlockSize = 32 * 1024

	// headerSize is the size of a fragment header: a 4 byte masked
	// checksum, a 2 byte payload length and a 1 byte record type.
	headerSize = 4 + 2 + 1
)

// recordType tags a fragment with its position within the logical record
// it belongs to.
type recordType uint8

const (
	// typeZero is never written by the writer since it is the zero value
	// of a byte; readers treat a zero-type, zero-length fragment as
	// padding from preallocated or partially written block space.
	typeZero recordType = iota

	// typeFull marks a fragment carrying an entire record.
	typeFull

	// typeFirst marks the first fragment of a split record.
	typeFirst

	// typeMiddle marks an interior fragment of a split record.
	typeMiddle

	// typeLast marks the final fragment of a split record.
	typeLast

	maxRecordType = typeLast
)

// String returns the name of the record type, for corruption reports and
// test failures.
func (t recordType) String() string {
	switch t {
	case typeZero:
		return "zero"
	case typeFull:
		return "full"
	case typeFirst:
		return "first"
	case typeMiddle:
		return "middle"
	case typeLast:
		return "last"
	}
	return "unknown"
}
