package recordlog

import "github.com/NebulousLabs/errors"

// The corruption classes a Reader can encounter while replaying a log.
// They are delivered through the Reporter together with the approximate
// number of bytes dropped; ReadRecord itself keeps going and resumes at
// the next intact fragment.
var (
	// ErrChecksumMismatch indicates a fragment whose stored checksum does
	// not match the checksum of its type byte and payload.
	ErrChecksumMismatch = errors.New("fragment checksum mismatch")

	// ErrBadRecordLength indicates a fragment header whose length field
	// points past the end of its block.
	ErrBadRecordLength = errors.New("fragment length exceeds block")

	// ErrUnknownRecordType indicates a fragment with a type tag outside
	// the known set, e.g. written by a newer version of the format.
	ErrUnknownRecordType = errors.New("unknown record type")

	// ErrUnexpectedFragment indicates a fragment that breaks the
	// first/middle/last chain of a split record, typically the remains of
	// a write that failed partway through.
	ErrUnexpectedFragment = errors.New("fragment breaks record chain")
)
