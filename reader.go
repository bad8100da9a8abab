package recordlog

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// A Reporter receives information about the regions a Reader drops while
// skipping corruption. bytes is the approximate size of the dropped
// region and err the corruption class, one of the Err variables of this
// package or an error from the underlying source.
type Reporter interface {
	Corruption(bytes int, err error)
}

// Reader replays the records a Writer produced, in write order. It is
// tolerant of corruption: a damaged region is reported to the Reporter
// and skipped up to the next block boundary, and replay continues with
// the next intact record. The partial record left behind by a failed
// AddRecord is dropped the same way.
type Reader struct {
	src      io.Reader
	reporter Reporter

	// block buffers one physical block of src; buf is its unparsed
	// remainder and aliases block.
	block [BlockSize]byte
	buf   []byte
	eof   bool
}

// NewReader returns a Reader replaying src from its start. reporter may
// be nil to discard corruption reports.
func NewReader(src io.Reader, reporter Reporter) *Reader {
	return &Reader{src: src, reporter: reporter}
}

// fragmentResult is the outcome of reading one physical fragment.
type fragmentResult int

const (
	fragmentOK fragmentResult = iota
	fragmentEOF
	fragmentBad
)

// ReadRecord returns the next logical record, reassembling split records
// from their fragments. It returns io.EOF once the log is exhausted;
// corruption never ends the stream early.
func (r *Reader) ReadRecord() ([]byte, error) {
	var record []byte
	inFragmented := false
	for {
		t, payload, res := r.readPhysicalRecord()
		switch res {
		case fragmentEOF:
			if inFragmented {
				// The log ends inside a split record: the writer stopped
				// partway through an AddRecord. Drop the partial record.
				r.report(len(record), ErrUnexpectedFragment)
			}
			return nil, io.EOF
		case fragmentBad:
			if inFragmented {
				r.report(len(record), ErrUnexpectedFragment)
				record = nil
				inFragmented = false
			}
			continue
		}

		switch t {
		case typeFull:
			if inFragmented {
				r.report(len(record), ErrUnexpectedFragment)
			}
			// The payload aliases the block buffer; copy it out.
			return append([]byte(nil), payload...), nil
		case typeFirst:
			if inFragmented {
				r.report(len(record), ErrUnexpectedFragment)
			}
			record = append(record[:0], payload...)
			inFragmented = true
		case typeMiddle:
			if !inFragmented {
				r.report(headerSize+len(payload), ErrUnexpectedFragment)
				continue
			}
			record = append(record, payload...)
		case typeLast:
			if !inFragmented {
				r.report(headerSize+len(payload), ErrUnexpectedFragment)
				continue
			}
			return append(record, payload...), nil
		default:
			dropped := headerSize + len(payload) + len(record)
			r.report(dropped, ErrUnknownRecordType)
			record = nil
			inFragmented = false
		}
	}
}

// readPhysicalRecord returns the next fragment of the log, reading the
// next block from src whenever the current one is exhausted. The returned
// payload aliases the block buffer and is only valid until the next call.
func (r *Reader) readPhysicalRecord() (recordType, []byte, fragmentResult) {
	for {
		if len(r.buf) < headerSize {
			if r.eof {
				// A header torn at the very tail of the log is the mark
				// of a writer that died mid-append, not corruption.
				r.buf = nil
				return typeZero, nil, fragmentEOF
			}
			// Skip the trailer, if any, and fetch the next block.
			r.buf = nil
			n, err := io.ReadFull(r.src, r.block[:])
			switch {
			case err == io.EOF:
				r.eof = true
				return typeZero, nil, fragmentEOF
			case err == io.ErrUnexpectedEOF:
				// A partial block terminates the log.
				r.eof = true
			case err != nil:
				r.report(BlockSize, err)
				r.eof = true
				return typeZero, nil, fragmentEOF
			}
			r.buf = r.block[:n]
			continue
		}

		length := int(binary.LittleEndian.Uint16(r.buf[4:6]))
		t := recordType(r.buf[6])

		if headerSize+length > len(r.buf) {
			dropped := len(r.buf)
			r.buf = nil
			if r.eof {
				// The length field points past the end of the log: the
				// writer died while appending the payload. Not reported,
				// for the same reason as a torn header.
				return typeZero, nil, fragmentEOF
			}
			r.report(dropped, ErrBadRecordLength)
			return typeZero, nil, fragmentBad
		}

		if t == typeZero && length == 0 {
			// Trailer padding, or preallocated space that was never
			// written. Skip the rest of the block without reporting.
			r.buf = nil
			continue
		}

		// Verify the checksum over the type byte and the payload. This
		// also rejects the padding at the tail of a partially zeroed
		// block before any of it is misread as a record.
		stored := unmaskChecksum(binary.LittleEndian.Uint32(r.buf[0:4]))
		if stored != crc32.Checksum(r.buf[6:headerSize+length], castagnoliTable) {
			dropped := len(r.buf)
			r.buf = nil
			r.report(dropped, ErrChecksumMismatch)
			return typeZero, nil, fragmentBad
		}

		payload := r.buf[headerSize : headerSize+length]
		r.buf = r.buf[headerSize+length:]
		return t, payload, fragmentOK
	}
}

func (r *Reader) report(bytes int, err error) {
	if r.reporter != nil {
		r.reporter.Corruption(bytes, err)
	}
}
