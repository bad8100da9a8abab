package recordlog

import (
	"bufio"
	"os"

	"github.com/NebulousLabs/errors"
)

// destinationBufferSize is the write buffer in front of the log file.
const destinationBufferSize = 64 * 1024

// A Destination is the append-only sink a Writer emits fragments to. The
// writer never reads back from its destination. Using the smallest
// interface possible makes it easy to substitute the destination in
// testing.
type Destination interface {
	// Append adds p to the end of the destination. A failed append leaves
	// the destination's true tail ambiguous; it may hold any prefix of p.
	Append(p []byte) error

	// Flush pushes previously appended bytes down to the underlying
	// medium.
	Flush() error
}

// FileDestination is the production Destination: an append-only file
// behind a write buffer. Flush drains the buffer into the file; Sync
// additionally asks the OS to commit the file to stable storage.
type FileDestination struct {
	f   *os.File
	buf *bufio.Writer
}

// CreateFileDestination creates or truncates the log file at path and
// returns a destination for a fresh Writer.
func CreateFileDestination(path string) (*FileDestination, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.AddContext(err, "failed to create log file")
	}
	return &FileDestination{
		f:   f,
		buf: bufio.NewWriterSize(f, destinationBufferSize),
	}, nil
}

// OpenFileDestination opens an existing log file for appending. It
// returns the destination together with the current file length, which
// the caller passes to ResumeWriter to recover the block cursor.
func OpenFileDestination(path string) (*FileDestination, uint64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, 0, errors.AddContext(err, "failed to open log file")
	}
	fi, err := f.Stat()
	if err != nil {
		err = errors.AddContext(err, "failed to stat log file")
		return nil, 0, errors.Compose(err, f.Close())
	}
	fd := &FileDestination{
		f:   f,
		buf: bufio.NewWriterSize(f, destinationBufferSize),
	}
	return fd, uint64(fi.Size()), nil
}

// Append implements Destination.
func (fd *FileDestination) Append(p []byte) error {
	_, err := fd.buf.Write(p)
	return err
}

// Flush implements Destination.
func (fd *FileDestination) Flush() error {
	return fd.buf.Flush()
}

// Sync flushes the buffer and commits the file to stable storage. A
// Writer only flushes; callers that need durability past an OS crash call
// Sync at their own commit points.
func (fd *FileDestination) Sync() error {
	if err := fd.buf.Flush(); err != nil {
		return errors.AddContext(err, "failed to flush log file buffer")
	}
	return fd.f.Sync()
}

// Close flushes pending bytes and closes the underlying file.
func (fd *FileDestination) Close() error {
	return errors.Compose(fd.buf.Flush(), fd.f.Close())
}
