package recordlog

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/NebulousLabs/errors"
	"github.com/NebulousLabs/fastrand"
)

// errFaultyDestination is returned once the simulated disk has failed.
var errFaultyDestination = errors.New("could not write to destination (faulty destination)")

// faultyDestination simulates a destination on a failing disk. The
// failure probability of a call is 1/failDenominator, which starts at 3
// and grows with every call, and all calls fail once writeLimit calls
// have happened. A failing append still lands a prefix of its bytes,
// simulating a partial write.
type faultyDestination struct {
	buf             bytes.Buffer
	failDenominator int
	writeLimit      int
	writes          int
	failed          bool
	disabled        bool
	mu              sync.Mutex
}

// newFaultyDestination creates a destination that can endure at most
// writeLimit calls before failing.
func newFaultyDestination(writeLimit int) *faultyDestination {
	return &faultyDestination{
		failDenominator: 3,
		writeLimit:      writeLimit,
	}
}

// disable allows the caller to temporarily disable the failures.
func (d *faultyDestination) disable(b bool) {
	d.mu.Lock()
	d.disabled = b
	d.mu.Unlock()
}

func (d *faultyDestination) Append(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disabled {
		d.buf.Write(p)
		return nil
	}
	if d.failed {
		return errFaultyDestination
	}

	d.writes++
	fail := fastrand.Intn(d.failDenominator) == 0
	d.failDenominator++
	if fail || d.writes >= d.writeLimit {
		d.failed = true
		// Land a prefix of the bytes on failure.
		d.buf.Write(p[:fastrand.Intn(len(p)+1)])
		return errFaultyDestination
	}

	d.buf.Write(p)
	return nil
}

func (d *faultyDestination) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.disabled && d.failed {
		return errFaultyDestination
	}
	return nil
}

// TestFaultyDestinationReplay writes random records against a failing
// destination until the first error, then replays whatever landed. Every
// record acknowledged before the failure must replay intact; at most the
// record that failed may additionally appear, when the failure struck
// after its bytes were already down.
func TestFaultyDestinationReplay(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}
	for i := 0; i < 100; i++ {
		dest := newFaultyDestination(fastrand.Intn(200) + 5)
		w := NewWriter(dest)

		var acked [][]byte
		var failedRecord []byte
		for j := 0; j < 200; j++ {
			record := fastrand.Bytes(fastrand.Intn(BlockSize / 4))
			if err := w.AddRecord(record); err != nil {
				if !errors.Contains(err, errFaultyDestination) {
					t.Fatalf("expected the destination error verbatim but got %v", err)
				}
				failedRecord = record
				break
			}
			acked = append(acked, record)
		}
		if failedRecord == nil {
			t.Fatal("destination never failed")
		}

		// Replay the surviving bytes.
		dest.disable(true)
		r := NewReader(bytes.NewReader(dest.buf.Bytes()), nil)
		var replayed [][]byte
		for {
			record, err := r.ReadRecord()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			replayed = append(replayed, record)
		}

		if len(replayed) < len(acked) || len(replayed) > len(acked)+1 {
			t.Fatalf("expected %v or %v replayed records but got %v",
				len(acked), len(acked)+1, len(replayed))
		}
		for k := range acked {
			if !bytes.Equal(replayed[k], acked[k]) {
				t.Errorf("record %v does not match its input", k)
			}
		}
		if len(replayed) == len(acked)+1 && !bytes.Equal(replayed[len(acked)], failedRecord) {
			t.Error("extra replayed record does not match the failed record")
		}
	}
}
