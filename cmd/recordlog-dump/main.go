// Command recordlog-dump prints the records of a log file, one line per
// record, tolerating and reporting corrupted regions the same way replay
// does.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/selust/recordlog"
)

// stderrReporter prints dropped regions as replay skips them.
type stderrReporter struct {
	quiet   bool
	dropped int
}

func (r *stderrReporter) Corruption(bytes int, err error) {
	r.dropped += bytes
	if !r.quiet {
		fmt.Fprintf(os.Stderr, "corruption: dropped ~%d bytes: %v\n", bytes, err)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showData bool
		maxBytes int
		quiet    bool
	)
	pflag.BoolVar(&showData, "data", false, "print record payloads as hex")
	pflag.IntVar(&maxBytes, "max-bytes", 128, "maximum payload bytes to print per record")
	pflag.BoolVar(&quiet, "quiet", false, "suppress per-region corruption reports")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return fmt.Errorf("usage: recordlog-dump [flags] <logfile>")
	}

	f, err := os.Open(pflag.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	reporter := &stderrReporter{quiet: quiet}
	r := recordlog.NewReader(f, reporter)
	records, bytes := 0, 0
	for {
		record, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("record %d: %d bytes\n", records, len(record))
		if showData && len(record) > 0 {
			data := record
			if len(data) > maxBytes {
				data = data[:maxBytes]
			}
			fmt.Printf("  %s\n", hex.EncodeToString(data))
		}
		records++
		bytes += len(record)
	}
	fmt.Printf("%d records, %d payload bytes", records, bytes)
	if reporter.dropped > 0 {
		fmt.Printf(", ~%d bytes dropped to corruption", reporter.dropped)
	}
	fmt.Println()
	return nil
}
