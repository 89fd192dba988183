// Package dataio loads bitstring datasets from disk and writes
// intersection results back, one entry per line.
package dataio

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadBitstrings reads one bitstring per line from path. Blank lines are
// skipped and trailing carriage returns dropped, so both Unix and DOS
// line endings load.
func ReadBitstrings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// WriteBitstrings writes one entry per line to path, creating or
// truncating the file.
func WriteBitstrings(path string, entries []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
