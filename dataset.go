package psi

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnevenLength reports a dataset whose bitstrings do not all
	// share the length of the first entry.
	ErrUnevenLength = errors.New("dataset bitstrings have uneven lengths")

	// ErrValueOverflow reports a dataset value too large for one
	// plaintext slot.
	ErrValueOverflow = errors.New("dataset value does not fit a plaintext slot")

	// ErrDatasetTooLarge reports a dataset with more entries than the
	// plaintext has slots.
	ErrDatasetTooLarge = errors.New("dataset exceeds the plaintext slot count")
)

// Dataset is an immutable, index-aligned view of a set of equal-length
// bitstrings and their base-2 integer values.
type Dataset struct {
	raw    []string
	values []uint64
	bitLen int
}

// NewDataset parses raw as base-2 strings. Every entry must share the
// length of the first one, between 1 and 64 bits; the offending entry is
// named in the error. An empty slice is a valid degenerate dataset. The
// input is copied.
func NewDataset(raw []string) (*Dataset, error) {
	ds := &Dataset{
		raw:    make([]string, len(raw)),
		values: make([]uint64, len(raw)),
	}
	copy(ds.raw, raw)
	if len(raw) == 0 {
		return ds, nil
	}
	ds.bitLen = len(raw[0])
	if ds.bitLen == 0 || ds.bitLen > 64 {
		return nil, fmt.Errorf("bitstring length must be 1 to 64 bits, got %d", ds.bitLen)
	}
	for i, s := range raw {
		if len(s) != ds.bitLen {
			return nil, fmt.Errorf("%w: entry %d is %d bits, want %d", ErrUnevenLength, i, len(s), ds.bitLen)
		}
		v, err := strconv.ParseUint(s, 2, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d %q is not a bitstring: %w", i, s, err)
		}
		ds.values[i] = v
	}
	return ds, nil
}

// Len returns the number of entries.
func (d *Dataset) Len() int {
	return len(d.raw)
}

// BitLen returns the common bitstring length, 0 for the empty dataset.
func (d *Dataset) BitLen() int {
	return d.bitLen
}

// Raw returns the i-th bitstring.
func (d *Dataset) Raw(i int) string {
	return d.raw[i]
}

// Value returns the i-th base-2 value.
func (d *Dataset) Value(i int) uint64 {
	return d.values[i]
}

// Values returns a copy of all values, index-aligned with the bitstrings.
func (d *Dataset) Values() []uint64 {
	out := make([]uint64, len(d.values))
	copy(out, d.values)
	return out
}

// Fits reports whether every value can be carried by one plaintext slot
// under params, naming the first offending entry otherwise.
func (d *Dataset) Fits(params Parameters) error {
	t := params.PlaintextModulus()
	for i, v := range d.values {
		if v >= t {
			return fmt.Errorf("%w: entry %d %q = %d, plaintext modulus %d", ErrValueOverflow, i, d.raw[i], v, t)
		}
	}
	return nil
}
