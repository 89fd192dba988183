package psi

import (
	"strconv"
	"strings"

	"github.com/markkurossi/tabulate"
)

// Element is one member of the intersection: a Receiver bitstring, its
// integer value and its index in the Receiver's dataset.
type Element struct {
	Raw   string
	Value uint64
	Index int
}

// ComputationResult is the Receiver's output for one protocol run. It is
// a value snapshot: none of the fields are mutated after construction.
type ComputationResult struct {
	// NoiseBudget is the invariant noise budget in bits, measured on the
	// Sender's ciphertext right before decryption, 0 for the empty
	// result.
	NoiseBudget int

	// Intersection lists the matched elements in Receiver dataset order.
	Intersection []Element

	// Empty states explicitly that the intersection has no elements.
	// It also covers the degenerate runs where one of the datasets was
	// empty and no ciphertext was ever produced.
	Empty bool

	// Unreliable is set when the noise budget was exhausted before
	// decryption. The intersection is still extracted, but its slots
	// may have decrypted incorrectly.
	Unreliable bool
}

// Len returns the intersection cardinality.
func (r *ComputationResult) Len() int {
	return len(r.Intersection)
}

// Strings returns the matched bitstrings in dataset order.
func (r *ComputationResult) Strings() []string {
	out := make([]string, len(r.Intersection))
	for i, e := range r.Intersection {
		out[i] = e.Raw
	}
	return out
}

// Table renders the intersection as an aligned (bitstring, value, slot)
// table. The empty intersection renders as the empty string.
func (r *ComputationResult) Table() string {
	if len(r.Intersection) == 0 {
		return ""
	}
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Bitstring").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)
	tab.Header("Slot").SetAlign(tabulate.MR)
	for _, e := range r.Intersection {
		row := tab.Row()
		row.Column(e.Raw)
		row.Column(strconv.FormatUint(e.Value, 10))
		row.Column(strconv.Itoa(e.Index))
	}
	var sb strings.Builder
	tab.Print(&sb)
	return sb.String()
}
