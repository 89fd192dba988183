package psi

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
	"golang.org/x/crypto/blake2b"
)

// ErrParameterMismatch reports a cross-party value that was produced
// under different cryptographic parameters than the consuming role's.
var ErrParameterMismatch = errors.New("parameter digest mismatch")

// DefaultPlaintextModulus is the plaintext modulus shared by all presets.
// It is prime, which membership matching relies on (a product of nonzero
// slot values stays nonzero), and congruent to 1 modulo 2N for every
// supported ring degree, which keeps the slot encoding available.
const DefaultPlaintextModulus uint64 = 0x10001

// defaultParamsLiteral maps the ring degree (log2) to BFV parameters at
// 128-bit security. The modulus chains total 109, 218 and 438 bits for
// degrees 2^12, 2^13 and 2^14 respectively.
var defaultParamsLiteral = map[int]bfv.ParametersLiteral{
	12: {
		LogN:             12,
		LogQ:             []int{39, 39},
		LogP:             []int{30},
		PlaintextModulus: DefaultPlaintextModulus,
	},
	13: {
		LogN:             13,
		LogQ:             []int{54, 54, 54},
		LogP:             []int{55},
		PlaintextModulus: DefaultPlaintextModulus,
	},
	14: {
		LogN:             14,
		LogQ:             []int{56, 55, 55, 54, 54, 54},
		LogP:             []int{55, 55},
		PlaintextModulus: DefaultPlaintextModulus,
	},
}

// Parameters bundles a BFV parameter set with a digest that identifies it
// across the party boundary. Receiver and Sender must be instantiated
// from equal Parameters; every value they exchange carries the digest, so
// a mismatch surfaces as ErrParameterMismatch before any homomorphic
// operation instead of corrupting the result.
type Parameters struct {
	bfv.Parameters
	fp [32]byte
}

// NewParameters fingerprints an existing BFV parameter set.
func NewParameters(params bfv.Parameters) (Parameters, error) {
	data, err := params.MarshalBinary()
	if err != nil {
		return Parameters{}, fmt.Errorf("cannot fingerprint parameters: %w", err)
	}
	return Parameters{Parameters: params, fp: blake2b.Sum256(data)}, nil
}

// NewParametersFromLiteral instantiates and fingerprints a parameter set
// from a BFV literal. The presets returned by ParametersForDegree should
// cover most uses; this is the escape hatch for custom modulus chains.
func NewParametersFromLiteral(pl bfv.ParametersLiteral) (Parameters, error) {
	params, err := bfv.NewParametersFromLiteral(pl)
	if err != nil {
		return Parameters{}, err
	}
	return NewParameters(params)
}

// ParametersForDegree returns the preset parameters for ring degree
// 2^logN. The degree is the only tunable: it fixes the slot count and,
// through the modulus chain, the noise budget available to the matching
// circuit. Supported degrees are 12, 13 and 14.
func ParametersForDegree(logN int) (Parameters, error) {
	pl, ok := defaultParamsLiteral[logN]
	if !ok {
		return Parameters{}, fmt.Errorf("no parameter preset for ring degree 2^%d (supported: 12, 13, 14)", logN)
	}
	return NewParametersFromLiteral(pl)
}

// SlotCount returns the number of plaintext slots, equal to the ring
// degree N. One slot carries one dataset value.
func (p Parameters) SlotCount() int {
	return p.MaxSlots()
}

// RowSize returns the slot count of one row of the two-row batching
// layout.
func (p Parameters) RowSize() int {
	return p.MaxSlots() >> 1
}

// MaxBitLen returns the widest bitstring length whose every value fits a
// plaintext slot, 16 for the presets.
func (p Parameters) MaxBitLen() int {
	return bits.Len64(p.PlaintextModulus()) - 1
}

// Fingerprint returns a copy of the parameter digest.
func (p Parameters) Fingerprint() []byte {
	fp := make([]byte, len(p.fp))
	copy(fp, p.fp[:])
	return fp
}

// Equal reports whether both Parameters carry the same digest.
func (p Parameters) Equal(other Parameters) bool {
	return p.fp == other.fp
}

// UnmarshalBinary decodes the parameter set and recomputes its digest.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	if err := p.Parameters.UnmarshalBinary(data); err != nil {
		return err
	}
	np, err := NewParameters(p.Parameters)
	if err != nil {
		return err
	}
	p.fp = np.fp
	return nil
}

func (p Parameters) String() string {
	return fmt.Sprintf("PN%d/QP=%.0f/T=%d", p.LogN(), p.LogQP(), p.PlaintextModulus())
}
