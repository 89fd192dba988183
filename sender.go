package psi

import (
	"errors"
	"fmt"
	"log"
	"math/bits"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
)

// ErrNoRelinearizationKey reports a key bundle lacking the
// relinearization key the selected matching mode needs.
var ErrNoRelinearizationKey = errors.New("key bundle carries no relinearization key")

// MatchMode selects the per-slot matching function the Sender evaluates.
type MatchMode int

const (
	// MatchModeMembership marks slot i as matching when the Receiver's
	// i-th value occurs anywhere in the Sender's dataset: the Sender
	// evaluates the product of (slot - v) over its distinct values v.
	// The plaintext modulus is prime, so the product is zero exactly
	// when one factor is. Every level of the product tree costs one
	// ciphertext multiplication of noise budget.
	MatchModeMembership MatchMode = iota

	// MatchModePositional marks slot i as matching when the Receiver's
	// i-th value equals the Sender's i-th value: one homomorphic
	// subtraction of the Sender's batched dataset. The datasets must be
	// aligned by index beforehand; slots past the Sender's dataset
	// compare against zero.
	MatchModePositional
)

func (m MatchMode) String() string {
	switch m {
	case MatchModeMembership:
		return "membership"
	case MatchModePositional:
		return "positional"
	default:
		return fmt.Sprintf("matchmode(%d)", int(m))
	}
}

// Sender is the evaluating role. It holds no decrypting key material: it
// operates on the Receiver's ciphertext blindly and returns an encrypted
// answer it cannot read itself.
type Sender struct {
	params Parameters
	ds     *Dataset
	pub    *PublicMaterial
	mode   MatchMode

	ecd *bfv.Encoder
	evl *bfv.Evaluator

	log *log.Logger
}

// NewSender builds the evaluating role from its own dataset and the
// Receiver's key bundle. The bundle digest must match params, and the
// membership mode requires the bundle's relinearization key.
func NewSender(params Parameters, ds *Dataset, pub *PublicMaterial, mode MatchMode) (*Sender, error) {
	if ds == nil {
		ds = &Dataset{}
	}
	if pub == nil {
		return nil, errors.New("nil key bundle")
	}
	if pub.fp != params.fp {
		return nil, fmt.Errorf("%w: key bundle digest %x, sender parameters %x", ErrParameterMismatch, pub.fp[:4], params.fp[:4])
	}
	if err := ds.Fits(params); err != nil {
		return nil, err
	}
	var evk rlwe.EvaluationKeySet
	if mode == MatchModeMembership {
		if pub.Rlk == nil {
			return nil, ErrNoRelinearizationKey
		}
		evk = pub.EvaluationKeySet()
	}
	return &Sender{
		params: params,
		ds:     ds,
		pub:    pub,
		mode:   mode,
		ecd:    bfv.NewEncoder(params.Parameters),
		evl:    bfv.NewEvaluator(params.Parameters, evk),
	}, nil
}

// WithLogger returns a shallow copy of the Sender that writes one audit
// line per protocol step to l.
func (s *Sender) WithLogger(l *log.Logger) *Sender {
	sc := *s
	sc.log = l
	return &sc
}

func (s *Sender) auditf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf("send: "+format, args...)
	}
}

// Params returns the Sender's parameters.
func (s *Sender) Params() Parameters {
	return s.params
}

// Mode returns the matching mode the Sender evaluates.
func (s *Sender) Mode() MatchMode {
	return s.mode
}

// Match evaluates the matching function directly on the Receiver's
// encrypted dataset and returns the encrypted per-slot answer: slot i
// decrypts to zero exactly when the Receiver's i-th value matches under
// the Sender's mode. An empty input or an empty Sender dataset yields the
// empty ciphertext.
func (s *Sender) Match(recv Ciphertext) (Ciphertext, error) {
	if recv.IsEmpty() || s.ds.Len() == 0 {
		s.auditf("nothing to match, empty input or empty dataset")
		return Ciphertext{}, nil
	}
	if !recv.matches(s.params) {
		return Ciphertext{}, fmt.Errorf("%w: input digest %x, sender parameters %x", ErrParameterMismatch, recv.fp[:4], s.params.fp[:4])
	}

	var (
		out *rlwe.Ciphertext
		err error
	)
	switch s.mode {
	case MatchModePositional:
		out, err = s.matchPositional(recv.ct)
	default:
		out, err = s.matchMembership(recv.ct)
	}
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{ct: out, fp: s.params.fp}, nil
}

// matchMembership subtracts every distinct dataset value from the input
// and multiplies the differences as a balanced binary tree, relinearizing
// after each multiplication so every node stays at degree one.
func (s *Sender) matchMembership(recv *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	vals := distinctSorted(s.ds.values)
	s.auditf("membership match over %d distinct values, multiplicative depth %d", len(vals), bits.Len(uint(len(vals)-1)))

	diffs := make([]*rlwe.Ciphertext, len(vals))
	for i, v := range vals {
		d, err := s.evl.SubNew(recv, v)
		if err != nil {
			return nil, fmt.Errorf("cannot subtract value %d: %w", v, err)
		}
		diffs[i] = d
	}

	for len(diffs) > 1 {
		next := make([]*rlwe.Ciphertext, 0, (len(diffs)+1)/2)
		for i := 0; i+1 < len(diffs); i += 2 {
			prod, err := s.evl.MulRelinNew(diffs[i], diffs[i+1])
			if err != nil {
				return nil, fmt.Errorf("cannot multiply differences: %w", err)
			}
			next = append(next, prod)
		}
		if len(diffs)%2 == 1 {
			next = append(next, diffs[len(diffs)-1])
		}
		diffs = next
	}
	return diffs[0], nil
}

// matchPositional subtracts the Sender's batched dataset from the input.
func (s *Sender) matchPositional(recv *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if s.ds.Len() > s.params.SlotCount() {
		return nil, fmt.Errorf("%w: %d values, %d slots", ErrDatasetTooLarge, s.ds.Len(), s.params.SlotCount())
	}
	s.auditf("positional match over %d values", s.ds.Len())

	vec := make([]uint64, s.params.SlotCount())
	copy(vec, s.ds.values)

	pt := bfv.NewPlaintext(s.params.Parameters, recv.Level())
	if err := s.ecd.Encode(vec, pt); err != nil {
		return nil, fmt.Errorf("cannot encode dataset: %w", err)
	}
	out, err := s.evl.SubNew(recv, pt)
	if err != nil {
		return nil, fmt.Errorf("cannot subtract dataset: %w", err)
	}
	return out, nil
}
