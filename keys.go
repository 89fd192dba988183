package psi

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
)

// KeyMaterial holds the Receiver's key set. The secret key stays inside
// the package and has no serialization path; Public is the only view that
// crosses the party boundary.
type KeyMaterial struct {
	params Parameters
	sk     *rlwe.SecretKey
	pub    *PublicMaterial
}

// GenKeyMaterial generates a fresh secret key, public key and
// relinearization key for params.
func GenKeyMaterial(params Parameters) *KeyMaterial {
	kgen := bfv.NewKeyGenerator(params.Parameters)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)
	return &KeyMaterial{
		params: params,
		sk:     sk,
		pub: &PublicMaterial{
			Pk:  pk,
			Rlk: rlk,
			fp:  params.fp,
		},
	}
}

// Params returns the parameters the keys were generated for.
func (k *KeyMaterial) Params() Parameters {
	return k.params
}

// Public returns the bundle shared with the Sender.
func (k *KeyMaterial) Public() *PublicMaterial {
	return k.pub
}

// PublicMaterial is the Sender-facing key bundle: the encryption and
// relinearization keys plus the digest of the parameters they were
// generated under. Rlk may be nil for bundles meant for subtraction-only
// matching.
type PublicMaterial struct {
	Pk  *rlwe.PublicKey
	Rlk *rlwe.RelinearizationKey

	fp [32]byte
}

// Fingerprint returns a copy of the parameter digest carried by the
// bundle.
func (p *PublicMaterial) Fingerprint() []byte {
	out := make([]byte, len(p.fp))
	copy(out, p.fp[:])
	return out
}

// EvaluationKeySet wraps the bundle's relinearization key for use by an
// evaluator, nil if the bundle carries none.
func (p *PublicMaterial) EvaluationKeySet() rlwe.EvaluationKeySet {
	if p.Rlk == nil {
		return nil
	}
	return rlwe.NewMemEvaluationKeySet(p.Rlk)
}

// MarshalBinary frames the bundle as digest || len(pk) || pk ||
// len(rlk) || rlk, with a zero length standing for a missing key.
func (p *PublicMaterial) MarshalBinary() ([]byte, error) {
	var pkb, rlkb []byte
	var err error
	if p.Pk != nil {
		if pkb, err = p.Pk.MarshalBinary(); err != nil {
			return nil, fmt.Errorf("cannot marshal public key: %w", err)
		}
	}
	if p.Rlk != nil {
		if rlkb, err = p.Rlk.MarshalBinary(); err != nil {
			return nil, fmt.Errorf("cannot marshal relinearization key: %w", err)
		}
	}
	buf := make([]byte, 0, len(p.fp)+16+len(pkb)+len(rlkb))
	buf = append(buf, p.fp[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(pkb)))
	buf = append(buf, pkb...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(rlkb)))
	buf = append(buf, rlkb...)
	return buf, nil
}

// UnmarshalBinary decodes a bundle written by MarshalBinary.
func (p *PublicMaterial) UnmarshalBinary(data []byte) error {
	if len(data) < len(p.fp)+8 {
		return errors.New("public material: truncated input")
	}
	copy(p.fp[:], data[:len(p.fp)])
	data = data[len(p.fp):]

	seg, data, err := readSegment(data)
	if err != nil {
		return fmt.Errorf("public material: %w", err)
	}
	p.Pk = nil
	if len(seg) > 0 {
		p.Pk = new(rlwe.PublicKey)
		if err := p.Pk.UnmarshalBinary(seg); err != nil {
			return fmt.Errorf("cannot unmarshal public key: %w", err)
		}
	}

	seg, _, err = readSegment(data)
	if err != nil {
		return fmt.Errorf("public material: %w", err)
	}
	p.Rlk = nil
	if len(seg) > 0 {
		p.Rlk = new(rlwe.RelinearizationKey)
		if err := p.Rlk.UnmarshalBinary(seg); err != nil {
			return fmt.Errorf("cannot unmarshal relinearization key: %w", err)
		}
	}
	return nil
}

// readSegment splits one length-prefixed segment off data.
func readSegment(data []byte) (seg, rest []byte, err error) {
	if len(data) < 8 {
		return nil, nil, errors.New("truncated segment header")
	}
	n := binary.LittleEndian.Uint64(data)
	data = data[8:]
	if uint64(len(data)) < n {
		return nil, nil, errors.New("truncated segment")
	}
	return data[:n], data[n:], nil
}
