package psi

import (
	"fmt"
	"log"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
)

// Receiver is the key-owning role. It batches its dataset into one
// encrypted plaintext, hands the ciphertext to the Sender and decrypts
// the Sender's answer into the intersection.
type Receiver struct {
	params Parameters
	keys   *KeyMaterial
	ds     *Dataset

	ecd *bfv.Encoder
	enc *rlwe.Encryptor
	dec *rlwe.Decryptor

	log *log.Logger
}

// NewReceiver builds the Receiver role: it generates fresh key material
// for params and prepares the encoder, encryptor and decryptor. The
// dataset may be empty; values too large for a slot are rejected here.
func NewReceiver(params Parameters, ds *Dataset) (*Receiver, error) {
	if ds == nil {
		ds = &Dataset{}
	}
	if err := ds.Fits(params); err != nil {
		return nil, err
	}
	keys := GenKeyMaterial(params)
	return &Receiver{
		params: params,
		keys:   keys,
		ds:     ds,
		ecd:    bfv.NewEncoder(params.Parameters),
		enc:    bfv.NewEncryptor(params.Parameters, keys.pub.Pk),
		dec:    bfv.NewDecryptor(params.Parameters, keys.sk),
	}, nil
}

// WithLogger returns a shallow copy of the Receiver that writes one audit
// line per protocol step to l.
func (r *Receiver) WithLogger(l *log.Logger) *Receiver {
	rc := *r
	rc.log = l
	return &rc
}

func (r *Receiver) auditf(format string, args ...any) {
	if r.log != nil {
		r.log.Printf("recv: "+format, args...)
	}
}

// Params returns the Receiver's parameters.
func (r *Receiver) Params() Parameters {
	return r.params
}

// Dataset returns the Receiver's dataset.
func (r *Receiver) Dataset() *Dataset {
	return r.ds
}

// Public returns the key bundle to hand to the Sender.
func (r *Receiver) Public() *PublicMaterial {
	return r.keys.pub
}

// EncryptDataset batches the dataset into the slots of a single plaintext
// and encrypts it under the public key: slot i carries the value of the
// i-th bitstring, the remaining slots are zero. An empty dataset yields
// the empty ciphertext and no error; a dataset with more entries than
// slots is rejected with ErrDatasetTooLarge.
func (r *Receiver) EncryptDataset() (Ciphertext, error) {
	if r.ds.Len() == 0 {
		r.auditf("dataset is empty, nothing to encrypt")
		return Ciphertext{}, nil
	}
	if r.ds.Len() > r.params.SlotCount() {
		return Ciphertext{}, fmt.Errorf("%w: %d values, %d slots", ErrDatasetTooLarge, r.ds.Len(), r.params.SlotCount())
	}

	vec := make([]uint64, r.params.SlotCount())
	copy(vec, r.ds.values)

	pt := bfv.NewPlaintext(r.params.Parameters, r.params.MaxLevel())
	if err := r.ecd.Encode(vec, pt); err != nil {
		return Ciphertext{}, fmt.Errorf("cannot encode dataset: %w", err)
	}
	ct, err := r.enc.EncryptNew(pt)
	if err != nil {
		return Ciphertext{}, fmt.Errorf("cannot encrypt dataset: %w", err)
	}

	if r.log != nil {
		b, err := r.noiseBudget(ct)
		if err != nil {
			return Ciphertext{}, err
		}
		r.auditf("dataset encrypted, %d values in %d slots, fresh noise budget %d bits", r.ds.Len(), r.params.SlotCount(), b)
	}
	return Ciphertext{ct: ct, fp: r.params.fp}, nil
}

// DecryptAndIntersect decrypts the Sender's answer and extracts the
// intersection: slot i equal to zero means the i-th bitstring of the
// Receiver's dataset is shared with the Sender. Only the first Len()
// slots are read. The empty ciphertext yields the empty result. The noise
// budget is measured before decryption; an exhausted budget does not fail
// the call but marks the result Unreliable.
func (r *Receiver) DecryptAndIntersect(res Ciphertext) (*ComputationResult, error) {
	if res.IsEmpty() {
		r.auditf("sender answer is empty")
		return &ComputationResult{Empty: true}, nil
	}
	if !res.matches(r.params) {
		return nil, fmt.Errorf("%w: answer digest %x, receiver parameters %x", ErrParameterMismatch, res.fp[:4], r.params.fp[:4])
	}

	budget, err := r.noiseBudget(res.ct)
	if err != nil {
		return nil, err
	}
	r.auditf("noise budget before decryption: %d bits", budget)

	vec := make([]uint64, r.params.SlotCount())
	if err := r.ecd.Decode(r.dec.DecryptNew(res.ct), vec); err != nil {
		return nil, fmt.Errorf("cannot decode answer: %w", err)
	}

	n := r.ds.Len()
	if n > len(vec) {
		n = len(vec)
	}
	var inter []Element
	for i := 0; i < n; i++ {
		if vec[i] == 0 {
			inter = append(inter, Element{Raw: r.ds.raw[i], Value: r.ds.values[i], Index: i})
		}
	}

	out := &ComputationResult{
		NoiseBudget:  budget,
		Intersection: inter,
		Empty:        len(inter) == 0,
		Unreliable:   budget == 0,
	}
	if out.Empty {
		r.auditf("the intersection between sender and receiver is empty")
	} else {
		r.auditf("%d of %d dataset entries are in the intersection", len(inter), n)
	}
	return out, nil
}
