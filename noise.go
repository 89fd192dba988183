package psi

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/montanaflynn/stats"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
)

// NoiseBudget returns the invariant noise budget of ct in bits: how many
// doublings the noise can still take before decryption starts failing.
// Decryption is correct while the budget is positive; 0 means exhausted.
// The empty ciphertext has budget 0. Measuring requires the secret key,
// so only the Receiver can do it.
func (r *Receiver) NoiseBudget(ct Ciphertext) (int, error) {
	if ct.IsEmpty() {
		return 0, nil
	}
	if !ct.matches(r.params) {
		return 0, fmt.Errorf("%w: ciphertext digest %x, receiver parameters %x", ErrParameterMismatch, ct.fp[:4], r.params.fp[:4])
	}
	return r.noiseBudget(ct.ct)
}

// noiseBudget isolates the noise by re-encoding the decrypted plaintext
// at the ciphertext's metadata and subtracting it from a copy, then
// bounds the budget by log2(Q_level/(2T)) minus the largest noise
// coefficient, clamped at 0.
func (r *Receiver) noiseBudget(ct *rlwe.Ciphertext) (int, error) {
	vec := make([]uint64, r.params.MaxSlots())
	if err := r.ecd.Decode(r.dec.DecryptNew(ct), vec); err != nil {
		return 0, fmt.Errorf("cannot decode for noise measurement: %w", err)
	}

	pt := bfv.NewPlaintext(r.params.Parameters, ct.Level())
	*pt.MetaData = *ct.MetaData
	if err := r.ecd.Encode(vec, pt); err != nil {
		return 0, fmt.Errorf("cannot re-encode for noise measurement: %w", err)
	}

	diff := ct.CopyNew()
	r.params.RingQ().AtLevel(ct.Level()).Sub(diff.Value[0], pt.Value, diff.Value[0])

	_, _, maxLog2 := rlwe.Norm(diff, r.dec)

	bound := log2ModulusAtLevel(r.params, ct.Level()) - 1 - math.Log2(float64(r.params.PlaintextModulus()))
	budget := int(math.Floor(bound - maxLog2))
	if budget < 0 {
		budget = 0
	}
	return budget, nil
}

// log2ModulusAtLevel returns log2 of the ciphertext modulus at level.
func log2ModulusAtLevel(params Parameters, level int) float64 {
	q := new(big.Float).SetPrec(256).SetInt(params.RingQ().ModulusAtLevel[level])
	log2 := new(big.Float).Quo(bigfloat.Log(q), bigfloat.Log(big.NewFloat(2).SetPrec(256)))
	out, _ := log2.Float64()
	return out
}

// NoiseStats returns the mean and standard deviation of a series of noise
// budget measurements.
func NoiseStats(budgets []float64) (mean, stdev float64) {
	mean, _ = stats.Mean(budgets)
	stdev, _ = stats.StandardDeviation(budgets)
	return
}
