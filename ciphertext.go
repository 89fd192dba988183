package psi

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// Ciphertext is the unit the parties exchange: a BFV ciphertext tagged
// with the digest of the parameters it was produced under. The zero value
// is the empty ciphertext, the defined result of encrypting or matching
// an empty dataset; consumers treat it as a no-op input.
type Ciphertext struct {
	ct *rlwe.Ciphertext
	fp [32]byte
}

// IsEmpty reports whether c is the empty ciphertext.
func (c Ciphertext) IsEmpty() bool {
	return c.ct == nil
}

// Size returns the ciphertext size in ring elements, 0 for the empty
// ciphertext and 2 for anything freshly encrypted or relinearized.
func (c Ciphertext) Size() int {
	if c.ct == nil {
		return 0
	}
	return c.ct.Degree() + 1
}

// matches reports whether c was produced under parameters carrying the
// same digest as p.
func (c Ciphertext) matches(p Parameters) bool {
	return c.fp == p.fp
}

// MarshalBinary frames the ciphertext as a presence flag, the parameter
// digest and the ring elements. The empty ciphertext is one zero byte.
func (c Ciphertext) MarshalBinary() ([]byte, error) {
	if c.ct == nil {
		return []byte{0}, nil
	}
	ctb, err := c.ct.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("cannot marshal ciphertext: %w", err)
	}
	buf := make([]byte, 0, 1+len(c.fp)+len(ctb))
	buf = append(buf, 1)
	buf = append(buf, c.fp[:]...)
	buf = append(buf, ctb...)
	return buf, nil
}

// UnmarshalBinary decodes a ciphertext written by MarshalBinary.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("ciphertext: empty input")
	}
	if data[0] == 0 {
		*c = Ciphertext{}
		return nil
	}
	if len(data) < 1+len(c.fp) {
		return errors.New("ciphertext: truncated input")
	}
	copy(c.fp[:], data[1:1+len(c.fp)])
	c.ct = new(rlwe.Ciphertext)
	if err := c.ct.UnmarshalBinary(data[1+len(c.fp):]); err != nil {
		c.ct = nil
		return fmt.Errorf("cannot unmarshal ciphertext: %w", err)
	}
	return nil
}
