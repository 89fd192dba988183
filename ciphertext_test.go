package psi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCiphertextEmpty(t *testing.T) {
	var ct Ciphertext
	require.True(t, ct.IsEmpty())
	require.Equal(t, 0, ct.Size())

	data, err := ct.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0}, data)

	var back Ciphertext
	require.NoError(t, back.UnmarshalBinary(data))
	require.True(t, back.IsEmpty())
}

func TestCiphertextBinary(t *testing.T) {
	params := testParams(t, 12)

	ds, err := NewDataset([]string{"1010", "0101"})
	require.NoError(t, err)
	recv, err := NewReceiver(params, ds)
	require.NoError(t, err)

	ct, err := recv.EncryptDataset()
	require.NoError(t, err)
	require.False(t, ct.IsEmpty())
	require.Equal(t, 2, ct.Size())
	require.True(t, ct.matches(params))

	data, err := ct.MarshalBinary()
	require.NoError(t, err)

	var back Ciphertext
	require.NoError(t, back.UnmarshalBinary(data))
	require.False(t, back.IsEmpty())
	require.Equal(t, ct.Size(), back.Size())
	require.True(t, back.matches(params))

	// the round-tripped ciphertext still decrypts to the batched slots
	vec := make([]uint64, params.SlotCount())
	require.NoError(t, recv.ecd.Decode(recv.dec.DecryptNew(back.ct), vec))
	require.Equal(t, uint64(10), vec[0])
	require.Equal(t, uint64(5), vec[1])
	require.Equal(t, uint64(0), vec[2])

	// digest tampering is detected
	back.fp[0] ^= 1
	require.False(t, back.matches(params))
}

func TestCiphertextUnmarshalBad(t *testing.T) {
	var ct Ciphertext
	require.Error(t, ct.UnmarshalBinary(nil))
	require.Error(t, ct.UnmarshalBinary([]byte{1, 2, 3}))
	require.True(t, ct.IsEmpty())
}
