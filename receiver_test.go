package psi

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDatasetRoundTrip(t *testing.T) {
	params := testParams(t, 12)

	raw := testBitstrings(t, "roundtrip", 50, 16)
	ds, err := NewDataset(raw)
	require.NoError(t, err)
	recv, err := NewReceiver(params, ds)
	require.NoError(t, err)

	ct, err := recv.EncryptDataset()
	require.NoError(t, err)
	require.False(t, ct.IsEmpty())

	// every value survives the encode/encrypt/decrypt/decode loop and
	// the padding slots stay zero
	vec := make([]uint64, params.SlotCount())
	require.NoError(t, recv.ecd.Decode(recv.dec.DecryptNew(ct.ct), vec))
	require.Equal(t, ds.Values(), vec[:ds.Len()])
	for i := ds.Len(); i < len(vec); i++ {
		require.Zero(t, vec[i])
	}
}

func TestEncryptDatasetEmpty(t *testing.T) {
	params := testParams(t, 12)
	recv, err := NewReceiver(params, nil)
	require.NoError(t, err)

	ct, err := recv.EncryptDataset()
	require.NoError(t, err)
	require.True(t, ct.IsEmpty())
}

func TestEncryptDatasetTooLarge(t *testing.T) {
	params := testParams(t, 12)

	raw := make([]string, params.SlotCount()+1)
	for i := range raw {
		raw[i] = "0001"
	}
	ds, err := NewDataset(raw)
	require.NoError(t, err)
	recv, err := NewReceiver(params, ds)
	require.NoError(t, err)

	_, err = recv.EncryptDataset()
	require.ErrorIs(t, err, ErrDatasetTooLarge)
}

func TestNewReceiverValueOverflow(t *testing.T) {
	params := testParams(t, 12)

	ds, err := NewDataset([]string{"10000000000000001"})
	require.NoError(t, err)
	_, err = NewReceiver(params, ds)
	require.ErrorIs(t, err, ErrValueOverflow)
}

func TestDecryptAndIntersectEmpty(t *testing.T) {
	params := testParams(t, 12)
	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)
	recv, err := NewReceiver(params, ds)
	require.NoError(t, err)

	res, err := recv.DecryptAndIntersect(Ciphertext{})
	require.NoError(t, err)
	require.True(t, res.Empty)
	require.Zero(t, res.Len())
	require.Zero(t, res.NoiseBudget)
	require.False(t, res.Unreliable)
}

func TestDecryptAndIntersectMismatch(t *testing.T) {
	p12 := testParams(t, 12)
	p13 := testParams(t, 13)

	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)

	recv12, err := NewReceiver(p12, ds)
	require.NoError(t, err)
	recv13, err := NewReceiver(p13, ds)
	require.NoError(t, err)

	ct, err := recv13.EncryptDataset()
	require.NoError(t, err)

	_, err = recv12.DecryptAndIntersect(ct)
	require.ErrorIs(t, err, ErrParameterMismatch)

	_, err = recv12.NoiseBudget(ct)
	require.ErrorIs(t, err, ErrParameterMismatch)
}

func TestReceiverAuditLog(t *testing.T) {
	params := testParams(t, 12)
	recv, err := NewReceiver(params, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	recv = recv.WithLogger(log.New(&buf, "", 0))

	_, err = recv.EncryptDataset()
	require.NoError(t, err)
	require.Contains(t, buf.String(), "dataset is empty")

	buf.Reset()
	_, err = recv.DecryptAndIntersect(Ciphertext{})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "empty")
}
