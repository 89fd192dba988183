package psi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewSenderMismatch(t *testing.T) {
	p12 := testParams(t, 12)
	p13 := testParams(t, 13)

	pub := GenKeyMaterial(p12).Public()
	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)

	_, err = NewSender(p13, ds, pub, MatchModeMembership)
	require.ErrorIs(t, err, ErrParameterMismatch)
}

func TestNewSenderNoRlk(t *testing.T) {
	params := testParams(t, 12)
	pub := GenKeyMaterial(params).Public()
	bundle := &PublicMaterial{Pk: pub.Pk, fp: pub.fp}

	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)

	_, err = NewSender(params, ds, bundle, MatchModeMembership)
	require.ErrorIs(t, err, ErrNoRelinearizationKey)

	// subtraction-only matching has no use for the relinearization key
	_, err = NewSender(params, ds, bundle, MatchModePositional)
	require.NoError(t, err)
}

func TestMatchEmpty(t *testing.T) {
	params := testParams(t, 12)

	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)
	recv, err := NewReceiver(params, ds)
	require.NoError(t, err)

	// empty input passes through untouched
	send, err := NewSender(params, ds, recv.Public(), MatchModeMembership)
	require.NoError(t, err)
	out, err := send.Match(Ciphertext{})
	require.NoError(t, err)
	require.True(t, out.IsEmpty())

	// an empty sender dataset blanks a real input
	sendEmpty, err := NewSender(params, nil, recv.Public(), MatchModeMembership)
	require.NoError(t, err)
	ct, err := recv.EncryptDataset()
	require.NoError(t, err)
	out, err = sendEmpty.Match(ct)
	require.NoError(t, err)
	require.True(t, out.IsEmpty())
}

func TestMatchMismatch(t *testing.T) {
	p12 := testParams(t, 12)
	p13 := testParams(t, 13)

	ds, err := NewDataset([]string{"0101"})
	require.NoError(t, err)

	recv12, err := NewReceiver(p12, ds)
	require.NoError(t, err)
	recv13, err := NewReceiver(p13, ds)
	require.NoError(t, err)

	send13, err := NewSender(p13, ds, recv13.Public(), MatchModeMembership)
	require.NoError(t, err)

	ct12, err := recv12.EncryptDataset()
	require.NoError(t, err)

	_, err = send13.Match(ct12)
	require.ErrorIs(t, err, ErrParameterMismatch)
}

func TestMatchPositionalTooLarge(t *testing.T) {
	params := testParams(t, 12)

	small, err := NewDataset([]string{"0101"})
	require.NoError(t, err)
	recv, err := NewReceiver(params, small)
	require.NoError(t, err)
	ct, err := recv.EncryptDataset()
	require.NoError(t, err)

	raw := make([]string, params.SlotCount()+1)
	for i := range raw {
		raw[i] = "0001"
	}
	over, err := NewDataset(raw)
	require.NoError(t, err)

	send, err := NewSender(params, over, recv.Public(), MatchModePositional)
	require.NoError(t, err)
	_, err = send.Match(ct)
	require.ErrorIs(t, err, ErrDatasetTooLarge)
}

// TestMembershipDuplicates feeds the sender a dataset with repeated
// values: the duplicates must collapse before the product tree instead
// of burning budget.
func TestMembershipDuplicates(t *testing.T) {
	params := testParams(t, 12)

	recvSet := []string{"0101", "0001"}
	sendSet := []string{"0101", "0101", "0101", "1010"}

	recv, res := runProtocol(t, params, recvSet, sendSet, MatchModeMembership)

	require.Empty(t, cmp.Diff([]string{"0101"}, res.Strings()))
	requireResultConsistent(t, res, recv.Dataset())
	require.Greater(t, res.NoiseBudget, 0)
}

func TestMatchModeString(t *testing.T) {
	require.Equal(t, "membership", MatchModeMembership.String())
	require.Equal(t, "positional", MatchModePositional.String())
	require.Equal(t, "matchmode(7)", MatchMode(7).String())
}

func TestPositionalZeroPadding(t *testing.T) {
	params := testParams(t, 12)

	// the sender's batched plaintext pads missing positions with zero,
	// so a receiver zero past the sender's length reads as a match
	recvSet := []string{"0000", "0010", "0000"}
	sendSet := []string{"0000"}

	recv, res := runProtocol(t, params, recvSet, sendSet, MatchModePositional)

	require.Empty(t, cmp.Diff([]string{"0000", "0000"}, res.Strings()))
	require.Equal(t, 0, res.Intersection[0].Index)
	require.Equal(t, 2, res.Intersection[1].Index)
	requireResultConsistent(t, res, recv.Dataset())
}
