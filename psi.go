// Package psi implements a two-party private set intersection protocol
// over the BFV homomorphic encryption scheme.
//
// The protocol has two roles. The Receiver owns the keys: it batches its
// dataset into the slots of a single BFV plaintext, encrypts it and hands
// the ciphertext to the Sender. The Sender evaluates, directly on the
// ciphertext, a per-slot function that vanishes exactly on the values the
// two parties share, and returns the encrypted result. The Receiver
// decrypts and reads the intersection off the zero slots.
//
// The Sender never sees the Receiver's dataset, the Receiver learns
// nothing about the Sender's dataset beyond the intersection, and the
// secret key never leaves the Receiver.
package psi

import "fmt"

// Intersect runs the whole protocol in one process: the Receiver encrypts
// its dataset, the Sender matches it against its own under mode, and the
// Receiver decrypts and extracts the intersection. Both roles are built
// fresh from params, including the key material.
func Intersect(params Parameters, recvSet, sendSet []string, mode MatchMode) (*ComputationResult, error) {
	recvDs, err := NewDataset(recvSet)
	if err != nil {
		return nil, fmt.Errorf("receiver dataset: %w", err)
	}
	sendDs, err := NewDataset(sendSet)
	if err != nil {
		return nil, fmt.Errorf("sender dataset: %w", err)
	}
	recv, err := NewReceiver(params, recvDs)
	if err != nil {
		return nil, err
	}
	send, err := NewSender(params, sendDs, recv.Public(), mode)
	if err != nil {
		return nil, err
	}
	ct, err := recv.EncryptDataset()
	if err != nil {
		return nil, err
	}
	res, err := send.Match(ct)
	if err != nil {
		return nil, err
	}
	return recv.DecryptAndIntersect(res)
}
