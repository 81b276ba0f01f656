// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package sm names the opaque cryptographic state machine this driver
// talks to: the GG20 keygen and signing protocols, treated as a black box
// per the non-goals of the system this package belongs to.
package sm

// RoundMsg is a single message produced by, or delivered to, a CryptoSM.
// Receiver == nil means the message is a broadcast to every other party
// in the current group.
type RoundMsg struct {
	Sender   uint16
	Receiver *uint16
	Body     []byte
}

// IsBroadcast reports whether the message has no single addressee.
func (m RoundMsg) IsBroadcast() bool {
	return m.Receiver == nil
}

// LocalKey is a party's opaque share of a completed keygen run, together
// with the group's public key material. Its Opaque field is produced and
// consumed only by the bound CryptoSM implementation; the Round Driver
// never looks inside it.
type LocalKey struct {
	// Rank is the party rank (1..N) this key share belongs to.
	Rank uint16
	// GroupPublicKey is the compressed secp256k1 public key of the group,
	// common to every party's LocalKey produced by the same keygen run.
	GroupPublicKey []byte
	// Opaque is the bound library's own serialized save-data, carried
	// through unchanged so it can be round-tripped without this package
	// needing to understand its internal structure.
	Opaque []byte
}

// OfflineOutput is the result of the offline (message-independent) stage
// of signing: everything needed to produce a partial signature share once
// the message becomes known.
type OfflineOutput struct {
	Rank   uint16
	Opaque []byte
}

// PartialShare is one party's contribution to the online signing round.
type PartialShare struct {
	Sender uint16
	Opaque []byte
}

// Signature is a completed ECDSA signature over secp256k1, textually
// encoded for uniformity with RoundMsg per spec.md §4.2.
type Signature struct {
	R              []byte
	S              []byte
	Recovery       byte
	Message        []byte
	GroupPublicKey []byte
}
