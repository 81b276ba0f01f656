// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package wire implements the textual, self-describing RoundMsg codec
// from spec.md §4.2: encoding/json, the same serialization the teacher
// uses throughout mpc/common.go's ShareData and FSLMPCSignInfo.
package wire

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/opentss/gg20-driver/internal/sm"
)

// envelope is the exact three-field shape spec.md §4.2 requires: sender,
// optional receiver, body. encoding/json base64-encodes the []byte body
// automatically, which is what keeps this format textual while letting
// Body carry whatever bytes the bound CryptoSM produced.
type envelope struct {
	Sender   uint16  `json:"sender"`
	Receiver *uint16 `json:"receiver,omitempty"`
	Body     []byte  `json:"body"`
}

// Encode serializes a RoundMsg to its textual wire form.
func Encode(msg sm.RoundMsg) ([]byte, error) {
	bz, err := json.Marshal(envelope{Sender: msg.Sender, Receiver: msg.Receiver, Body: msg.Body})
	if err != nil {
		return nil, errors.Wrap(err, "encode round message")
	}
	return bz, nil
}

// Decode parses a RoundMsg, first trimming any trailing NUL padding left
// over from a fixed-size receive buffer (spec.md §4.2, §8 property 5).
func Decode(raw []byte) (sm.RoundMsg, error) {
	trimmed := bytes.TrimRight(raw, "\x00")
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return sm.RoundMsg{}, errors.Wrap(err, "decode round message")
	}
	return sm.RoundMsg{Sender: env.Sender, Receiver: env.Receiver, Body: env.Body}, nil
}

// partialShareEnvelope mirrors envelope's shape for the online signing
// round's partial shares, which spec.md §4.2 requires use the same
// textual encoding for uniformity with RoundMsg.
type partialShareEnvelope struct {
	Sender uint16 `json:"sender"`
	Opaque []byte `json:"opaque"`
}

// EncodePartialShare serializes one party's online-round contribution.
func EncodePartialShare(share sm.PartialShare) ([]byte, error) {
	bz, err := json.Marshal(partialShareEnvelope{Sender: share.Sender, Opaque: share.Opaque})
	if err != nil {
		return nil, errors.Wrap(err, "encode partial share")
	}
	return bz, nil
}

// DecodePartialShare parses a peer's online-round contribution.
func DecodePartialShare(raw []byte) (sm.PartialShare, error) {
	trimmed := bytes.TrimRight(raw, "\x00")
	var env partialShareEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return sm.PartialShare{}, errors.Wrap(err, "decode partial share")
	}
	return sm.PartialShare{Sender: env.Sender, Opaque: env.Opaque}, nil
}

// signatureEnvelope is the textual encoding of a completed signature,
// per spec.md §4.2 and §4.3 step 5.
type signatureEnvelope struct {
	R              []byte `json:"r"`
	S              []byte `json:"s"`
	Recovery       byte   `json:"recovery"`
	Message        []byte `json:"message"`
	GroupPublicKey []byte `json:"group_public_key"`
}

// EncodeSignature serializes a completed ECDSA signature.
func EncodeSignature(sig sm.Signature) ([]byte, error) {
	bz, err := json.Marshal(signatureEnvelope{
		R: sig.R, S: sig.S, Recovery: sig.Recovery,
		Message: sig.Message, GroupPublicKey: sig.GroupPublicKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode signature")
	}
	return bz, nil
}

// DecodeSignature parses a completed ECDSA signature.
func DecodeSignature(raw []byte) (sm.Signature, error) {
	var env signatureEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return sm.Signature{}, errors.Wrap(err, "decode signature")
	}
	return sm.Signature{
		R: env.R, S: env.S, Recovery: env.Recovery,
		Message: env.Message, GroupPublicKey: env.GroupPublicKey,
	}, nil
}

// LocalKey's wire form carries Opaque through unchanged as base64 bytes
// (it is the bound library's own save-data); this package interprets only
// Rank and GroupPublicKey.
type localKeyEnvelope struct {
	Rank           uint16 `json:"rank"`
	GroupPublicKey []byte `json:"group_public_key"`
	Opaque         []byte `json:"opaque"`
}

// EncodeLocalKey serializes a completed keygen share.
func EncodeLocalKey(key sm.LocalKey) ([]byte, error) {
	bz, err := json.Marshal(localKeyEnvelope{Rank: key.Rank, GroupPublicKey: key.GroupPublicKey, Opaque: key.Opaque})
	if err != nil {
		return nil, errors.Wrap(err, "encode local key")
	}
	return bz, nil
}

// DecodeLocalKey parses a persisted keygen share.
func DecodeLocalKey(raw []byte) (sm.LocalKey, error) {
	var env localKeyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return sm.LocalKey{}, errors.Wrap(err, "decode local key")
	}
	return sm.LocalKey{Rank: env.Rank, GroupPublicKey: env.GroupPublicKey, Opaque: env.Opaque}, nil
}
