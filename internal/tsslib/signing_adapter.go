// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package tsslib

import (
	"encoding/json"
	"math/big"

	"github.com/binance-chain/tss-lib/common"
	"github.com/binance-chain/tss-lib/ecdsa/keygen"
	"github.com/binance-chain/tss-lib/ecdsa/signing"
	"github.com/binance-chain/tss-lib/tss"
	"github.com/pkg/errors"

	"github.com/opentss/gg20-driver/internal/sm"
)

// SigningAdapter binds one active party's signing.LocalParty to
// sm.SigningSM.
//
// The wrapped library fuses what spec.md's round plan treats as separate
// offline and online stages: its own finalization round already combines
// every party's share into the completed signature before the adapter's
// queue ever reaches the plan's step 5. PickOutput therefore returns an
// OfflineOutput that already carries the finished signature, and the
// OnlineSigner below turns the online round into a redundant but
// harmless confirmation broadcast rather than a real MtA-style share
// exchange — the round-plan shape spec.md §4.3 mandates is preserved
// even though this bound library needs no second combination step.
type SigningAdapter struct {
	party    tss.Party
	partyIDs tss.SortedPartyIDs
	me       uint16

	out   chan tss.Message
	end   chan common.SignatureData
	queue queue

	started bool
}

// NewSigningAdapter constructs the local party for rank me over the
// active set, given the reconstructed group key share and the message to
// be signed known up front (this library's NewLocalParty requires it at
// construction, spec.md §9's anticipated per-library timing difference).
func NewSigningAdapter(groupID string, active []uint16, threshold int, me uint16, key keygen.LocalPartySaveData, message []byte) (*SigningAdapter, error) {
	ids := PartyIDs(groupID, active)
	myID := partyIDByRank(ids, me)
	if myID == nil {
		return nil, errors.Errorf("rank %d not present in active set", me)
	}

	ctx := tss.NewPeerContext(ids)
	params := tss.NewParameters(ctx, myID, len(active), threshold)

	out := make(chan tss.Message, len(active))
	end := make(chan common.SignatureData, 1)

	m := new(big.Int).SetBytes(message)
	party := signing.NewLocalParty(m, params, key, out, end)
	return &SigningAdapter{party: party, partyIDs: ids, me: me, out: out, end: end}, nil
}

func (a *SigningAdapter) Proceed() error {
	if !a.started {
		a.started = true
		if err := a.party.Start(); err != nil {
			return errors.Wrap(err, "start signing party")
		}
	}
	a.drain()
	return nil
}

func (a *SigningAdapter) drain() {
	for {
		select {
		case msg := <-a.out:
			_ = a.queue.drainOut(msg, a.me)
		default:
			return
		}
	}
}

func (a *SigningAdapter) MessageQueue() []sm.RoundMsg { return a.queue.msgs }

func (a *SigningAdapter) HandleIncoming(msg sm.RoundMsg) error {
	from := partyIDByRank(a.partyIDs, msg.Sender)
	if from == nil {
		return errors.Errorf("unknown sender rank %d", msg.Sender)
	}
	parsed, err := tss.ParseWireMessage(msg.Body, from, msg.IsBroadcast())
	if err != nil {
		return errors.Wrap(err, "parse incoming signing message")
	}
	if _, err := a.party.Update(parsed); err != nil {
		return errors.Wrap(err, "update signing party")
	}
	a.drain()
	return nil
}

func (a *SigningAdapter) PickOutput() (sm.OfflineOutput, bool) {
	select {
	case sig := <-a.end:
		opaque, err := json.Marshal(sig)
		if err != nil {
			return sm.OfflineOutput{}, false
		}
		return sm.OfflineOutput{Rank: a.me, Opaque: opaque}, true
	default:
		return sm.OfflineOutput{}, false
	}
}

// OnlineCombiner implements sm.OnlineSigner over the signature the
// wrapped signing.LocalParty already finished computing.
type OnlineCombiner struct {
	groupPublicKey []byte
}

// NewOnlineCombiner builds the step-5 online signer; groupPublicKey is
// carried through into the emitted sm.Signature for uniformity with
// spec.md §4.2's textual encoding.
func NewOnlineCombiner(groupPublicKey []byte) *OnlineCombiner {
	return &OnlineCombiner{groupPublicKey: groupPublicKey}
}

func (c *OnlineCombiner) New(message []byte, offline sm.OfflineOutput) (sm.PartialShare, error) {
	return sm.PartialShare{Sender: offline.Rank, Opaque: offline.Opaque}, nil
}

func (c *OnlineCombiner) Complete(shares []sm.PartialShare) (sm.Signature, error) {
	if len(shares) == 0 {
		return sm.Signature{}, errors.New("no partial shares to combine")
	}
	var sig common.SignatureData
	if err := json.Unmarshal(shares[0].Opaque, &sig); err != nil {
		return sm.Signature{}, errors.Wrap(err, "decode signature share")
	}
	for _, other := range shares[1:] {
		var cmp common.SignatureData
		if err := json.Unmarshal(other.Opaque, &cmp); err != nil {
			return sm.Signature{}, errors.Wrap(err, "decode signature share")
		}
		if string(cmp.R) != string(sig.R) || string(cmp.S) != string(sig.S) {
			return sm.Signature{}, errors.New("active parties disagree on the completed signature")
		}
	}
	return sm.Signature{
		R:              sig.R,
		S:              sig.S,
		Recovery:       firstByte(sig.SignatureRecovery),
		Message:        sig.M,
		GroupPublicKey: c.groupPublicKey,
	}, nil
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
